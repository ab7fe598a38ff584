package build

import (
	"context"
	"strings"
	"testing"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
)

// scriptedRunner records every spec and fails commands whose command line
// contains one of the configured substrings.
type scriptedRunner struct {
	specs  []runtime.CommandSpec
	fail   []string
	stdout map[string]string
}

func (r *scriptedRunner) Run(_ context.Context, spec runtime.CommandSpec) runtime.CommandResult {
	r.specs = append(r.specs, spec)
	line := spec.String()
	var out string
	for match, s := range r.stdout {
		if strings.Contains(line, match) {
			out = s
		}
	}
	for _, f := range r.fail {
		if strings.Contains(line, f) {
			return runtime.CommandResult{Stdout: out, Err: &runtime.ExitError{Command: line, Code: 1, Stderr: "failed: " + f}}
		}
	}
	return runtime.CommandResult{Stdout: out}
}

func (r *scriptedRunner) lines() []string {
	lines := make([]string, len(r.specs))
	for i, s := range r.specs {
		lines[i] = s.String()
	}
	return lines
}

func (r *scriptedRunner) ran(substr string) bool {
	for _, l := range r.lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

type recordingChecker struct {
	baselineCalls []string
	failureCalls  []string
	err           error
}

func (c *recordingChecker) CheckBaselines(_ context.Context, repository, buildID string) error {
	c.baselineCalls = append(c.baselineCalls, repository+"#"+buildID)
	return c.err
}

func (c *recordingChecker) CheckFailures(_ context.Context, buildID string) error {
	c.failureCalls = append(c.failureCalls, buildID)
	return c.err
}

func newRunContext(t *testing.T, env ci.Context, runner pipeline.CommandRunner) *pipeline.RunContext {
	t.Helper()
	if env.WorkDir == "" {
		env.WorkDir = t.TempDir()
	}
	rc := pipeline.NewRunContext(pipeline.Options{}, env, runner, nil)
	rc.Setenv = func(string, string) error { return nil }
	return rc
}
