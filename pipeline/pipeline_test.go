package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/runtime"
)

// fakeRunner records specs and returns canned results keyed by command name.
type fakeRunner struct {
	specs   []runtime.CommandSpec
	results map[string]runtime.CommandResult
}

func (f *fakeRunner) Run(_ context.Context, spec runtime.CommandSpec) runtime.CommandResult {
	f.specs = append(f.specs, spec)
	if res, ok := f.results[spec.Name]; ok {
		return res
	}
	return runtime.CommandResult{}
}

// funcStage adapts a function to Stage.
type funcStage struct {
	name    string
	fn      func(ctx context.Context, rc *RunContext) error
	enabled func(env ci.Context) bool
	calls   int
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Execute(ctx context.Context, rc *RunContext) error {
	s.calls++
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, rc)
}

type gatedStage struct{ *funcStage }

func (s gatedStage) Enabled(env ci.Context) bool { return s.enabled(env) }

func failWith(msg string) func(context.Context, *RunContext) error {
	return func(context.Context, *RunContext) error { return errors.New(msg) }
}

func newTestContext(env ci.Context) *RunContext {
	return NewRunContext(Options{WorkDir: "/work"}, env, &fakeRunner{}, nil)
}

func TestRun_AllSucceed(t *testing.T) {
	stages := []*funcStage{{name: "a"}, {name: "b"}, {name: "c"}}
	p := New(stages[0], stages[1], stages[2])

	run := p.Run(context.Background(), newTestContext(ci.Context{RunID: "1"}))
	if !run.Success() {
		t.Fatal("expected success")
	}
	if run.State != StateRunToCompletion {
		t.Errorf("State = %v, want %v", run.State, StateRunToCompletion)
	}
	if len(run.Outcomes) != 3 {
		t.Errorf("got %d outcomes, want 3", len(run.Outcomes))
	}
	if run.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", run.ExitCode())
	}
}

func TestRun_FailureDoesNotAbort(t *testing.T) {
	stages := []*funcStage{
		{name: "install"},
		{name: "certs", fn: failWith("boom")},
		{name: "coverage"},
		{name: "build"},
		{name: "visual"},
	}
	p := New(stages[0], stages[1], stages[2], stages[3], stages[4])

	run := p.Run(context.Background(), newTestContext(ci.Context{}))
	if run.Success() {
		t.Fatal("expected overall failure")
	}
	if len(run.Outcomes) != 5 {
		t.Fatalf("got %d outcomes, want 5", len(run.Outcomes))
	}
	for i, s := range stages {
		if s.calls != 1 {
			t.Errorf("stage %s called %d times, want 1", s.name, s.calls)
		}
		if run.Outcomes[i].Name != s.name {
			t.Errorf("Outcomes[%d].Name = %q, want %q", i, run.Outcomes[i].Name, s.name)
		}
	}
	if run.Outcomes[1].Success {
		t.Error("certs outcome should be a failure")
	}
	if run.Outcomes[1].Reason == "" {
		t.Error("failed outcome should carry a reason")
	}
	failures := run.Failures()
	if len(failures) != 1 || failures[0].Name != "certs" {
		t.Errorf("Failures() = %+v", failures)
	}
	if run.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", run.ExitCode())
	}
}

func TestRun_FailureIsMonotonic(t *testing.T) {
	p := New(&funcStage{name: "first", fn: failWith("x")}, &funcStage{name: "second"}, &funcStage{name: "third"})
	run := p.Run(context.Background(), newTestContext(ci.Context{}))
	if run.Success() {
		t.Error("later successes must not clear an earlier failure")
	}
}

func TestRun_SkipRequested(t *testing.T) {
	skip := &funcStage{name: "skip-check", fn: func(context.Context, *RunContext) error { return ErrSkipRequested }}
	later := &funcStage{name: "install"}
	p := New(skip, later)

	run := p.Run(context.Background(), newTestContext(ci.Context{}))
	if !run.Success() {
		t.Error("skip must be a success")
	}
	if run.State != StateAbortedEarly {
		t.Errorf("State = %v, want %v", run.State, StateAbortedEarly)
	}
	if len(run.Outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1", len(run.Outcomes))
	}
	if later.calls != 0 {
		t.Errorf("install called %d times after skip", later.calls)
	}
}

func TestRun_GatedStage(t *testing.T) {
	publish := gatedStage{&funcStage{name: "publish", enabled: func(env ci.Context) bool { return env.IsTag() }}}
	p := New(&funcStage{name: "build"}, publish)

	run := p.Run(context.Background(), newTestContext(ci.Context{Ref: "refs/heads/main"}))
	if publish.calls != 0 {
		t.Errorf("publish called %d times on a branch build", publish.calls)
	}
	if len(run.Outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1", len(run.Outcomes))
	}

	run = p.Run(context.Background(), newTestContext(ci.Context{Ref: "refs/tags/1.0.0"}))
	if publish.calls != 1 {
		t.Errorf("publish called %d times on a tag build, want 1", publish.calls)
	}
	if len(run.Outcomes) != 2 {
		t.Errorf("got %d outcomes, want 2", len(run.Outcomes))
	}
}

func TestRun_PanicIsContained(t *testing.T) {
	after := &funcStage{name: "after"}
	p := New(&funcStage{name: "explodes", fn: func(context.Context, *RunContext) error { panic("kaboom") }}, after)

	run := p.Run(context.Background(), newTestContext(ci.Context{}))
	if run.Success() {
		t.Error("a panicking stage must fail the run")
	}
	if after.calls != 1 {
		t.Error("stage after a panic should still run")
	}
	if run.Outcomes[0].Err == nil {
		t.Error("panic outcome should carry an error")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &funcStage{name: "first", fn: func(context.Context, *RunContext) error {
		cancel()
		return nil
	}}
	second := &funcStage{name: "second"}
	third := &funcStage{name: "third"}

	run := New(first, second, third).Run(ctx, newTestContext(ci.Context{}))
	if second.calls != 0 || third.calls != 0 {
		t.Error("no stage should start after cancellation")
	}
	if len(run.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want first plus one cancelled outcome", len(run.Outcomes))
	}
	if o := run.Outcomes[1]; o.Name != "second" || o.Success || o.Reason != "Pipeline cancelled before the stage started." {
		t.Errorf("cancelled outcome = %+v", o)
	}
	if !errors.Is(run.Outcomes[1].Err, context.Canceled) {
		t.Errorf("cancelled outcome Err = %v, want context.Canceled", run.Outcomes[1].Err)
	}
	if run.Success() {
		t.Error("a cancelled run must fail")
	}
	if run.State != StateAbortedEarly {
		t.Errorf("State = %v, want %v", run.State, StateAbortedEarly)
	}
}

func TestStages(t *testing.T) {
	p := New(&funcStage{name: "a"}, &funcStage{name: "b"})
	names := p.Stages()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Stages() = %v", names)
	}
}

func TestRunStage(t *testing.T) {
	runner := &fakeRunner{results: map[string]runtime.CommandResult{
		"false": {Err: &runtime.ExitError{Command: "false", Code: 1}},
	}}
	rc := NewRunContext(Options{WorkDir: "/work"}, ci.Context{}, runner, nil)

	ok := RunStage(context.Background(), rc, "ok", runtime.CommandSpec{Name: "true"})
	if !ok.Success || ok.Name != "ok" {
		t.Errorf("outcome = %+v, want success", ok)
	}
	if runner.specs[0].Dir != "/work" {
		t.Errorf("Dir = %q, want /work", runner.specs[0].Dir)
	}

	bad := RunStage(context.Background(), rc, "bad", runtime.CommandSpec{Name: "false"})
	if bad.Success {
		t.Fatal("expected failure")
	}
	var exitErr *runtime.ExitError
	if !errors.As(bad.Err, &exitErr) {
		t.Errorf("Err = %T, want *runtime.ExitError", bad.Err)
	}
}

func TestCommandStage_Reason(t *testing.T) {
	s := &CommandStage{StageName: "build", Reason: "Build failed."}
	if got := s.FailureReason(errors.New("x")); got != "Build failed." {
		t.Errorf("FailureReason() = %q", got)
	}
	s.Reason = ""
	if got := s.FailureReason(errors.New("x")); got == "" {
		t.Error("default FailureReason() should not be empty")
	}
}

func TestResultLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.jsonl")
	results, err := NewResultLog(path)
	if err != nil {
		t.Fatalf("NewResultLog() error: %v", err)
	}

	rc := newTestContext(ci.Context{RunID: "987654321"})
	rc.Results = results
	New(&funcStage{name: "ok"}, &funcStage{name: "bad", fn: failWith("nope")}).Run(context.Background(), rc)
	if err := results.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}

	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0]["type"] != "start" || entries[0]["run_id"] != "987654321" {
		t.Errorf("start entry = %v", entries[0])
	}
	if entries[2]["success"] != false || entries[2]["error"] != "nope" {
		t.Errorf("failed stage entry = %v", entries[2])
	}
	finish := entries[3]
	if finish["type"] != "finish" || finish["success"] != false || finish["state"] != "completed" {
		t.Errorf("finish entry = %v", finish)
	}
}

func TestResultLog_NilSafe(t *testing.T) {
	var l *ResultLog
	l.writeStart("x", 1)
	l.writeStage(0, StageOutcome{})
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
}
