// Package runtime launches the external commands that back pipeline stages
// and provides the structured logger they report through.
package runtime

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	readChunkSize = 32 * 1024

	// waitDelay bounds how long Wait blocks on open pipes after the context
	// is done or the child has exited.
	waitDelay = 5 * time.Second
)

// CommandSpec describes a single external command invocation.
type CommandSpec struct {
	Name string
	Args []string
	// Dir is the working directory. Relative paths resolve against the
	// runner's base directory; empty means the base directory itself.
	Dir string
	// Env holds variables added on top of the inherited process environment.
	Env map[string]string
}

// String returns the command line as it would be typed.
func (s CommandSpec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Name)
	parts = append(parts, s.Args...)
	return strings.Join(parts, " ")
}

// CommandResult is the outcome of one command invocation.
type CommandResult struct {
	// Stdout is the full concatenated standard output.
	Stdout string
	// Err is nil on exit code 0, otherwise a *SpawnError or *ExitError.
	Err error
}

// OK reports whether the command exited with code 0.
func (r CommandResult) OK() bool { return r.Err == nil }

// Runner launches commands one at a time and streams their output to the
// configured sinks while capturing it.
type Runner struct {
	baseDir string
	stdout  io.Writer
	stderr  io.Writer
	logger  Logger

	mu      sync.Mutex // serialises writes to the sinks
	secrets []string
}

// NewRunner creates a Runner rooted at baseDir. Output chunks are echoed to
// stdout and stderr as they arrive; nil sinks discard output.
func NewRunner(baseDir string, stdout, stderr io.Writer, logger Logger) *Runner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &Runner{
		baseDir: baseDir,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
	}
}

// Mask registers values (tokens, credentials) that must never appear in
// logged command lines. Empty values are ignored.
func (r *Runner) Mask(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		if v != "" {
			r.secrets = append(r.secrets, v)
		}
	}
}

// Redact replaces every masked value in s with "***".
func (r *Runner) Redact(s string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redactLocked(s)
}

func (r *Runner) redactLocked(s string) string {
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, "***")
	}
	return s
}

// Run launches the command described by spec and blocks until it exits.
// It never panics; every failure is reported through the result.
func (r *Runner) Run(ctx context.Context, spec CommandSpec) CommandResult {
	display := r.Redact(spec.String())
	dir := r.resolveDir(spec.Dir)

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	if len(spec.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), spec.Env)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return CommandResult{Err: &SpawnError{Command: display, Err: err}}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return CommandResult{Err: &SpawnError{Command: display, Err: err}}
	}

	r.logger.Debug("starting command", map[string]any{"command": display, "dir": dir})
	if err := cmd.Start(); err != nil {
		return CommandResult{Err: &SpawnError{Command: display, Err: err}}
	}

	var (
		wg     sync.WaitGroup
		stdout string
		stderr string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdout = captureOutput(stdoutPipe, r.sink(r.stdout))
	}()
	go func() {
		defer wg.Done()
		stderr = captureLastChunk(stderrPipe, r.sink(r.stderr))
	}()
	// Both pipes must be drained before Wait closes them.
	wg.Wait()
	stdout = r.Redact(stdout)
	stderr = r.Redact(stderr)

	waitErr := cmd.Wait()
	if waitErr == nil {
		return CommandResult{Stdout: stdout}
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code = exitErr.ExitCode()
	}
	r.logger.Debug("command failed", map[string]any{"command": display, "exit_code": code})
	return CommandResult{
		Stdout: stdout,
		Err: &ExitError{
			Command: display,
			Code:    code,
			Stderr:  stderr,
			Err:     waitErr,
		},
	}
}

func (r *Runner) resolveDir(dir string) string {
	switch {
	case dir == "":
		return r.baseDir
	case filepath.IsAbs(dir) || r.baseDir == "":
		return dir
	default:
		return filepath.Join(r.baseDir, dir)
	}
}

// sink wraps w so that stdout and stderr goroutines never interleave a
// single chunk. Masked values are replaced before the chunk is written.
func (r *Runner) sink(w io.Writer) func([]byte) {
	return func(chunk []byte) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if len(r.secrets) > 0 {
			chunk = []byte(r.redactLocked(string(chunk)))
		}
		w.Write(chunk) //nolint:errcheck
	}
}

// captureOutput reads r to EOF, forwarding every chunk to echo and returning
// the concatenation of all chunks.
func captureOutput(r io.Reader, echo func([]byte)) string {
	var b strings.Builder
	readChunks(r, func(chunk []byte) {
		echo(chunk)
		b.Write(chunk)
	})
	return b.String()
}

// captureLastChunk reads r to EOF, forwarding every chunk to echo and
// returning only the final chunk. Earlier chunks are overwritten, not
// concatenated.
func captureLastChunk(r io.Reader, echo func([]byte)) string {
	var last string
	readChunks(r, func(chunk []byte) {
		echo(chunk)
		last = string(chunk)
	})
	return last
}

func readChunks(r io.Reader, fn func([]byte)) {
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			fn(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// mergeEnv overlays extra onto base, replacing existing keys. Keys are added
// in sorted order so the resulting environment is deterministic.
func mergeEnv(base []string, extra map[string]string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, override := extra[key]; override {
			continue
		}
		merged = append(merged, kv)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+extra[k])
	}
	return merged
}
