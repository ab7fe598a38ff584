package pipeline

import (
	"context"
	"os"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/runtime"
)

// CommandRunner launches one external command and waits for it to exit.
type CommandRunner interface {
	Run(ctx context.Context, spec runtime.CommandSpec) runtime.CommandResult
}

// Options carries shared configuration for all pipeline stages.
type Options struct {
	WorkDir string
}

// RunContext carries all state through a pipeline run.
type RunContext struct {
	Opts    Options
	Env     ci.Context
	Runner  CommandRunner
	Logger  runtime.Logger
	Results *ResultLog // nil disables the result log

	// Setenv exports a variable to the process environment for later stages
	// and the tools they launch.
	Setenv func(key, value string) error

	Warnings []string
}

// NewRunContext creates a RunContext. The environment snapshot is copied and
// never re-read during the run.
func NewRunContext(opts Options, env ci.Context, runner CommandRunner, logger runtime.Logger) *RunContext {
	if logger == nil {
		logger = runtime.NopLogger{}
	}
	if opts.WorkDir == "" {
		opts.WorkDir = env.WorkDir
	}
	return &RunContext{
		Opts:   opts,
		Env:    env,
		Runner: runner,
		Logger: logger,
		Setenv: os.Setenv,
	}
}

// Run executes spec through the context's runner, defaulting the working
// directory to Opts.WorkDir.
func (rc *RunContext) Run(ctx context.Context, spec runtime.CommandSpec) runtime.CommandResult {
	if spec.Dir == "" {
		spec.Dir = rc.Opts.WorkDir
	}
	return rc.Runner.Run(ctx, spec)
}

// AddWarning records a non-fatal problem and logs it.
func (rc *RunContext) AddWarning(msg string) {
	rc.Warnings = append(rc.Warnings, msg)
	rc.Logger.Warn(msg, nil)
}
