// Package pipeline provides a sequential stage-based execution pipeline that
// records every stage failure and keeps going, failing the run at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/initializ/skyci/ci"
)

// ErrSkipRequested is returned by a stage to end the run early with
// success. It is not a failure.
var ErrSkipRequested = errors.New("skip requested")

// Stage is a single unit of work in a pipeline.
type Stage interface {
	Name() string
	Execute(ctx context.Context, rc *RunContext) error
}

// Gate is implemented by stages that only run for some environments.
// Stages that are not enabled produce no outcome.
type Gate interface {
	Enabled(env ci.Context) bool
}

// Reasoner is implemented by stages that describe their own failure.
type Reasoner interface {
	FailureReason(err error) string
}

// Pipeline executes a fixed sequence of stages in order.
type Pipeline struct {
	stages []Stage
}

// New creates a Pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the configured stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes each enabled stage sequentially. A failing stage is recorded
// and the next stage still runs; the returned Run fails if any stage failed.
// A stage returning ErrSkipRequested, or a cancelled ctx, ends the run early.
func (p *Pipeline) Run(ctx context.Context, rc *RunContext) *Run {
	run := newRun(rc.Env.RunID)
	rc.Results.writeStart(run.ID, len(p.stages))
	rc.Logger.Info("pipeline starting", map[string]any{
		"run_id": run.ID,
		"stages": len(p.stages),
	})

	for i, s := range p.stages {
		if g, ok := s.(Gate); ok && !g.Enabled(rc.Env) {
			rc.Logger.Debug("stage not enabled", map[string]any{"stage": s.Name()})
			continue
		}

		if err := ctx.Err(); err != nil {
			outcome := StageOutcome{
				Name:   s.Name(),
				Reason: "Pipeline cancelled before the stage started.",
				Err:    fmt.Errorf("pipeline cancelled before stage %s: %w", s.Name(), err),
			}
			run.record(outcome)
			rc.Results.writeStage(i, outcome)
			rc.Logger.Error("pipeline cancelled", map[string]any{"stage": s.Name()})
			run.finish(StateAbortedEarly)
			rc.Results.writeFinish(run)
			return run
		}

		rc.Logger.Info("stage starting", map[string]any{
			"stage": s.Name(),
			"index": i + 1,
			"total": len(p.stages),
		})
		outcome := ExecuteStage(ctx, s, rc)
		run.record(outcome)
		rc.Results.writeStage(i, outcome)

		if errors.Is(outcome.Err, ErrSkipRequested) {
			rc.Logger.Info("skip requested, ending run", map[string]any{"stage": s.Name()})
			run.finish(StateAbortedEarly)
			rc.Results.writeFinish(run)
			return run
		}
	}

	run.finish(StateRunToCompletion)
	rc.Results.writeFinish(run)

	fields := map[string]any{
		"run_id":   run.ID,
		"duration": run.Duration().Round(time.Millisecond).String(),
		"failed":   len(run.Failures()),
	}
	if run.Success() {
		rc.Logger.Info("pipeline succeeded", fields)
	} else {
		rc.Logger.Error("pipeline failed", fields)
	}
	return run
}
