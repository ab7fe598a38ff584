package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/initializ/skyci/runtime"
)

// ExecuteStage runs one stage and converts whatever happens (success,
// error, skip request or panic) into exactly one StageOutcome. Nothing
// escapes past this boundary.
func ExecuteStage(ctx context.Context, s Stage, rc *RunContext) (outcome StageOutcome) {
	start := time.Now()
	outcome.Name = s.Name()

	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Err = fmt.Errorf("stage %s panicked: %v", s.Name(), r)
			outcome.Reason = failureReason(s, outcome.Err)
		}
		outcome.Duration = time.Since(start)
		logOutcome(rc, outcome)
	}()

	err := s.Execute(ctx, rc)
	switch {
	case err == nil:
		outcome.Success = true
	case errors.Is(err, ErrSkipRequested):
		outcome.Success = true
		outcome.Err = err
	default:
		outcome.Err = err
		outcome.Reason = failureReason(s, err)
	}
	return outcome
}

// RunStage runs a single command as the named stage.
func RunStage(ctx context.Context, rc *RunContext, name string, spec runtime.CommandSpec) StageOutcome {
	return ExecuteStage(ctx, &CommandStage{StageName: name, Spec: spec}, rc)
}

// CommandStage is a stage backed by exactly one external command.
type CommandStage struct {
	StageName string
	Spec      runtime.CommandSpec
	// Reason overrides the default failure message.
	Reason string
}

func (s *CommandStage) Name() string { return s.StageName }

func (s *CommandStage) Execute(ctx context.Context, rc *RunContext) error {
	return rc.Run(ctx, s.Spec).Err
}

func (s *CommandStage) FailureReason(err error) string {
	if s.Reason != "" {
		return s.Reason
	}
	return fmt.Sprintf("Stage %q failed: %v", s.StageName, err)
}

func failureReason(s Stage, err error) string {
	if r, ok := s.(Reasoner); ok {
		return r.FailureReason(err)
	}
	return fmt.Sprintf("Stage %q failed: %v", s.Name(), err)
}

func logOutcome(rc *RunContext, o StageOutcome) {
	fields := map[string]any{
		"stage":    o.Name,
		"duration": o.Duration.Round(time.Millisecond).String(),
	}
	if o.Success {
		rc.Logger.Info("stage succeeded", fields)
		return
	}
	fields["reason"] = o.Reason
	if o.Err != nil {
		fields["error"] = o.Err.Error()
	}
	rc.Logger.Error("stage failed", fields)
}
