package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
)

// BaselineChecker commits screenshots that became new visual baselines.
type BaselineChecker interface {
	CheckBaselines(ctx context.Context, repository, buildID string) error
}

// FailureChecker publishes screenshot diffs from a failed visual run.
type FailureChecker interface {
	CheckFailures(ctx context.Context, buildID string) error
}

// VisualStage runs the end-to-end visual regression tests. On push builds it
// also hands screenshots to the baseline or failure checker. Checker errors
// are warnings; only the e2e command decides the stage outcome.
type VisualStage struct {
	SDK       SDK
	Baselines BaselineChecker
	Failures  FailureChecker
}

func (s *VisualStage) Name() string { return "visual" }

func (s *VisualStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	res := rc.Run(ctx, s.SDK.Command("e2e"))

	if !rc.Env.IsPush() {
		return res.Err
	}

	if res.Err != nil {
		if s.Failures != nil {
			if err := s.Failures.CheckFailures(ctx, rc.Env.RunID); err != nil {
				rc.AddWarning("checking failure screenshots: " + err.Error())
			}
		}
		return res.Err
	}

	if s.Baselines != nil {
		if err := s.Baselines.CheckBaselines(ctx, rc.Env.Repository, rc.Env.RunID); err != nil {
			rc.AddWarning("checking baseline screenshots: " + err.Error())
		}
	}
	return nil
}

func (s *VisualStage) FailureReason(error) string { return "End-to-end tests failed." }
