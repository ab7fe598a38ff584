package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
)

// BuildStage compiles the application.
type BuildStage struct {
	SDK SDK
}

func (s *BuildStage) Name() string { return "build" }

func (s *BuildStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	return rc.Run(ctx, s.SDK.Command("build")).Err
}

func (s *BuildStage) FailureReason(error) string { return "Build failed." }
