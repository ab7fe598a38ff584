package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
)

// LibraryStage packages the public library into dist.
type LibraryStage struct {
	SDK SDK
}

func (s *LibraryStage) Name() string { return "build-library" }

func (s *LibraryStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	return rc.Run(ctx, s.SDK.Command("build-public-library")).Err
}

func (s *LibraryStage) FailureReason(error) string { return "Library build failed." }
