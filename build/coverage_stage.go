package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
)

const codecovScript = "bash <(curl -s https://codecov.io/bash)"

// CoverageStage runs the library's tests with coverage and, optionally,
// uploads the report to Codecov. The upload is best effort: its failure is
// logged as a warning and never fails the stage.
type CoverageStage struct {
	SDK     SDK
	Codecov bool
}

func (s *CoverageStage) Name() string { return "coverage" }

func (s *CoverageStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	if res := rc.Run(ctx, s.SDK.Command("test", "--coverage", "library")); res.Err != nil {
		return res.Err
	}
	if !s.Codecov {
		return nil
	}

	res := rc.Run(ctx, runtime.CommandSpec{Name: "bash", Args: []string{"-c", codecovScript}})
	if res.Err != nil {
		rc.AddWarning("Coverage failed! " + res.Err.Error())
	}
	return nil
}

func (s *CoverageStage) FailureReason(error) string { return "Code coverage failed." }
