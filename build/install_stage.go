package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
)

// InstallStage installs the project's dependencies and the builder config
// package the SDK needs.
type InstallStage struct {
	BuilderConfig string
}

func (s *InstallStage) Name() string { return "install" }

func (s *InstallStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	if res := rc.Run(ctx, runtime.CommandSpec{Name: "npm", Args: []string{"ci"}}); res.Err != nil {
		return res.Err
	}

	builder := s.BuilderConfig
	if builder == "" {
		builder = DefaultBuilderConfig
	}
	return rc.Run(ctx, runtime.CommandSpec{
		Name: "npm",
		Args: []string{"install", "--no-save", "--no-package-lock", builder},
	}).Err
}

func (s *InstallStage) FailureReason(error) string { return "Installation failed." }
