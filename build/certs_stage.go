package build

import (
	"context"

	"github.com/initializ/skyci/pipeline"
)

// CertsStage installs the SDK's local development certificates.
type CertsStage struct {
	SDK SDK
}

func (s *CertsStage) Name() string { return "certs" }

func (s *CertsStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	return rc.Run(ctx, s.SDK.Command("certs", "install")).Err
}

func (s *CertsStage) FailureReason(error) string { return "Certificate installation failed." }
