package build

import (
	"context"
	"fmt"
	"strings"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
)

// DefaultSkipMarkers are the commit message markers that bypass a run.
var DefaultSkipMarkers = []string{"[ci skip]", "[skip ci]"}

// SkipCheckStage ends push-triggered runs early when the latest commit
// message carries a skip marker.
type SkipCheckStage struct {
	Markers []string
}

func (s *SkipCheckStage) Name() string { return "skip-check" }

func (s *SkipCheckStage) Enabled(env ci.Context) bool { return env.IsPush() }

func (s *SkipCheckStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	message, err := LatestCommitMessage(ctx, rc)
	if err != nil {
		return err
	}

	if marker, ok := findSkipMarker(message, s.markers()); ok {
		rc.Logger.Info("skip marker found in commit message", map[string]any{"marker": marker})
		return pipeline.ErrSkipRequested
	}
	return nil
}

func (s *SkipCheckStage) FailureReason(error) string {
	return "Could not read the latest commit message."
}

func (s *SkipCheckStage) markers() []string {
	if len(s.Markers) == 0 {
		return DefaultSkipMarkers
	}
	return s.Markers
}

// LatestCommitMessage returns the full message of HEAD.
func LatestCommitMessage(ctx context.Context, rc *pipeline.RunContext) (string, error) {
	res := rc.Run(ctx, runtime.CommandSpec{Name: "git", Args: []string{"log", "-1", "--pretty=%B"}})
	if res.Err != nil {
		return "", fmt.Errorf("reading latest commit message: %w", res.Err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

func findSkipMarker(message string, markers []string) (string, bool) {
	for _, m := range markers {
		if m != "" && strings.Contains(message, m) {
			return m, true
		}
	}
	return "", false
}
