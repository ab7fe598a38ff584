package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
)

const (
	DefaultDistDir = "dist"
	DefaultAccess  = "public"

	npmTokenEnv = "NPM_TOKEN"
	npmrcLine   = "//registry.npmjs.org/:_authToken=${NPM_TOKEN}\n"
)

var errMissingNPMToken = errors.New("npm token is required to publish (set the npm-token input)")

// Notifier delivers a human-readable message to the team.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// PublishStage publishes the packaged library to npm on tag builds and
// announces the outcome through the notifier.
type PublishStage struct {
	DistDir  string
	Access   string
	Notifier Notifier
}

func (s *PublishStage) Name() string { return "publish" }

func (s *PublishStage) Enabled(env ci.Context) bool { return env.IsTag() }

func (s *PublishStage) Execute(ctx context.Context, rc *pipeline.RunContext) error {
	dist := s.distDir(rc.Opts.WorkDir)
	pkg := s.readPackage(rc, dist)

	err := s.publish(ctx, rc, dist, npmTag(pkg.Version))
	if err != nil {
		s.notify(ctx, rc, fmt.Sprintf("`%s` failed to publish to NPM.", pkg.Spec()))
		return err
	}
	s.notify(ctx, rc, fmt.Sprintf("Successfully published `%s` to NPM.", pkg.Spec()))
	return nil
}

func (s *PublishStage) FailureReason(error) string { return "Publishing to NPM failed." }

func (s *PublishStage) publish(ctx context.Context, rc *pipeline.RunContext, dist, tag string) error {
	token := rc.Env.NPMToken
	if token == "" {
		return errMissingNPMToken
	}
	// The token must be in the environment before npm reads .npmrc.
	if err := rc.Setenv(npmTokenEnv, token); err != nil {
		return fmt.Errorf("exporting %s: %w", npmTokenEnv, err)
	}
	if err := os.WriteFile(filepath.Join(dist, ".npmrc"), []byte(npmrcLine), 0o600); err != nil {
		return fmt.Errorf("writing .npmrc: %w", err)
	}

	access := s.Access
	if access == "" {
		access = DefaultAccess
	}
	rc.Logger.Info("publishing package", map[string]any{"dir": dist, "tag": tag})
	return rc.Run(ctx, runtime.CommandSpec{
		Name: "npm",
		Args: []string{"publish", "--access", access, "--tag", tag},
		Dir:  dist,
		Env:  map[string]string{npmTokenEnv: token},
	}).Err
}

func (s *PublishStage) distDir(workDir string) string {
	dist := s.DistDir
	if dist == "" {
		dist = DefaultDistDir
	}
	if filepath.IsAbs(dist) {
		return dist
	}
	return filepath.Join(workDir, dist)
}

// readPackage prefers the packaged dist/package.json and falls back to the
// project root. When neither is readable the tag name stands in.
func (s *PublishStage) readPackage(rc *pipeline.RunContext, dist string) *PackageJSON {
	candidates := []string{
		filepath.Join(dist, "package.json"),
		filepath.Join(rc.Opts.WorkDir, "package.json"),
	}
	for _, path := range candidates {
		pkg, err := ReadPackageJSON(path)
		if err == nil {
			if pkg.Version == "" {
				pkg.Version = rc.Env.TagName()
			}
			return pkg
		}
		rc.Logger.Debug("package.json not usable", map[string]any{"path": path, "error": err.Error()})
	}
	return &PackageJSON{Name: "package", Version: rc.Env.TagName()}
}

func (s *PublishStage) notify(ctx context.Context, rc *pipeline.RunContext, message string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, message); err != nil {
		rc.AddWarning("sending notification: " + err.Error())
	}
}

// npmTag returns the dist-tag for version: prereleases go to "next".
func npmTag(version string) string {
	v := strings.TrimPrefix(version, "v")
	core, _, _ := strings.Cut(v, "+")
	if strings.Contains(core, "-") {
		return "next"
	}
	return "latest"
}
