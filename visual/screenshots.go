// Package visual publishes screenshots produced by the end-to-end visual
// tests. New baselines are committed back to the library's own branch; diffs
// from a failed run are force-pushed to a shared results repository under a
// branch named after the build id.
//
// All git work goes through a command runner so the checker never shells
// out on its own and secrets stay masked in logs.
package visual

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/initializ/skyci/runtime"
)

const (
	DefaultBaselineDir = "screenshots-baseline"
	DefaultFailureDir  = "screenshots-diff"
	DefaultResultsRepo = "blackbaud/skyux-visual-test-results"

	commitEmail = "sky-build-user@blackbaud.com"
	commitName  = "Blackbaud Sky Build User"
)

var (
	errMissingToken  = errors.New("github token is required to push screenshots (set the github-token input)")
	errMissingBranch = errors.New("cannot determine the branch to push baselines to")
)

// Runner launches one external command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, spec runtime.CommandSpec) runtime.CommandResult
}

// Options configures a Checker.
type Options struct {
	WorkDir     string
	BaselineDir string
	FailureDir  string
	ResultsRepo string
	Branch      string // branch that receives new baselines
	Token       string
	Logger      runtime.Logger
}

// Checker implements the baseline and failure screenshot checks used by the
// visual stage.
type Checker struct {
	runner Runner
	opts   Options
}

// New returns a Checker. Empty directory and repository options take the
// SKY UX defaults.
func New(runner Runner, opts Options) *Checker {
	if opts.BaselineDir == "" {
		opts.BaselineDir = DefaultBaselineDir
	}
	if opts.FailureDir == "" {
		opts.FailureDir = DefaultFailureDir
	}
	if opts.ResultsRepo == "" {
		opts.ResultsRepo = DefaultResultsRepo
	}
	if opts.Logger == nil {
		opts.Logger = runtime.NopLogger{}
	}
	return &Checker{runner: runner, opts: opts}
}

// CheckBaselines commits any new or changed baseline screenshots and pushes
// them to the build branch of repository. The commit message carries a skip
// marker so the push does not trigger another build.
func (c *Checker) CheckBaselines(ctx context.Context, repository, buildID string) error {
	dir := c.opts.BaselineDir
	status, err := c.git(ctx, c.opts.WorkDir, "status", "--porcelain", "--", dir)
	if err != nil {
		return fmt.Errorf("checking baseline status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		c.opts.Logger.Info("no new baseline screenshots", map[string]any{"dir": dir})
		return nil
	}
	if c.opts.Token == "" {
		return errMissingToken
	}
	if c.opts.Branch == "" {
		return errMissingBranch
	}

	c.opts.Logger.Info("new baseline screenshots detected", map[string]any{"dir": dir})
	steps := [][]string{
		{"config", "user.email", commitEmail},
		{"config", "user.name", commitName},
		{"add", "--", dir},
		{"commit", "-m", fmt.Sprintf("Build #%s: Added new baseline screenshots. [ci skip]", buildID)},
		{"push", "-q", c.remote(repository), "HEAD:refs/heads/" + c.opts.Branch},
	}
	for _, args := range steps {
		if _, err := c.git(ctx, c.opts.WorkDir, args...); err != nil {
			return fmt.Errorf("committing baselines: %w", err)
		}
	}
	c.opts.Logger.Info("baseline screenshots pushed", map[string]any{"repository": repository, "branch": c.opts.Branch})
	return nil
}

// CheckFailures publishes the diff screenshots of a failed run to the results
// repository. The diff directory becomes its own throwaway repository whose
// history is force-pushed to a branch named after buildID.
func (c *Checker) CheckFailures(ctx context.Context, buildID string) error {
	dir := c.resolve(c.opts.FailureDir)
	empty, err := isEmptyDir(dir)
	if err != nil {
		return fmt.Errorf("reading failure screenshots: %w", err)
	}
	if empty {
		c.opts.Logger.Info("no failure screenshots", map[string]any{"dir": dir})
		return nil
	}
	if c.opts.Token == "" {
		return errMissingToken
	}

	c.opts.Logger.Info("failure screenshots detected", map[string]any{"dir": dir})
	steps := [][]string{
		{"init"},
		{"config", "user.email", commitEmail},
		{"config", "user.name", commitName},
		{"add", "."},
		{"commit", "-m", fmt.Sprintf("Build #%s: Screenshot failures.", buildID)},
		{"push", "-q", "-f", c.remote(c.opts.ResultsRepo), "HEAD:refs/heads/" + buildID},
	}
	for _, args := range steps {
		if _, err := c.git(ctx, dir, args...); err != nil {
			return fmt.Errorf("publishing failure screenshots: %w", err)
		}
	}
	c.opts.Logger.Info("failure screenshots pushed", map[string]any{
		"url": fmt.Sprintf("https://github.com/%s/tree/%s", c.opts.ResultsRepo, buildID),
	})
	return nil
}

func (c *Checker) git(ctx context.Context, dir string, args ...string) (string, error) {
	res := c.runner.Run(ctx, runtime.CommandSpec{Name: "git", Args: args, Dir: dir})
	return res.Stdout, res.Err
}

// remote returns an authenticated HTTPS remote for an owner/name repository.
func (c *Checker) remote(repository string) string {
	return fmt.Sprintf("https://%s@github.com/%s.git", c.opts.Token, repository)
}

func (c *Checker) resolve(dir string) string {
	if filepath.IsAbs(dir) || c.opts.WorkDir == "" {
		return dir
	}
	return filepath.Join(c.opts.WorkDir, dir)
}

// isEmptyDir reports whether dir is missing or has no entries.
func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
