// Package ci captures the environment a pipeline run was triggered from and
// classifies it (push, pull request, tag, fork).
package ci

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	EventPush        = "push"
	EventPullRequest = "pull_request"

	tagPrefix    = "refs/tags/"
	branchPrefix = "refs/heads/"
)

// Context is an immutable snapshot of the facts a run depends on. Build it
// once with FromEnv or FromMap and pass it by value.
type Context struct {
	EventName  string `env:"GITHUB_EVENT_NAME"`
	Ref        string `env:"GITHUB_REF"`
	HeadRef    string `env:"GITHUB_HEAD_REF"` // only set for forked pull requests
	Repository string `env:"GITHUB_REPOSITORY"`
	RunID      string `env:"GITHUB_RUN_ID"`
	Workspace  string `env:"GITHUB_WORKSPACE"`

	// Action inputs. GitHub exposes `with:` values as INPUT_<NAME>.
	WorkingDirectory string `env:"INPUT_WORKING-DIRECTORY"`
	GitHubToken      string `env:"INPUT_GITHUB-TOKEN"`
	NPMToken         string `env:"INPUT_NPM-TOKEN"`
	SlackWebhook     string `env:"INPUT_SLACK-WEBHOOK"`

	// WorkDir is Workspace joined with WorkingDirectory.
	WorkDir string
}

// FromEnv reads the process environment. When GITHUB_WORKSPACE is unset the
// current directory is used as the workspace.
func FromEnv() (Context, error) {
	var c Context
	if err := env.Parse(&c); err != nil {
		return Context{}, fmt.Errorf("reading environment: %w", err)
	}
	if c.Workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Context{}, fmt.Errorf("getting working directory: %w", err)
		}
		c.Workspace = wd
	}
	c.finish()
	return c, nil
}

// FromMap builds a Context from a synthetic environment. Nothing is read
// from the process.
func FromMap(vars map[string]string) (Context, error) {
	var c Context
	if err := env.ParseWithOptions(&c, env.Options{Environment: vars}); err != nil {
		return Context{}, fmt.Errorf("reading environment: %w", err)
	}
	if c.Workspace == "" {
		c.Workspace = "."
	}
	c.finish()
	return c, nil
}

func (c *Context) finish() {
	if c.RunID == "" {
		c.RunID = RandomBuildID()
	}
	c.WorkDir = c.Workspace
	if c.WorkingDirectory != "" {
		if filepath.IsAbs(c.WorkingDirectory) {
			c.WorkDir = c.WorkingDirectory
		} else {
			c.WorkDir = filepath.Join(c.Workspace, c.WorkingDirectory)
		}
	}
}

// RandomBuildID returns a random 9-digit decimal identifier.
func RandomBuildID() string {
	return fmt.Sprintf("%d", 100_000_000+rand.IntN(900_000_000))
}

// IsPullRequest reports whether the run was triggered by a pull request.
func (c Context) IsPullRequest() bool { return c.EventName == EventPullRequest }

// IsPush reports whether the run was triggered by a push.
func (c Context) IsPush() bool { return c.EventName == EventPush }

// IsTag reports whether the ref is a tag, regardless of event kind.
func (c Context) IsTag() bool { return strings.HasPrefix(c.Ref, tagPrefix) }

// IsBranch reports whether the ref is a branch.
func (c Context) IsBranch() bool { return strings.HasPrefix(c.Ref, branchPrefix) }

// IsFork reports whether the run comes from a forked repository. GitHub only
// sets GITHUB_HEAD_REF for forks.
func (c Context) IsFork() bool { return c.HeadRef != "" }

// TagName returns the tag without its namespace, or "" for non-tag refs.
func (c Context) TagName() string {
	if !c.IsTag() {
		return ""
	}
	return strings.TrimPrefix(c.Ref, tagPrefix)
}

// BranchName returns the branch without its namespace, or "" for non-branch refs.
func (c Context) BranchName() string {
	if !c.IsBranch() {
		return ""
	}
	return strings.TrimPrefix(c.Ref, branchPrefix)
}

// Secrets returns the credential values carried by the context.
func (c Context) Secrets() []string {
	return []string{c.GitHubToken, c.NPMToken, c.SlackWebhook}
}
