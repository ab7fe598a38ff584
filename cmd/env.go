package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/initializ/skyci/ci"
)

var envJSON bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show how the current CI environment is classified",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := ci.FromEnv()
		if err != nil {
			return err
		}
		return printEnv(os.Stdout, env, envJSON)
	},
}

func init() {
	envCmd.Flags().BoolVar(&envJSON, "json", false, "print as JSON")
}

type envReport struct {
	Event       string `json:"event"`
	Ref         string `json:"ref"`
	Repository  string `json:"repository"`
	RunID       string `json:"run_id"`
	WorkDir     string `json:"work_dir"`
	Push        bool   `json:"push"`
	PullRequest bool   `json:"pull_request"`
	Tag         string `json:"tag,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Fork        bool   `json:"fork"`

	GitHubToken  string `json:"github_token"`
	NPMToken     string `json:"npm_token"`
	SlackWebhook string `json:"slack_webhook"`
}

func newEnvReport(env ci.Context) envReport {
	return envReport{
		Event:        env.EventName,
		Ref:          env.Ref,
		Repository:   env.Repository,
		RunID:        env.RunID,
		WorkDir:      env.WorkDir,
		Push:         env.IsPush(),
		PullRequest:  env.IsPullRequest(),
		Tag:          env.TagName(),
		Branch:       env.BranchName(),
		Fork:         env.IsFork(),
		GitHubToken:  secretState(env.GitHubToken),
		NPMToken:     secretState(env.NPMToken),
		SlackWebhook: secretState(env.SlackWebhook),
	}
}

func secretState(v string) string {
	if v == "" {
		return "unset"
	}
	return "set"
}

// printEnv writes the classification of env. Secret values are never
// printed, only whether they are set.
func printEnv(w io.Writer, env ci.Context, asJSON bool) error {
	r := newEnvReport(env)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	rows := []struct{ key, value string }{
		{"Event", r.Event},
		{"Ref", r.Ref},
		{"Repository", r.Repository},
		{"Run ID", r.RunID},
		{"Work dir", r.WorkDir},
		{"Push", fmt.Sprint(r.Push)},
		{"Pull request", fmt.Sprint(r.PullRequest)},
		{"Tag", r.Tag},
		{"Branch", r.Branch},
		{"Fork", fmt.Sprint(r.Fork)},
		{"GitHub token", r.GitHubToken},
		{"NPM token", r.NPMToken},
		{"Slack webhook", r.SlackWebhook},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "  %-14s %s\n", row.key+":", row.value); err != nil {
			return err
		}
	}
	return nil
}
