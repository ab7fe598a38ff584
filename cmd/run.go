package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/initializ/skyci/build"
	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/config"
	"github.com/initializ/skyci/internal/tui"
	"github.com/initializ/skyci/notify"
	"github.com/initializ/skyci/pipeline"
	"github.com/initializ/skyci/runtime"
	"github.com/initializ/skyci/visual"
)

const resultPathEnv = "SKYCI_RESULT_PATH"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the library pipeline for the current CI event",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	env, err := ci.FromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	styles := tui.NewStyleSet(tui.DetectTheme(themeOverride), lipgloss.NewRenderer(os.Stdout))
	return runPipeline(ctx, env, pipelineIO{
		stdout: os.Stdout,
		stderr: os.Stderr,
		styles: styles,
		width:  tui.Width(os.Stdout),
		setenv: os.Setenv,
	})
}

// pipelineIO collects the process-facing pieces of a run so tests can
// replace them.
type pipelineIO struct {
	stdout io.Writer
	stderr io.Writer
	styles *tui.StyleSet
	width  int
	setenv func(key, value string) error
	// stages overrides the stage list; nil uses build.Stages.
	stages []pipeline.Stage
}

func runPipeline(ctx context.Context, env ci.Context, pio pipelineIO) error {
	cfg, result, err := loadConfig(resolvePath(cfgFile, env.WorkDir))
	if err != nil {
		return err
	}
	printResult(pio.stderr, result)
	if !result.IsValid() {
		return fmt.Errorf("config validation failed: %d error(s)", len(result.Errors))
	}

	logger := runtime.NewLogger(logFormat, pio.stderr, verbose)
	logger.Info("skyci starting", map[string]any{
		"version":    appVersion,
		"event":      env.EventName,
		"ref":        env.Ref,
		"repository": env.Repository,
		"run_id":     env.RunID,
		"work_dir":   env.WorkDir,
	})
	if env.IsFork() {
		logger.Warn("running from a fork; repository secrets are unavailable", map[string]any{"head_ref": env.HeadRef})
	}

	runner := runtime.NewRunner(env.WorkDir, pio.stdout, pio.stderr, logger)
	runner.Mask(env.Secrets()...)

	rc := pipeline.NewRunContext(pipeline.Options{WorkDir: env.WorkDir}, env, runner, logger)
	if pio.setenv != nil {
		rc.Setenv = pio.setenv
	}

	if path := resultPath(cfg, env.WorkDir); path != "" {
		results, err := pipeline.NewResultLog(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := results.Close(); err != nil {
				logger.Warn("result log incomplete", map[string]any{"path": path, "error": err.Error()})
			}
		}()
		rc.Results = results
	}

	stages := pio.stages
	if stages == nil {
		stages = build.Stages(stageOptions(cfg, env, runner, logger))
	}
	p := pipeline.New(stages...)
	logger.Debug("pipeline stages", map[string]any{"order": strings.Join(p.Stages(), ",")})
	run := p.Run(ctx, rc)

	styles := pio.styles
	if styles == nil {
		styles = tui.NewStyleSet(tui.DarkTheme, lipgloss.NewRenderer(pio.stdout))
	}
	fmt.Fprint(pio.stdout, tui.RenderSummary(run, rc.Warnings, styles, pio.width))

	if !run.Success() {
		return fmt.Errorf("pipeline failed: %d stage(s) failed", len(run.Failures()))
	}
	return nil
}

func resultPath(cfg *config.Config, workDir string) string {
	path := os.Getenv(resultPathEnv)
	if path == "" {
		path = cfg.ResultPath
	}
	return resolvePath(path, workDir)
}

// stageOptions maps the project config and environment onto the stage list.
func stageOptions(cfg *config.Config, env ci.Context, runner visual.Runner, logger runtime.Logger) build.Options {
	checker := visual.New(runner, visual.Options{
		WorkDir:     env.WorkDir,
		BaselineDir: cfg.Visual.BaselineDir,
		FailureDir:  cfg.Visual.FailureDir,
		ResultsRepo: cfg.Visual.ResultsRepo,
		Branch:      env.BranchName(),
		Token:       env.GitHubToken,
		Logger:      logger,
	})

	return build.Options{
		SDK:           build.SDK{Package: cfg.SDK.Package, Platform: cfg.SDK.Platform},
		SkipMarkers:   cfg.SkipMarkers,
		BuilderConfig: cfg.Install.BuilderConfig,
		Codecov:       cfg.Coverage.CodecovEnabled(),
		DistDir:       cfg.Publish.DistDir,
		Access:        cfg.Publish.Access,
		Baselines:     checker,
		Failures:      checker,
		Notifier:      notify.New(env.SlackWebhook, logger),
	}
}
