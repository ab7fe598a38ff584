package build

import "github.com/initializ/skyci/pipeline"

// Options configures the standard stage list.
type Options struct {
	SDK           SDK
	SkipMarkers   []string
	BuilderConfig string
	Codecov       bool
	DistDir       string
	Access        string

	Baselines BaselineChecker
	Failures  FailureChecker
	Notifier  Notifier
}

// Stages returns the library pipeline in its fixed order.
func Stages(opts Options) []pipeline.Stage {
	return []pipeline.Stage{
		&SkipCheckStage{Markers: opts.SkipMarkers},
		&InstallStage{BuilderConfig: opts.BuilderConfig},
		&CertsStage{SDK: opts.SDK},
		&CoverageStage{SDK: opts.SDK, Codecov: opts.Codecov},
		&BuildStage{SDK: opts.SDK},
		&VisualStage{SDK: opts.SDK, Baselines: opts.Baselines, Failures: opts.Failures},
		&LibraryStage{SDK: opts.SDK},
		&PublishStage{DistDir: opts.DistDir, Access: opts.Access, Notifier: opts.Notifier},
	}
}
