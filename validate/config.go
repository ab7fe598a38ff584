package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/initializ/skyci/config"
)

var (
	repoPattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	knownAccess   = map[string]bool{"public": true, "restricted": true}
	knownPlatform = map[string]bool{"travis": true, "gh-actions": true, "azure": true}
)

// ValidationResult holds errors and warnings from config validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateConfig checks a parsed Config for errors and warnings.
func ValidateConfig(cfg *config.Config) *ValidationResult {
	r := &ValidationResult{}

	if cfg.SDK.Package != "" && !strings.HasPrefix(cfg.SDK.Package, "@skyux-sdk/cli") {
		r.Warnings = append(r.Warnings, fmt.Sprintf("sdk.package %q is not the SKY UX CLI", cfg.SDK.Package))
	}
	if cfg.SDK.Platform != "" && !knownPlatform[cfg.SDK.Platform] {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unknown sdk.platform %q (known: travis, gh-actions, azure)", cfg.SDK.Platform))
	}

	for i, m := range cfg.SkipMarkers {
		if strings.TrimSpace(m) == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("skip_markers[%d]: marker must not be blank", i))
		}
	}
	if len(cfg.SkipMarkers) > 0 && !slices.Contains(cfg.SkipMarkers, "[ci skip]") {
		r.Warnings = append(r.Warnings, "skip_markers omits [ci skip]; baseline commits will trigger new builds")
	}

	if cfg.Publish.Access != "" && !knownAccess[cfg.Publish.Access] {
		r.Errors = append(r.Errors, fmt.Sprintf("publish.access %q must be one of: public, restricted", cfg.Publish.Access))
	}

	if cfg.Visual.ResultsRepo != "" && !repoPattern.MatchString(cfg.Visual.ResultsRepo) {
		r.Errors = append(r.Errors, fmt.Sprintf("visual.results_repo %q must be owner/name", cfg.Visual.ResultsRepo))
	}
	if cfg.Visual.BaselineDir != "" && cfg.Visual.BaselineDir == cfg.Visual.FailureDir {
		r.Errors = append(r.Errors, "visual.baseline_dir and visual.failure_dir must differ")
	}

	return r
}
