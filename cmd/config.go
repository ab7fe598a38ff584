package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/initializ/skyci/config"
	"github.com/initializ/skyci/validate"
)

// resolvePath joins a relative path onto dir.
func resolvePath(path, dir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// loadConfig reads the config file at path and validates it against the
// schema and the semantic rules. A missing file yields the zero Config and a
// clean result.
func loadConfig(path string) (*config.Config, *validate.ValidationResult, error) {
	cfg, found, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !found {
		return cfg, &validate.ValidationResult{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	schemaErrs, err := validate.ValidateConfigYAML(data)
	if err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}

	result := validate.ValidateConfig(cfg)
	for _, e := range schemaErrs {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", filepath.Base(path), e))
	}
	return cfg, result, nil
}
