package build

import (
	"encoding/json"
	"fmt"
	"os"
)

// PackageJSON holds the package.json fields the pipeline reads.
type PackageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReadPackageJSON parses the package.json at path.
func ReadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if pkg.Name == "" {
		return nil, fmt.Errorf("%s: name is required", path)
	}
	return &pkg, nil
}

// Spec returns "name@version", or just the name when version is empty.
func (p *PackageJSON) Spec() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}
