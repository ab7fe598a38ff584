// Package schemas embeds the JSON Schemas used to validate project files.
package schemas

import _ "embed"

// ConfigSchema is the JSON Schema for .skyci.yaml.
//
//go:embed config.schema.json
var ConfigSchema []byte
