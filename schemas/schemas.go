// Package schemas embeds the JSON schemas used to validate configuration.
package schemas

import _ "embed"

// CrossConfigSchema is the JSON schema for ros-cross-compile.yaml.
//
//go:embed cross_config.schema.json
var CrossConfigSchema []byte
