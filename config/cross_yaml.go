// Package config loads ros-cross-compile.yaml from disk.
package config

import (
	"fmt"
	"os"

	"github.com/teodormadan/cross-compile/types"
)

// LoadCrossConfig reads and parses a ros-cross-compile.yaml file from the given path.
func LoadCrossConfig(path string) (*types.CrossConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cross-compile config %s: %w", path, err)
	}
	return types.ParseCrossConfig(data)
}
