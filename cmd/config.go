package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/teodormadan/cross-compile/config"
	"github.com/teodormadan/cross-compile/types"
	"github.com/teodormadan/cross-compile/validate"
)

// userConfigPath is the per-user fallback config.
//
//	Linux:   $XDG_CONFIG_HOME/ros-cross-compile/ros-cross-compile.yaml
//	macOS:   ~/Library/Application Support/ros-cross-compile/ros-cross-compile.yaml
var userConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "ros-cross-compile", types.DefaultConfigFile)
}

// resolveConfigPath returns the --config path, else the default file inside
// dir, else the per-user config. The second result is false when no config
// file applies.
func resolveConfigPath(dir string) (string, bool, error) {
	if cfgFile != "" {
		path, err := filepath.Abs(cfgFile)
		if err != nil {
			return "", false, fmt.Errorf("resolving config path: %w", err)
		}
		return path, true, nil
	}
	for _, path := range []string{filepath.Join(dir, types.DefaultConfigFile), userConfigPath()} {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return path, true, nil
	}
	return "", false, nil
}

// loadConfig loads and schema-checks the config file for dir, reporting
// schema errors to stderr. A missing default file yields an empty config.
func loadConfig(dir string, stderr io.Writer) (*types.CrossConfig, string, error) {
	path, ok, err := resolveConfigPath(dir)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return &types.CrossConfig{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading config %s: %w", path, err)
	}
	errs, err := validate.ValidateConfigSchema(data)
	if err != nil {
		return nil, "", err
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(stderr, "ERROR: %s: %s\n", path, e)
		}
		return nil, "", fmt.Errorf("config %s does not match schema: %d error(s)", path, len(errs))
	}

	cfg, err := config.LoadCrossConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
