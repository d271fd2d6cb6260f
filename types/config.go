// Package types holds configuration types for ros-cross-compile.yaml.
package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the workspace when --config is not given.
const DefaultConfigFile = "ros-cross-compile.yaml"

// CrossConfig represents the ros-cross-compile.yaml configuration. Every
// field mirrors a build flag; flags given on the command line win.
type CrossConfig struct {
	Arch             string `yaml:"arch,omitempty"`
	OS               string `yaml:"os,omitempty"`
	Distro           string `yaml:"distro,omitempty"`
	ROSDistro        string `yaml:"rosdistro,omitempty"`
	SysrootBaseImage string `yaml:"sysroot_base_image,omitempty"`
	SysrootNoCache   bool   `yaml:"sysroot_nocache,omitempty"`
	Builder          string `yaml:"builder,omitempty"` // docker, podman, engine
	PrintMetrics     bool   `yaml:"print_metrics,omitempty"`

	SkipRosdepCollection bool     `yaml:"skip_rosdep_collection,omitempty"`
	SkipRosdepKeys       []string `yaml:"skip_rosdep_keys,omitempty"`
	CustomRosdepScript   string   `yaml:"custom_rosdep_script,omitempty"`
	CustomDataDir        string   `yaml:"custom_data_dir,omitempty"`
	CustomSetupScript    string   `yaml:"custom_setup_script,omitempty"`
}

// ParseCrossConfig parses raw YAML bytes into a CrossConfig. Unknown keys
// are ignored here; validate.ValidateConfigSchema reports them.
func ParseCrossConfig(data []byte) (*CrossConfig, error) {
	var cfg CrossConfig
	if len(data) == 0 {
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing cross-compile config: %w", err)
	}
	return &cfg, nil
}
