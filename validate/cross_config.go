package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/types"
)

var knownBuilders = map[string]bool{"docker": true, "podman": true, "engine": true}

// ValidationResult holds errors and warnings from config validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateCrossConfig checks a fully merged CrossConfig for errors and
// warnings before a build.
func ValidateCrossConfig(cfg *types.CrossConfig) *ValidationResult {
	r := &ValidationResult{}

	if cfg.Arch == "" {
		r.Errors = append(r.Errors, "arch is required")
	}
	if cfg.OS == "" {
		r.Errors = append(r.Errors, "os is required")
	}
	if cfg.ROSDistro == "" {
		r.Errors = append(r.Errors, "rosdistro is required")
	}
	if len(r.Errors) == 0 {
		if _, err := platform.New(platform.Options{
			Arch:      cfg.Arch,
			OS:        cfg.OS,
			OSDistro:  cfg.Distro,
			ROSDistro: cfg.ROSDistro,
		}); err != nil {
			r.Errors = append(r.Errors, err.Error())
		}
	}

	if cfg.Distro != "" && cfg.OS != "" && cfg.ROSDistro != "" {
		if def := platform.DefaultOSDistro(cfg.OS, cfg.ROSDistro); def != "" && def != cfg.Distro {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"distro %q is not the default %q for %s on %s", cfg.Distro, def, cfg.ROSDistro, cfg.OS))
		}
	}

	if cfg.Builder != "" && !knownBuilders[cfg.Builder] {
		r.Errors = append(r.Errors, fmt.Sprintf("builder %q must be one of: docker, podman, engine", cfg.Builder))
	}

	for i, k := range cfg.SkipRosdepKeys {
		if strings.TrimSpace(k) == "" {
			r.Errors = append(r.Errors, fmt.Sprintf("skip_rosdep_keys[%d]: key is empty", i))
		} else if strings.ContainsAny(k, " \t") {
			r.Errors = append(r.Errors, fmt.Sprintf("skip_rosdep_keys[%d]: %q contains whitespace", i, k))
		}
	}

	checkPath(r, "custom_rosdep_script", cfg.CustomRosdepScript, false)
	checkPath(r, "custom_data_dir", cfg.CustomDataDir, true)
	checkPath(r, "custom_setup_script", cfg.CustomSetupScript, false)

	if cfg.SkipRosdepCollection && (len(cfg.SkipRosdepKeys) > 0 || cfg.CustomRosdepScript != "") {
		r.Warnings = append(r.Warnings, "skip_rosdep_keys and custom_rosdep_script have no effect with skip_rosdep_collection")
	}

	return r
}

func checkPath(r *ValidationResult, field, path string, wantDir bool) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		r.Errors = append(r.Errors, fmt.Sprintf("%s %q does not exist", field, path))
	case wantDir && !info.IsDir():
		r.Errors = append(r.Errors, fmt.Sprintf("%s %q is not a directory", field, path))
	case !wantDir && info.IsDir():
		r.Errors = append(r.Errors, fmt.Sprintf("%s %q is a directory", field, path))
	}
}
