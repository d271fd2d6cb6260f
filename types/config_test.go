package types

import (
	"slices"
	"testing"
)

func TestParseCrossConfig(t *testing.T) {
	data := []byte(`
arch: aarch64
os: ubuntu
rosdistro: foxy
builder: podman
sysroot_nocache: true
skip_rosdep_keys:
  - foo
  - bar
custom_setup_script: ./setup.bash
`)
	cfg, err := ParseCrossConfig(data)
	if err != nil {
		t.Fatalf("ParseCrossConfig() error: %v", err)
	}
	if cfg.Arch != "aarch64" || cfg.OS != "ubuntu" || cfg.ROSDistro != "foxy" {
		t.Errorf("platform fields = %q %q %q", cfg.Arch, cfg.OS, cfg.ROSDistro)
	}
	if cfg.Builder != "podman" || !cfg.SysrootNoCache {
		t.Errorf("builder = %q, nocache = %v", cfg.Builder, cfg.SysrootNoCache)
	}
	if !slices.Equal(cfg.SkipRosdepKeys, []string{"foo", "bar"}) {
		t.Errorf("SkipRosdepKeys = %v", cfg.SkipRosdepKeys)
	}
	if cfg.CustomSetupScript != "./setup.bash" {
		t.Errorf("CustomSetupScript = %q", cfg.CustomSetupScript)
	}
}

func TestParseCrossConfig_Empty(t *testing.T) {
	cfg, err := ParseCrossConfig(nil)
	if err != nil {
		t.Fatalf("ParseCrossConfig(nil) error: %v", err)
	}
	if cfg.Arch != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestParseCrossConfig_Malformed(t *testing.T) {
	if _, err := ParseCrossConfig([]byte("arch: [unterminated")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
