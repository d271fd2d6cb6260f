package sysroot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/container/containertest"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/workspace"
)

// testPlatform targets the host architecture so no qemu binary is needed.
func testPlatform(t *testing.T) platform.Platform {
	t.Helper()
	p, err := platform.New(platform.Options{Arch: workspace.HostArch(), OS: "ubuntu", ROSDistro: "foxy"})
	if err != nil {
		t.Skipf("host architecture not a supported target: %v", err)
	}
	p.Owner = "tester"
	return p
}

func writeInstallScript(t *testing.T, ws string, p platform.Platform) {
	t.Helper()
	path := filepath.Join(ws, workspace.InstallScriptRel(p))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/bash\n"), 0755); err != nil {
		t.Fatal(err)
	}
}

func TestCreate(t *testing.T) {
	ws := t.TempDir()
	p := testPlatform(t)
	writeInstallScript(t, ws, p)

	stale := filepath.Join(workspace.SysrootDir(ws), "stale")
	if err := os.MkdirAll(stale, 0755); err != nil {
		t.Fatal(err)
	}

	fake := &containertest.Fake{
		OnExport: func(_, dest string) error {
			if _, err := os.Stat(stale); !os.IsNotExist(err) {
				t.Errorf("previous sysroot not removed before export")
			}
			return nil
		},
	}
	if err := Create(context.Background(), fake, p, ws, Options{NoCache: true}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if len(fake.Builds) != 1 {
		t.Fatalf("builds = %d, want 1", len(fake.Builds))
	}
	b := fake.Builds[0]
	if b.Tag != "tester/"+p.String()+":latest" {
		t.Errorf("Tag = %q", b.Tag)
	}
	if !b.NoCache {
		t.Error("NoCache not forwarded")
	}
	if b.BuildArgs["DEPENDENCY_SCRIPT"] != "install_rosdeps.sh" || b.BuildArgs["ROS_VERSION"] != "ros2" {
		t.Errorf("BuildArgs = %v", b.BuildArgs)
	}

	if len(fake.Exports) != 1 || fake.Exports[0] != (containertest.Export{Image: b.Tag, Platform: p.DockerPlatform(), Dest: workspace.SysrootDir(ws)}) {
		t.Errorf("exports = %+v", fake.Exports)
	}

	m, err := container.ReadManifest(filepath.Join(workspace.BuildDir(ws, p), ManifestName))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if m.ImageTag != b.Tag || m.ImageID != "sha256:fake" || m.Client != "fake" {
		t.Errorf("manifest = %+v", m)
	}
}

func TestCreate_MissingInstallScript(t *testing.T) {
	fake := &containertest.Fake{}
	err := Create(context.Background(), fake, testPlatform(t), t.TempDir(), Options{})
	if !errors.Is(err, workspace.ErrInstallScriptMissing) {
		t.Fatalf("Create() = %v, want ErrInstallScriptMissing", err)
	}
	if len(fake.Builds) != 0 {
		t.Error("image built without an install script")
	}
}

func TestCreate_BuildFailure(t *testing.T) {
	ws := t.TempDir()
	p := testPlatform(t)
	writeInstallScript(t, ws, p)

	boom := errors.New("build failed")
	fake := &containertest.Fake{BuildErr: boom}
	if err := Create(context.Background(), fake, p, ws, Options{}); !errors.Is(err, boom) {
		t.Fatalf("Create() = %v, want %v", err, boom)
	}
	if len(fake.Exports) != 0 {
		t.Error("exported after failed build")
	}
}

func TestBuildOptions_OverrideBaseImage(t *testing.T) {
	p := platform.Platform{Arch: "armhf", OS: "ubuntu", OSDistro: "bionic", ROSDistro: "melodic", OverrideBaseImage: "my/base:1"}
	opts := BuildOptions(p, "/ctx", false)
	if opts.BuildArgs["BASE_IMAGE"] != "my/base:1" {
		t.Errorf("BASE_IMAGE = %q", opts.BuildArgs["BASE_IMAGE"])
	}
	if opts.BuildArgs["ROS_VERSION"] != "ros" {
		t.Errorf("ROS_VERSION = %q", opts.BuildArgs["ROS_VERSION"])
	}
	if opts.Platform != "linux/arm/v7" {
		t.Errorf("Platform = %q", opts.Platform)
	}
}

func TestCreate_SetupScriptInContext(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "no script", want: ""},
		{name: "with script", script: "#!/bin/bash\napt-get install -y libfoo-dev\n", want: "#!/bin/bash\napt-get install -y libfoo-dev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := t.TempDir()
			p := testPlatform(t)
			writeInstallScript(t, ws, p)

			opts := Options{}
			if tt.script != "" {
				opts.SetupScript = filepath.Join(t.TempDir(), "setup.bash")
				if err := os.WriteFile(opts.SetupScript, []byte(tt.script), 0644); err != nil {
					t.Fatal(err)
				}
			}

			fake := &containertest.Fake{}
			if err := Create(context.Background(), fake, p, ws, opts); err != nil {
				t.Fatalf("Create() error: %v", err)
			}
			got, err := os.ReadFile(filepath.Join(fake.Builds[0].ContextDir, "user-custom-setup"))
			if err != nil {
				t.Fatalf("user-custom-setup missing from build context: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("user-custom-setup = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreate_MissingSetupScript(t *testing.T) {
	ws := t.TempDir()
	p := testPlatform(t)
	writeInstallScript(t, ws, p)

	fake := &containertest.Fake{}
	err := Create(context.Background(), fake, p, ws, Options{SetupScript: filepath.Join(t.TempDir(), "nope.sh")})
	if !errors.Is(err, workspace.ErrSetupScriptMissing) {
		t.Fatalf("Create() = %v, want ErrSetupScriptMissing", err)
	}
	if len(fake.Builds) != 0 {
		t.Error("image built with a missing setup script")
	}
}

func TestCreate_ExportFailureWritesNoManifest(t *testing.T) {
	ws := t.TempDir()
	p := testPlatform(t)
	writeInstallScript(t, ws, p)

	boom := errors.New("export failed")
	fake := &containertest.Fake{ExportErr: boom}
	if err := Create(context.Background(), fake, p, ws, Options{}); !errors.Is(err, boom) {
		t.Fatalf("Create() = %v, want %v", err, boom)
	}
	if _, err := os.Stat(filepath.Join(workspace.BuildDir(ws, p), ManifestName)); !os.IsNotExist(err) {
		t.Errorf("manifest written for a failed export, stat err = %v", err)
	}
}
