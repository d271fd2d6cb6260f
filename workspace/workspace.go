// Package workspace knows the layout the pipeline writes into a ROS
// workspace and prepares the directories the container steps consume.
//
// All intermediate artifacts live under <workspace>/cc_internals so that
// colcon ignores them:
//
//	cc_internals/
//	    COLCON_IGNORE
//	    <platform>/            build context, templates, install_rosdeps.sh,
//	                           user-custom-setup, user-custom-data/
//	    sysroot/               exported root filesystem of the sysroot image
//	    metrics/               timing reports
//	    logs/                  container output when running with the TUI
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-git/v5"
	"github.com/moby/go-archive"

	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/templates"
)

// InternalsDir is the workspace-relative directory holding all artifacts.
const InternalsDir = "cc_internals"

const (
	installScriptName = "install_rosdeps.sh"
	customDataDirName = "user-custom-data"
	customSetupName   = "user-custom-setup"
)

// ErrInstallScriptMissing is returned when dependency collection has never
// produced an install script for the platform.
var ErrInstallScriptMissing = errors.New(
	"rosdep installation script has never been created, you need to run this without skipping rosdep collection at least once")

// ErrSetupScriptMissing is returned when a custom setup script is
// configured but does not exist.
var ErrSetupScriptMissing = errors.New("custom setup script does not exist")

// BuildDirRel returns the platform's build directory relative to the workspace.
func BuildDirRel(p platform.Platform) string {
	return filepath.Join(InternalsDir, p.String())
}

// BuildDir returns the platform's build directory inside ws.
func BuildDir(ws string, p platform.Platform) string {
	return filepath.Join(ws, BuildDirRel(p))
}

// InstallScriptRel returns the rosdep install script path relative to the workspace.
func InstallScriptRel(p platform.Platform) string {
	return filepath.Join(BuildDirRel(p), installScriptName)
}

// InstallScriptName is the file name of the rosdep install script inside the build directory.
func InstallScriptName() string { return installScriptName }

// SysrootDir returns where the sysroot filesystem is exported to.
func SysrootDir(ws string) string { return filepath.Join(ws, InternalsDir, "sysroot") }

// MetricsDir returns where timing reports are written.
func MetricsDir(ws string) string { return filepath.Join(ws, InternalsDir, "metrics") }

// LogsDir returns where container output is written when not on a terminal.
func LogsDir(ws string) string { return filepath.Join(ws, InternalsDir, "logs") }

// AssertInstallScriptExists fails with ErrInstallScriptMissing unless the
// platform's rosdep install script is a regular file.
func AssertInstallScriptExists(ws string, p platform.Platform) error {
	path := filepath.Join(ws, InstallScriptRel(p))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w (expected %s)", ErrInstallScriptMissing, path)
	}
	return nil
}

// EnsureBuildDir creates the platform build directory, marks the internals
// directory with COLCON_IGNORE and writes the embedded templates into it.
func EnsureBuildDir(ws string, p platform.Platform) (string, error) {
	dir := BuildDir(ws, p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating build directory: %w", err)
	}
	ignore := filepath.Join(ws, InternalsDir, "COLCON_IGNORE")
	if err := os.WriteFile(ignore, nil, 0644); err != nil {
		return "", fmt.Errorf("writing COLCON_IGNORE: %w", err)
	}
	if err := templates.Materialize(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// PrepareBuildContext assembles everything sysroot.Dockerfile copies from
// its context: templates, user custom data, the user setup script and the
// qemu emulator. Without a setup script an empty user-custom-setup is written.
func PrepareBuildContext(ws string, p platform.Platform, customDataDir, setupScript string) (string, error) {
	dir, err := EnsureBuildDir(ws, p)
	if err != nil {
		return "", err
	}

	dataDest := filepath.Join(dir, customDataDirName)
	if err := os.RemoveAll(dataDest); err != nil {
		return "", fmt.Errorf("clearing %s: %w", dataDest, err)
	}
	if customDataDir != "" {
		if err := archive.NewDefaultArchiver().CopyWithTar(customDataDir, dataDest); err != nil {
			return "", fmt.Errorf("copying custom data dir %s: %w", customDataDir, err)
		}
	} else if err := os.MkdirAll(dataDest, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dataDest, err)
	}

	if err := copySetupScript(setupScript, filepath.Join(dir, customSetupName)); err != nil {
		return "", err
	}

	if err := SetupEmulator(p, dir); err != nil {
		return "", err
	}
	return dir, nil
}

func copySetupScript(src, dest string) error {
	if src == "" {
		return os.WriteFile(dest, nil, 0755)
	}
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrSetupScriptMissing, src)
	}
	return copyFile(src, dest)
}

// Revision returns the HEAD commit of the git repository containing ws,
// or "" if ws is not inside one.
func Revision(ws string) string {
	repo, err := git.PlainOpenWithOptions(ws, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}

// OwnerUID is the uid containers chown their output to, so generated files
// stay owned by the invoking user.
func OwnerUID() string {
	return strconv.Itoa(os.Getuid())
}
