// Package emulate runs the colcon build of a workspace inside its sysroot
// image under qemu user-mode emulation.
package emulate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/workspace"
)

// ErrSetupScriptMissing is returned when a custom setup script is
// configured but does not exist.
var ErrSetupScriptMissing = workspace.ErrSetupScriptMissing

// Mount points inside the sysroot container.
const (
	WorkspaceMount   = "/ros_ws"
	SetupScriptMount = "/custom-setup.sh"
)

// Options configures one emulated build.
type Options struct {
	SetupScript string
	Output      io.Writer // Container output; nil discards.
}

// Build runs the sysroot image's build entrypoint against ws, producing
// install_<arch> and build_<arch> in the workspace.
func Build(ctx context.Context, client container.Client, p platform.Platform, ws string, opts Options) error {
	run, err := RunOptions(p, ws, opts)
	if err != nil {
		return err
	}

	slog.Info("running emulated build", "image", run.Image, "platform", p.DockerPlatform(), "client", client.Name())
	if err := client.RunContainer(ctx, run); err != nil {
		return fmt.Errorf("emulated build: %w", err)
	}
	return nil
}

// RunOptions returns the container run request for building ws on p.
func RunOptions(p platform.Platform, ws string, opts Options) (container.RunOptions, error) {
	absWS, err := filepath.Abs(ws)
	if err != nil {
		return container.RunOptions{}, fmt.Errorf("resolving workspace path: %w", err)
	}

	run := container.RunOptions{
		Image:    p.SysrootImageTag(),
		Platform: p.DockerPlatform(),
		Env: map[string]string{
			"OWNER_USER":  workspace.OwnerUID(),
			"ROS_DISTRO":  p.ROSDistro,
			"TARGET_ARCH": p.Arch,
		},
		Mounts:  []container.Mount{{Source: absWS, Target: WorkspaceMount}},
		Workdir: WorkspaceMount,
		Output:  opts.Output,
	}

	if opts.SetupScript != "" {
		script, err := filepath.Abs(opts.SetupScript)
		if err != nil {
			return container.RunOptions{}, fmt.Errorf("resolving setup script: %w", err)
		}
		info, err := os.Stat(script)
		if err != nil || info.IsDir() {
			return container.RunOptions{}, fmt.Errorf("%w: %s", ErrSetupScriptMissing, script)
		}
		run.Mounts = append(run.Mounts, container.Mount{Source: script, Target: SetupScriptMount, ReadOnly: true})
		run.Env["CUSTOM_SETUP"] = SetupScriptMount
	}
	return run, nil
}
