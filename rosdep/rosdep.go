// Package rosdep resolves a workspace's rosdep keys into an install script
// for the target platform by running rosdep inside a helper container.
package rosdep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/templates"
	"github.com/teodormadan/cross-compile/workspace"
)

// Image is the tag of the helper image that runs rosdep.
const Image = "ros_cross_compile:rosdep"

// Mount points inside the helper container.
const (
	WorkspaceMount  = "/ws"
	CustomScriptDst = "/usercustom/rosdep_setup"
	CustomDataDst   = "/usercustom/custom-data"
)

// Options configures one dependency gather.
type Options struct {
	SkipKeys      []string
	CustomScript  string
	CustomDataDir string
	Output        io.Writer // Container output; nil discards.
}

// Gather builds the rosdep helper image and runs it against ws, leaving
// the install script at workspace.InstallScriptRel(p).
func Gather(ctx context.Context, client container.Client, p platform.Platform, ws string, opts Options) error {
	buildDir, err := workspace.EnsureBuildDir(ws, p)
	if err != nil {
		return err
	}

	slog.Debug("building rosdep image", "image", Image, "client", client.Name())
	if _, err := client.BuildImage(ctx, container.BuildOptions{
		ContextDir: buildDir,
		Dockerfile: templates.RosdepDockerfile,
		Tag:        Image,
	}); err != nil {
		return fmt.Errorf("building %s: %w", Image, err)
	}

	run, err := runOptions(p, ws, opts)
	if err != nil {
		return err
	}

	slog.Info("gathering rosdep keys", "platform", p.String(), "skip_keys", len(opts.SkipKeys))
	if err := client.RunContainer(ctx, run); err != nil {
		return fmt.Errorf("gathering rosdeps: %w", err)
	}
	return nil
}

func runOptions(p platform.Platform, ws string, opts Options) (container.RunOptions, error) {
	absWS, err := filepath.Abs(ws)
	if err != nil {
		return container.RunOptions{}, fmt.Errorf("resolving workspace path: %w", err)
	}

	mounts := []container.Mount{{Source: absWS, Target: WorkspaceMount}}
	env := map[string]string{
		"OUT_PATH":         path.Join(WorkspaceMount, filepath.ToSlash(workspace.InstallScriptRel(p))),
		"OWNER_USER":       workspace.OwnerUID(),
		"ROSDISTRO":        p.ROSDistro,
		"SKIP_ROSDEP_KEYS": strings.Join(opts.SkipKeys, " "),
		"TARGET_OS":        p.OS + ":" + p.OSDistro,
	}

	if opts.CustomScript != "" {
		script, err := filepath.Abs(opts.CustomScript)
		if err != nil {
			return container.RunOptions{}, fmt.Errorf("resolving custom rosdep script: %w", err)
		}
		mounts = append(mounts, container.Mount{Source: script, Target: CustomScriptDst, ReadOnly: true})
		env["CUSTOM_SETUP"] = CustomScriptDst
	}
	if opts.CustomDataDir != "" {
		data, err := filepath.Abs(opts.CustomDataDir)
		if err != nil {
			return container.RunOptions{}, fmt.Errorf("resolving custom data dir: %w", err)
		}
		mounts = append(mounts, container.Mount{Source: data, Target: CustomDataDst, ReadOnly: true})
	}

	return container.RunOptions{
		Image:   Image,
		Env:     env,
		Mounts:  mounts,
		Workdir: WorkspaceMount,
		Output:  opts.Output,
	}, nil
}
