// Package sysroot builds the target-architecture image holding the
// workspace's dependencies and exports its root filesystem.
package sysroot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/templates"
	"github.com/teodormadan/cross-compile/workspace"
)

// ManifestName is written into the build directory after a successful build.
const ManifestName = "sysroot-manifest.json"

// Options configures one sysroot build.
type Options struct {
	CustomDataDir string
	SetupScript   string // Run in the image before the dependency script.
	NoCache       bool
}

// Create builds p.SysrootImageTag() from the workspace's install script and
// exports the image filesystem to workspace.SysrootDir(ws).
func Create(ctx context.Context, client container.Client, p platform.Platform, ws string, opts Options) error {
	if err := workspace.AssertInstallScriptExists(ws, p); err != nil {
		return err
	}

	buildDir, err := workspace.PrepareBuildContext(ws, p, opts.CustomDataDir, opts.SetupScript)
	if err != nil {
		return err
	}

	tag := p.SysrootImageTag()
	slog.Info("building sysroot image",
		"image", tag, "base_image", p.TargetBaseImage(), "platform", p.DockerPlatform(), "client", client.Name())

	result, err := client.BuildImage(ctx, BuildOptions(p, buildDir, opts.NoCache))
	if err != nil {
		return fmt.Errorf("building sysroot image %s: %w", tag, err)
	}

	dest := workspace.SysrootDir(ws)
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clearing previous sysroot: %w", err)
	}
	slog.Debug("exporting sysroot", "image", tag, "dest", dest)
	if err := client.ExportImageFilesystem(ctx, tag, p.DockerPlatform(), dest); err != nil {
		return fmt.Errorf("exporting sysroot: %w", err)
	}

	manifest := &container.ImageManifest{
		ImageTag:  tag,
		ImageID:   result.ImageID,
		Client:    client.Name(),
		Platform:  p.DockerPlatform(),
		BaseImage: p.TargetBaseImage(),
		BuiltAt:   time.Now().UTC().Format(time.RFC3339),
		BuildDir:  buildDir,
		NoCache:   opts.NoCache,
	}
	return container.WriteManifest(filepath.Join(buildDir, ManifestName), manifest)
}

// BuildOptions returns the image build request for p's sysroot.
func BuildOptions(p platform.Platform, buildDir string, noCache bool) container.BuildOptions {
	return container.BuildOptions{
		ContextDir: buildDir,
		Dockerfile: templates.SysrootDockerfile,
		Tag:        p.SysrootImageTag(),
		Platform:   p.DockerPlatform(),
		NoCache:    noCache,
		BuildArgs: map[string]string{
			"BASE_IMAGE":        p.TargetBaseImage(),
			"ROS_VERSION":       p.ROSVersion(),
			"DEPENDENCY_SCRIPT": workspace.InstallScriptName(),
		},
	}
}
