// Package build holds the concrete pipeline stages of a cross-compilation:
// dependency collection, sysroot creation and the emulated build.
package build

import (
	"context"
	"io"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/emulate"
	"github.com/teodormadan/cross-compile/pipeline"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/rosdep"
	"github.com/teodormadan/cross-compile/sysroot"
	"github.com/teodormadan/cross-compile/timing"
)

// Timer names, one per wrapped external operation.
const (
	TimerGatherRosdeps = "gather_rosdeps"
	TimerSysroot       = "create_workspace_sysroot_image"
	TimerEmulatedBuild = "run_emulated_docker_build"
)

// GatherFunc resolves rosdep keys into an install script.
type GatherFunc func(ctx context.Context, client container.Client, p platform.Platform, ws string, opts rosdep.Options) error

// SysrootFunc builds the sysroot image.
type SysrootFunc func(ctx context.Context, client container.Client, p platform.Platform, ws string, opts sysroot.Options) error

// BuildFunc runs the emulated build.
type BuildFunc func(ctx context.Context, client container.Client, p platform.Platform, ws string, opts emulate.Options) error

// Stages returns the full cross-compilation in execution order, all
// sharing timings. Container output is written to out.
func Stages(timings *timing.Collector, out io.Writer) []pipeline.Stage {
	return []pipeline.Stage{
		NewDependenciesStage(timings, out),
		NewSysrootStage(timings),
		NewEmulatedBuildStage(timings, out),
	}
}
