package build

import (
	"context"
	"io"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/emulate"
	"github.com/teodormadan/cross-compile/pipeline"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/timing"
)

// EmulatedBuildStage compiles the workspace inside the sysroot image under
// emulation.
type EmulatedBuildStage struct {
	timings *timing.Collector
	out     io.Writer
	build   BuildFunc
}

// NewEmulatedBuildStage returns an EmulatedBuildStage recording into timings.
func NewEmulatedBuildStage(timings *timing.Collector, out io.Writer) *EmulatedBuildStage {
	return &EmulatedBuildStage{timings: timings, out: out, build: emulate.Build}
}

func (s *EmulatedBuildStage) Name() string { return "emulated_build" }

func (s *EmulatedBuildStage) Run(ctx context.Context, p platform.Platform, client container.Client, ws string, opts pipeline.ConfigOptions) error {
	return s.timings.Time(TimerEmulatedBuild, func() error {
		return s.build(ctx, client, p, ws, emulate.Options{
			SetupScript: opts.CustomSetupScript,
			Output:      s.out,
		})
	})
}
