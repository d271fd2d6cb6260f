package build

import (
	"context"
	"io"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/pipeline"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/rosdep"
	"github.com/teodormadan/cross-compile/timing"
	"github.com/teodormadan/cross-compile/workspace"
)

// DependenciesStage collects the workspace's rosdep dependencies into an
// install script for the target platform.
type DependenciesStage struct {
	timings *timing.Collector
	out     io.Writer
	gather  GatherFunc
	assert  func(ws string, p platform.Platform) error
}

// NewDependenciesStage returns a DependenciesStage recording into timings.
func NewDependenciesStage(timings *timing.Collector, out io.Writer) *DependenciesStage {
	return &DependenciesStage{
		timings: timings,
		out:     out,
		gather:  rosdep.Gather,
		assert:  workspace.AssertInstallScriptExists,
	}
}

func (s *DependenciesStage) Name() string { return "gather_rosdeps" }

func (s *DependenciesStage) Run(ctx context.Context, p platform.Platform, client container.Client, ws string, opts pipeline.ConfigOptions) error {
	if !opts.SkipRosdepCollection {
		err := s.timings.Time(TimerGatherRosdeps, func() error {
			return s.gather(ctx, client, p, ws, rosdep.Options{
				SkipKeys:      opts.SkipRosdepKeys,
				CustomScript:  opts.CustomScript,
				CustomDataDir: opts.CustomDataDir,
				Output:        s.out,
			})
		})
		if err != nil {
			return err
		}
	}
	// Not timed: only the external call is measured.
	return s.assert(ws, p)
}
