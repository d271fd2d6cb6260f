package build

import (
	"context"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/pipeline"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/sysroot"
	"github.com/teodormadan/cross-compile/timing"
)

// SysrootStage builds the target platform's sysroot image.
type SysrootStage struct {
	timings *timing.Collector
	create  SysrootFunc
}

// NewSysrootStage returns a SysrootStage recording into timings.
func NewSysrootStage(timings *timing.Collector) *SysrootStage {
	return &SysrootStage{timings: timings, create: sysroot.Create}
}

func (s *SysrootStage) Name() string { return "create_sysroot" }

func (s *SysrootStage) Run(ctx context.Context, p platform.Platform, client container.Client, ws string, opts pipeline.ConfigOptions) error {
	return s.timings.Time(TimerSysroot, func() error {
		return s.create(ctx, client, p, ws, sysroot.Options{
			CustomDataDir: opts.CustomDataDir,
			SetupScript:   opts.CustomSetupScript,
			NoCache:       opts.SysrootNoCache,
		})
	})
}
