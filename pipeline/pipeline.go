// Package pipeline provides the stage contract and the sequential runner
// that drives a cross-compilation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/platform"
)

// Stage is one step of a cross-compilation. Run returns only once the
// step's external work has finished.
type Stage interface {
	Name() string
	Run(ctx context.Context, p platform.Platform, client container.Client, workspace string, opts ConfigOptions) error
}

// Observer is notified as stages start and finish.
type Observer interface {
	StageStarted(name string)
	StageFinished(name string, err error)
}

// Pipeline executes a sequence of stages in order.
type Pipeline struct {
	stages   []Stage
	observer Observer
}

// New creates a Pipeline from the given stages.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// SetObserver registers o to receive stage progress. A nil o disables it.
func (p *Pipeline) SetObserver(o Observer) {
	p.observer = o
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes each stage sequentially. It stops on the first error and
// returns that error as the stage produced it.
func (p *Pipeline) Run(ctx context.Context, plat platform.Platform, client container.Client, workspace string, opts ConfigOptions) error {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before stage %s: %w", s.Name(), err)
		}

		slog.Info("running stage", "stage", s.Name(), "platform", plat.String())
		if p.observer != nil {
			p.observer.StageStarted(s.Name())
		}

		err := s.Run(ctx, plat, client, workspace, opts)

		if p.observer != nil {
			p.observer.StageFinished(s.Name(), err)
		}
		if err != nil {
			slog.Error("stage failed", "stage", s.Name(), "error", err)
			return err
		}
	}
	return nil
}
