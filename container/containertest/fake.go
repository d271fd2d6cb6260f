// Package containertest provides an in-memory container.Client for tests.
package containertest

import (
	"context"
	"sync"

	"github.com/teodormadan/cross-compile/container"
)

// Fake records every call and returns the configured errors.
type Fake struct {
	mu sync.Mutex

	BuildErr  error
	RunErr    error
	ExportErr error

	// OnRun, if set, is called for each RunContainer before RunErr is returned.
	OnRun func(container.RunOptions) error
	// OnExport, if set, is called for each ExportImageFilesystem.
	OnExport func(image, dest string) error

	Builds  []container.BuildOptions
	Runs    []container.RunOptions
	Exports []Export
}

// Export is one recorded ExportImageFilesystem call.
type Export struct {
	Image    string
	Platform string
	Dest     string
}

var _ container.Client = (*Fake)(nil)

func (f *Fake) Name() string    { return "fake" }
func (f *Fake) Available() bool { return true }

func (f *Fake) BuildImage(_ context.Context, opts container.BuildOptions) (*container.BuildResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Builds = append(f.Builds, opts)
	if f.BuildErr != nil {
		return nil, f.BuildErr
	}
	return &container.BuildResult{ImageID: "sha256:fake", Tag: opts.Tag}, nil
}

func (f *Fake) RunContainer(_ context.Context, opts container.RunOptions) error {
	f.mu.Lock()
	f.Runs = append(f.Runs, opts)
	hook := f.OnRun
	f.mu.Unlock()
	if hook != nil {
		if err := hook(opts); err != nil {
			return err
		}
	}
	return f.RunErr
}

func (f *Fake) ExportImageFilesystem(_ context.Context, image, platform, dest string) error {
	f.mu.Lock()
	f.Exports = append(f.Exports, Export{Image: image, Platform: platform, Dest: dest})
	hook := f.OnExport
	f.mu.Unlock()
	if hook != nil {
		if err := hook(image, dest); err != nil {
			return err
		}
	}
	return f.ExportErr
}
