// Package container issues image builds, container runs and filesystem
// exports against docker, podman, or the Docker Engine API.
package container

import (
	"context"
	"errors"
	"io"
)

// ErrContainerFailed is wrapped by errors for containers that exit non-zero.
var ErrContainerFailed = errors.New("container exited with non-zero status")

// Client is the execution client every pipeline stage issues its container
// operations through.
type Client interface {
	Name() string
	Available() bool
	BuildImage(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	RunContainer(ctx context.Context, opts RunOptions) error
	// ExportImageFilesystem extracts the root filesystem of image into dest.
	// platform selects the image variant; "" uses the daemon default.
	ExportImageFilesystem(ctx context.Context, image, platform, dest string) error
}

// BuildOptions configures an image build.
type BuildOptions struct {
	ContextDir string
	Dockerfile string // Relative to ContextDir.
	Tag        string
	Platform   string
	NoCache    bool
	BuildArgs  map[string]string
}

// BuildResult holds the result of an image build.
type BuildResult struct {
	ImageID string
	Tag     string
}

// Mount binds a host path into a container.
type Mount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// RunOptions configures a single container run. The container is removed
// once it exits.
type RunOptions struct {
	Image    string
	Name     string
	Platform string
	Env      map[string]string
	Mounts   []Mount
	Workdir  string
	Command  []string
	Output   io.Writer // Receives stdout and stderr; nil discards.
}

// Detect returns the first available CLI client in order: docker, podman.
// Returns nil if neither is available.
func Detect() Client {
	clients := []Client{
		NewCLIClient("docker"),
		NewCLIClient("podman"),
	}
	for _, c := range clients {
		if c.Available() {
			return c
		}
	}
	return nil
}

// Get returns a client by name, or nil if the name is unknown.
func Get(name string) Client {
	switch name {
	case "docker", "podman":
		return NewCLIClient(name)
	case "engine":
		return &EngineClient{}
	default:
		return nil
	}
}
