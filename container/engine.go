package container

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/build"
	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	"github.com/moby/go-archive"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
)

// EngineClient talks to the Docker daemon through its HTTP API instead of
// shelling out. The connection is taken from the environment (DOCKER_HOST etc.).
type EngineClient struct {
	once sync.Once
	cli  *client.Client
	err  error
}

func (e *EngineClient) Name() string { return "engine" }

func (e *EngineClient) Available() bool {
	cli, err := e.client()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

func (e *EngineClient) client() (*client.Client, error) {
	e.once.Do(func() {
		e.cli, e.err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if e.err != nil {
			e.err = fmt.Errorf("failed to create docker client: %w", e.err)
		}
	})
	return e.cli, e.err
}

// Close releases the underlying API connection.
func (e *EngineClient) Close() error {
	if e.cli == nil {
		return nil
	}
	return e.cli.Close()
}

func (e *EngineClient) BuildImage(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	cli, err := e.client()
	if err != nil {
		return nil, err
	}

	buildContext, err := archive.TarWithOptions(opts.ContextDir, &archive.TarOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	defer buildContext.Close()

	buildArgs := lo.MapValues(opts.BuildArgs, func(v string, _ string) *string {
		return &v
	})

	resp, err := cli.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:        []string{opts.Tag},
		Dockerfile:  opts.Dockerfile,
		Platform:    opts.Platform,
		NoCache:     opts.NoCache,
		BuildArgs:   buildArgs,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return nil, fmt.Errorf("docker build failed: %w", err)
	}
	defer resp.Body.Close()

	// The daemon reports build errors inside the progress stream.
	var imageID string
	err = jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, func(msg jsonmessage.JSONMessage) {
		if msg.Aux == nil {
			return
		}
		var aux struct {
			ID string `json:"ID"`
		}
		if jsonErr := json.Unmarshal(*msg.Aux, &aux); jsonErr == nil && aux.ID != "" {
			imageID = aux.ID
		}
	})
	if err != nil {
		return nil, fmt.Errorf("docker build failed: %w", err)
	}

	return &BuildResult{ImageID: imageID, Tag: opts.Tag}, nil
}

func (e *EngineClient) RunContainer(ctx context.Context, opts RunOptions) error {
	cli, err := e.client()
	if err != nil {
		return err
	}

	env := lo.Map(sortedKeys(opts.Env), func(k string, _ int) string {
		return k + "=" + opts.Env[k]
	})
	mounts := lo.Map(opts.Mounts, func(m Mount, _ int) mount.Mount {
		return mount.Mount{
			Type:     mount.TypeBind,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		}
	})

	created, err := cli.ContainerCreate(ctx,
		&dockercontainer.Config{
			Image:      opts.Image,
			Env:        env,
			Cmd:        opts.Command,
			WorkingDir: opts.Workdir,
		},
		&dockercontainer.HostConfig{Mounts: mounts},
		nil, ociPlatform(opts.Platform), opts.Name,
	)
	if err != nil {
		return fmt.Errorf("creating container from %s: %w", opts.Image, err)
	}
	defer func() {
		_ = cli.ContainerRemove(context.Background(), created.ID, dockercontainer.RemoveOptions{Force: true})
	}()

	statusCh, errCh := cli.ContainerWait(ctx, created.ID, dockercontainer.WaitConditionNextExit)

	if err := cli.ContainerStart(ctx, created.ID, dockercontainer.StartOptions{}); err != nil {
		return fmt.Errorf("starting container from %s: %w", opts.Image, err)
	}

	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	logs, err := cli.ContainerLogs(ctx, created.ID, dockercontainer.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("attaching to container logs: %w", err)
	}
	defer logs.Close()
	if _, err := stdcopy.StdCopy(out, out, logs); err != nil {
		return fmt.Errorf("streaming container logs: %w", err)
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("waiting for container: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return fmt.Errorf("waiting for container: %s", status.Error.Message)
		}
		if status.StatusCode != 0 {
			return fmt.Errorf("%w: engine run %s: exit code %d", ErrContainerFailed, opts.Image, status.StatusCode)
		}
	}
	return nil
}

func (e *EngineClient) ExportImageFilesystem(ctx context.Context, image, platform, dest string) error {
	cli, err := e.client()
	if err != nil {
		return err
	}

	name := "ros-cross-compile-export-" + uuid.NewString()
	created, err := cli.ContainerCreate(ctx, &dockercontainer.Config{Image: image}, nil, nil, ociPlatform(platform), name)
	if err != nil {
		return fmt.Errorf("creating export container from %s: %w", image, err)
	}
	defer func() {
		_ = cli.ContainerRemove(context.Background(), created.ID, dockercontainer.RemoveOptions{Force: true})
	}()

	rc, err := cli.ContainerExport(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", image, err)
	}
	defer rc.Close()

	return extractRootfs(rc, dest)
}

// ociPlatform parses "os/arch[/variant]" as used by --platform. "" yields nil.
func ociPlatform(s string) *ocispec.Platform {
	if s == "" {
		return nil
	}
	parts := strings.SplitN(s, "/", 3)
	p := &ocispec.Platform{OS: parts[0]}
	if len(parts) > 1 {
		p.Architecture = parts[1]
	}
	if len(parts) > 2 {
		p.Variant = parts[2]
	}
	return p
}
