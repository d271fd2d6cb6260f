package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/moby/go-archive"
	"github.com/samber/lo"
)

// CLIClient drives a docker-compatible command line (docker or podman).
type CLIClient struct {
	Binary string // Executable name or path.
}

// NewCLIClient returns a client for the given docker-compatible binary.
func NewCLIClient(binary string) *CLIClient {
	return &CLIClient{Binary: binary}
}

func (c *CLIClient) Name() string { return filepath.Base(c.Binary) }

func (c *CLIClient) Available() bool {
	return exec.Command(c.Binary, "info").Run() == nil
}

func (c *CLIClient) BuildImage(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	cmd := exec.CommandContext(ctx, c.Binary, buildArgs(opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s build failed: %s: %w", c.Name(), strings.TrimSpace(stderr.String()), err)
	}

	return &BuildResult{
		ImageID: parseImageID(string(out)),
		Tag:     opts.Tag,
	}, nil
}

func (c *CLIClient) RunContainer(ctx context.Context, opts RunOptions) error {
	cmd := exec.CommandContext(ctx, c.Binary, runArgs(opts)...)
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = io.MultiWriter(out, &stderr)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s run %s: exit code %d: %s",
				ErrContainerFailed, c.Name(), opts.Image, exitErr.ExitCode(), lastLine(stderr.String()))
		}
		return fmt.Errorf("%s run %s: %w", c.Name(), opts.Image, err)
	}
	return nil
}

func (c *CLIClient) ExportImageFilesystem(ctx context.Context, image, platform, dest string) error {
	name := "ros-cross-compile-export-" + uuid.NewString()

	create := exec.CommandContext(ctx, c.Binary, createArgs(name, image, platform)...)
	if out, err := create.CombinedOutput(); err != nil {
		return fmt.Errorf("creating export container from %s: %s: %w", image, strings.TrimSpace(string(out)), err)
	}
	defer exec.Command(c.Binary, "rm", "-f", name).Run() //nolint:errcheck

	export := exec.CommandContext(ctx, c.Binary, "export", name)
	var stderr bytes.Buffer
	export.Stderr = &stderr
	stdout, err := export.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening export stream: %w", err)
	}
	if err := export.Start(); err != nil {
		return fmt.Errorf("starting %s export: %w", c.Name(), err)
	}

	untarErr := extractRootfs(stdout, dest)
	if untarErr != nil {
		// unblock the exporter before waiting on it
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := export.Wait(); err != nil {
		return fmt.Errorf("%s export failed: %s: %w", c.Name(), strings.TrimSpace(stderr.String()), err)
	}
	return untarErr
}

// buildArgs renders the argument list for "<binary> build".
func buildArgs(opts BuildOptions) []string {
	args := []string{"build"}

	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	if opts.Dockerfile != "" {
		args = append(args, "-f", filepath.Join(opts.ContextDir, opts.Dockerfile))
	}
	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	for _, k := range sortedKeys(opts.BuildArgs) {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, opts.BuildArgs[k]))
	}

	contextDir := opts.ContextDir
	if contextDir == "" {
		contextDir = "."
	}
	return append(args, contextDir)
}

// createArgs renders the argument list for "<binary> create".
func createArgs(name, image, platform string) []string {
	args := []string{"create", "--name", name}
	if platform != "" {
		args = append(args, "--platform", platform)
	}
	return append(args, image)
}

// runArgs renders the argument list for "<binary> run".
func runArgs(opts RunOptions) []string {
	args := []string{"run", "--rm"}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.Platform != "" {
		args = append(args, "--platform", opts.Platform)
	}
	for _, k := range sortedKeys(opts.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}
	for _, m := range opts.Mounts {
		spec := m.Source + ":" + m.Target
		if m.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "-v", spec)
	}
	if opts.Workdir != "" {
		args = append(args, "-w", opts.Workdir)
	}

	args = append(args, opts.Image)
	return append(args, opts.Command...)
}

// parseImageID extracts the image ID from build output.
func parseImageID(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		// Docker outputs "Successfully built <id>" or just a sha256 hash
		if strings.HasPrefix(line, "Successfully built ") {
			return strings.TrimPrefix(line, "Successfully built ")
		}
		if strings.HasPrefix(line, "sha256:") {
			return line
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return ""
}

// extractRootfs unpacks an exported container filesystem into dest.
// Device nodes are skipped so extraction works without root.
func extractRootfs(r io.Reader, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	err := archive.Untar(r, dest, &archive.TarOptions{
		NoLchown:        true,
		ExcludePatterns: []string{"dev/*"},
	})
	if err != nil {
		return fmt.Errorf("extracting filesystem into %s: %w", dest, err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
