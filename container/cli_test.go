package container

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeBinary writes an executable shell script that records its arguments
// to argsFile, prints stdout, and exits with code.
func fakeBinary(t *testing.T, stdout string, code int) (bin, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	bin = filepath.Join(dir, "docker")
	argsFile = filepath.Join(dir, "args")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + argsFile + "\n" +
		"printf '" + stdout + "'\n" +
		"echo 'last stderr line' >&2\n" +
		"exit " + string(rune('0'+code)) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("writing fake binary: %v", err)
	}
	return bin, argsFile
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading args: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestCLIClient_Name(t *testing.T) {
	if got := NewCLIClient("docker").Name(); got != "docker" {
		t.Errorf("Name() = %q, want docker", got)
	}
	if got := NewCLIClient("/usr/local/bin/podman").Name(); got != "podman" {
		t.Errorf("Name() = %q, want podman", got)
	}
}

func TestBuildArgs(t *testing.T) {
	got := buildArgs(BuildOptions{
		ContextDir: "/ws/cc_internals/aarch64-ubuntu-foxy",
		Dockerfile: "sysroot.Dockerfile",
		Tag:        "me/aarch64-ubuntu-foxy:latest",
		Platform:   "linux/arm64",
		NoCache:    true,
		BuildArgs:  map[string]string{"ROS_VERSION": "ros2", "BASE_IMAGE": "arm64v8/ubuntu:focal"},
	})
	want := []string{
		"build",
		"-t", "me/aarch64-ubuntu-foxy:latest",
		"-f", "/ws/cc_internals/aarch64-ubuntu-foxy/sysroot.Dockerfile",
		"--platform", "linux/arm64",
		"--no-cache",
		"--build-arg", "BASE_IMAGE=arm64v8/ubuntu:focal",
		"--build-arg", "ROS_VERSION=ros2",
		"/ws/cc_internals/aarch64-ubuntu-foxy",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildArgs() =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildArgs_DefaultContext(t *testing.T) {
	got := buildArgs(BuildOptions{})
	if len(got) != 2 || got[1] != "." {
		t.Errorf("buildArgs() = %v, want [build .]", got)
	}
}

func TestRunArgs(t *testing.T) {
	got := runArgs(RunOptions{
		Image:    "ros_cross_compile:rosdep",
		Name:     "rosdep",
		Platform: "linux/arm64",
		Env:      map[string]string{"ROSDISTRO": "foxy", "OUT_PATH": "x.sh"},
		Mounts: []Mount{
			{Source: "/ws", Target: "/ws"},
			{Source: "/setup.sh", Target: "/custom-setup.sh", ReadOnly: true},
		},
		Workdir: "/ws",
		Command: []string{"/bin/sh", "-c", "true"},
	})
	want := []string{
		"run", "--rm",
		"--name", "rosdep",
		"--platform", "linux/arm64",
		"-e", "OUT_PATH=x.sh",
		"-e", "ROSDISTRO=foxy",
		"-v", "/ws:/ws",
		"-v", "/setup.sh:/custom-setup.sh:ro",
		"-w", "/ws",
		"ros_cross_compile:rosdep",
		"/bin/sh", "-c", "true",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("runArgs() =\n%v\nwant\n%v", got, want)
	}
}

func TestCreateArgs(t *testing.T) {
	tests := []struct {
		platform string
		want     []string
	}{
		{"", []string{"create", "--name", "exp", "me/img:latest"}},
		{"linux/arm/v7", []string{"create", "--name", "exp", "--platform", "linux/arm/v7", "me/img:latest"}},
	}
	for _, tt := range tests {
		if got := createArgs("exp", "me/img:latest", tt.platform); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("createArgs(%q) = %v, want %v", tt.platform, got, tt.want)
		}
	}
}

func TestParseImageID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name:   "docker style",
			output: "Step 1/5 : FROM alpine\nSuccessfully built abc123def",
			want:   "abc123def",
		},
		{
			name:   "sha256 hash",
			output: "Step 1/5 : FROM alpine\nsha256:abc123def456",
			want:   "sha256:abc123def456",
		},
		{
			name:   "last line fallback",
			output: "some-image-id",
			want:   "some-image-id",
		},
		{
			name:   "empty output",
			output: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseImageID(tt.output)
			if got != tt.want {
				t.Errorf("parseImageID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIClient_BuildImage(t *testing.T) {
	bin, argsFile := fakeBinary(t, "Successfully built feedface", 0)
	c := NewCLIClient(bin)

	res, err := c.BuildImage(context.Background(), BuildOptions{ContextDir: "/ctx", Tag: "t:1"})
	if err != nil {
		t.Fatalf("BuildImage() error: %v", err)
	}
	if res.ImageID != "feedface" {
		t.Errorf("ImageID = %q, want feedface", res.ImageID)
	}
	if res.Tag != "t:1" {
		t.Errorf("Tag = %q, want t:1", res.Tag)
	}
	args := readArgs(t, argsFile)
	if args[0] != "build" || args[len(args)-1] != "/ctx" {
		t.Errorf("args = %v", args)
	}
}

func TestCLIClient_BuildImageFailure(t *testing.T) {
	bin, _ := fakeBinary(t, "", 1)
	c := NewCLIClient(bin)

	_, err := c.BuildImage(context.Background(), BuildOptions{ContextDir: "/ctx"})
	if err == nil {
		t.Fatal("expected error from failing build")
	}
	if !strings.Contains(err.Error(), "last stderr line") {
		t.Errorf("error missing stderr: %v", err)
	}
}

func TestCLIClient_RunContainer(t *testing.T) {
	bin, argsFile := fakeBinary(t, "built ok", 0)
	c := NewCLIClient(bin)

	var out bytes.Buffer
	err := c.RunContainer(context.Background(), RunOptions{Image: "img", Output: &out})
	if err != nil {
		t.Fatalf("RunContainer() error: %v", err)
	}
	if !strings.Contains(out.String(), "built ok") {
		t.Errorf("output = %q, want container stdout", out.String())
	}
	args := readArgs(t, argsFile)
	if args[0] != "run" || args[len(args)-1] != "img" {
		t.Errorf("args = %v", args)
	}
}

func TestCLIClient_RunContainerNonZeroExit(t *testing.T) {
	bin, _ := fakeBinary(t, "", 2)
	c := NewCLIClient(bin)

	err := c.RunContainer(context.Background(), RunOptions{Image: "img"})
	if !errors.Is(err, ErrContainerFailed) {
		t.Fatalf("RunContainer() error = %v, want ErrContainerFailed", err)
	}
	if !strings.Contains(err.Error(), "exit code 2") {
		t.Errorf("error missing exit code: %v", err)
	}
}

func TestCLIClient_UnavailableBinary(t *testing.T) {
	c := NewCLIClient(filepath.Join(t.TempDir(), "missing"))
	if c.Available() {
		t.Error("Available() = true for missing binary")
	}
}
