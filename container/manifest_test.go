package container

import (
	"path/filepath"
	"testing"
)

func TestWriteAndReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysroot-manifest.json")

	original := &ImageManifest{
		ImageTag:  "me/aarch64-ubuntu-foxy:latest",
		ImageID:   "sha256:abc",
		Client:    "docker",
		Platform:  "linux/arm64",
		BaseImage: "arm64v8/ubuntu:focal",
		BuiltAt:   "2025-01-01T00:00:00Z",
		BuildDir:  "/ws/cc_internals/aarch64-ubuntu-foxy",
	}

	if err := WriteManifest(path, original); err != nil {
		t.Fatalf("WriteManifest() error: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if *got != *original {
		t.Errorf("ReadManifest() = %+v, want %+v", got, original)
	}
}

func TestReadManifest_NotFound(t *testing.T) {
	_, err := ReadManifest("/nonexistent/path/manifest.json")
	if err == nil {
		t.Error("expected error for nonexistent manifest")
	}
}

func TestWriteManifest_InvalidPath(t *testing.T) {
	m := &ImageManifest{ImageTag: "test"}
	err := WriteManifest("/nonexistent/dir/manifest.json", m)
	if err == nil {
		t.Error("expected error for invalid path")
	}
}
