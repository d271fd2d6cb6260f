package container

import (
	"testing"
)

func TestGet_KnownClients(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"docker", "docker"},
		{"podman", "podman"},
		{"engine", "engine"},
	}

	for _, tt := range tests {
		c := Get(tt.name)
		if c == nil {
			t.Errorf("Get(%q) returned nil", tt.name)
			continue
		}
		if c.Name() != tt.expected {
			t.Errorf("Get(%q).Name() = %q, want %q", tt.name, c.Name(), tt.expected)
		}
	}
}

func TestGet_UnknownClient(t *testing.T) {
	c := Get("buildah")
	if c != nil {
		t.Errorf("Get(\"buildah\") = %v, want nil", c)
	}
}

func TestDetect_ReturnsClientOrNil(t *testing.T) {
	// Which runtime is installed depends on the machine running the tests.
	c := Detect()
	if c != nil {
		name := c.Name()
		if name != "docker" && name != "podman" {
			t.Errorf("Detect() returned client with unexpected name: %q", name)
		}
	}
}

func TestEngineClient_CloseWithoutConnect(t *testing.T) {
	e := &EngineClient{}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
