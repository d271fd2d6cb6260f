package container

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImageManifest records metadata about a built image next to its build context.
type ImageManifest struct {
	ImageTag  string `json:"image_tag"`
	ImageID   string `json:"image_id,omitempty"`
	Client    string `json:"client"`
	Platform  string `json:"platform,omitempty"`
	BaseImage string `json:"base_image,omitempty"`
	BuiltAt   string `json:"built_at"`
	BuildDir  string `json:"build_dir"`
	NoCache   bool   `json:"no_cache,omitempty"`
}

// WriteManifest writes the image manifest as JSON to the given path.
func WriteManifest(path string, m *ImageManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling image manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing image manifest: %w", err)
	}
	return nil
}

// ReadManifest reads an image manifest from the given path.
func ReadManifest(path string) (*ImageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image manifest: %w", err)
	}
	var m ImageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing image manifest: %w", err)
	}
	return &m, nil
}
