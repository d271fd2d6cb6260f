// Package templates embeds the Dockerfiles and scripts the pipeline stages
// build and run.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.Dockerfile *.sh
var FS embed.FS

const (
	RosdepDockerfile  = "rosdep.Dockerfile"
	SysrootDockerfile = "sysroot.Dockerfile"
	GatherScript      = "gather_rosdeps.sh"
	BuildScript       = "build_workspace.sh"
)

// Materialize writes every embedded file into dir, creating it if needed.
// Shell scripts are made executable.
func Materialize(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating template directory: %w", err)
	}
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return fmt.Errorf("listing embedded templates: %w", err)
	}
	for _, e := range entries {
		data, err := FS.ReadFile(e.Name())
		if err != nil {
			return fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		mode := os.FileMode(0644)
		if strings.HasSuffix(e.Name(), ".sh") {
			mode = 0755
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name()), data, mode); err != nil {
			return fmt.Errorf("writing template %s: %w", e.Name(), err)
		}
	}
	return nil
}
