package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/teodormadan/cross-compile/platform"
)

// ErrEmulatorMissing is returned when a foreign-architecture build needs a
// qemu static binary that is not installed.
var ErrEmulatorMissing = errors.New("could not find the expected qemu emulator binary")

var (
	emulatorDir = "/usr/bin"
	hostOS      = goruntime.GOOS
	hostArch    = hostMachine(goruntime.GOARCH)
)

// hostMachine maps a GOARCH to the platform arch naming.
func hostMachine(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "arm":
		return "armhf"
	default:
		return goarch
	}
}

// SetupEmulator places qemu-<arch>-static into <outDir>/bin. When the host
// can run the target natively (same arch, or Docker Desktop on macOS which
// ships its own emulation) an empty placeholder is written instead so the
// Dockerfile COPY still succeeds.
func SetupEmulator(p platform.Platform, outDir string) error {
	name := fmt.Sprintf("qemu-%s-static", p.QemuArch())
	binDir := filepath.Join(outDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	dest := filepath.Join(binDir, name)

	needsEmulator := hostOS != "darwin" && hostArch != p.Arch
	if !needsEmulator {
		return os.WriteFile(dest, nil, 0755)
	}

	src := filepath.Join(emulatorDir, name)
	if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w %q", ErrEmulatorMissing, src)
	}
	return copyFile(src, dest)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// HostArch returns the host architecture in platform naming.
func HostArch() string { return hostArch }
