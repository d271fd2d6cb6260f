// Package platform describes the target of a cross-compilation: CPU
// architecture, operating system and ROS distribution.
package platform

import (
	"errors"
	"fmt"
	"os/user"
	"sort"
)

// ErrUnsupported is returned by New for an unknown arch, OS or distribution.
var ErrUnsupported = errors.New("unsupported platform")

const defaultOwner = "ros-cross-compile"

var (
	// Architecture -> docker image namespace for the OS base images.
	dockerBaseArch = map[string]string{
		"armhf":   "arm32v7",
		"aarch64": "arm64v8",
		"x86_64":  "amd64",
	}

	dockerPlatforms = map[string]string{
		"armhf":   "linux/arm/v7",
		"aarch64": "linux/arm64",
		"x86_64":  "linux/amd64",
	}

	qemuArch = map[string]string{
		"armhf":   "arm",
		"aarch64": "aarch64",
		"x86_64":  "x86_64",
	}

	ros2Distros = map[string]bool{
		"dashing":  true,
		"eloquent": true,
		"foxy":     true,
		"galactic": true,
		"humble":   true,
		"rolling":  true,
	}

	// Default OS release for each ROS distribution, keyed by OS.
	defaultDistros = map[string]map[string]string{
		"ubuntu": {
			"melodic":  "bionic",
			"noetic":   "focal",
			"dashing":  "bionic",
			"eloquent": "bionic",
			"foxy":     "focal",
			"galactic": "focal",
			"humble":   "jammy",
			"rolling":  "jammy",
		},
		"debian": {
			"melodic":  "stretch",
			"noetic":   "buster",
			"dashing":  "stretch",
			"eloquent": "buster",
			"foxy":     "buster",
			"galactic": "buster",
			"humble":   "bullseye",
			"rolling":  "bullseye",
		},
	}
)

// Platform identifies one cross-compilation target.
type Platform struct {
	Arch              string
	OS                string
	OSDistro          string
	ROSDistro         string
	OverrideBaseImage string
	Owner             string // Namespace for generated image tags.
}

// Options are the user-facing inputs to New.
type Options struct {
	Arch      string
	OS        string
	OSDistro  string // Defaults from the ROS distribution.
	ROSDistro string
	BaseImage string // Replaces the computed target base image.
}

// New validates opts and returns the resulting Platform.
func New(opts Options) (Platform, error) {
	if _, ok := dockerBaseArch[opts.Arch]; !ok {
		return Platform{}, fmt.Errorf("%w: arch %q (supported: %v)", ErrUnsupported, opts.Arch, Arches())
	}
	distros, ok := defaultDistros[opts.OS]
	if !ok {
		return Platform{}, fmt.Errorf("%w: os %q (supported: %v)", ErrUnsupported, opts.OS, OSes())
	}
	defaultDistro, ok := distros[opts.ROSDistro]
	if !ok {
		return Platform{}, fmt.Errorf("%w: rosdistro %q (supported: %v)", ErrUnsupported, opts.ROSDistro, ROSDistros())
	}

	osDistro := opts.OSDistro
	if osDistro == "" {
		osDistro = defaultDistro
	}

	return Platform{
		Arch:              opts.Arch,
		OS:                opts.OS,
		OSDistro:          osDistro,
		ROSDistro:         opts.ROSDistro,
		OverrideBaseImage: opts.BaseImage,
		Owner:             currentOwner(),
	}, nil
}

// String returns the canonical "<arch>-<os>-<rosdistro>" identifier, which
// is also the name of the platform's internals directory.
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s-%s", p.Arch, p.OS, p.ROSDistro)
}

// QemuArch returns the architecture suffix of the qemu user-mode emulator.
func (p Platform) QemuArch() string { return qemuArch[p.Arch] }

// DockerPlatform returns the OCI platform string, e.g. "linux/arm64".
func (p Platform) DockerPlatform() string { return dockerPlatforms[p.Arch] }

// ROSVersion returns "ros2" for ROS 2 distributions and "ros" otherwise.
func (p Platform) ROSVersion() string {
	if ros2Distros[p.ROSDistro] {
		return "ros2"
	}
	return "ros"
}

// TargetBaseImage is the image the sysroot is built on top of.
func (p Platform) TargetBaseImage() string {
	if p.OverrideBaseImage != "" {
		return p.OverrideBaseImage
	}
	return fmt.Sprintf("%s/%s:%s", dockerBaseArch[p.Arch], p.OS, p.OSDistro)
}

// SysrootImageTag is the tag given to the built sysroot image.
func (p Platform) SysrootImageTag() string {
	owner := p.Owner
	if owner == "" {
		owner = defaultOwner
	}
	return fmt.Sprintf("%s/%s:latest", owner, p.String())
}

// Arches returns the supported architectures, sorted.
func Arches() []string { return sortedKeys(dockerBaseArch) }

// OSes returns the supported operating systems, sorted.
func OSes() []string { return sortedKeys(defaultDistros) }

// ROSDistros returns the supported ROS distributions, sorted.
func ROSDistros() []string { return sortedKeys(defaultDistros["ubuntu"]) }

// DefaultOSDistro returns the OS release used for rosdistro on os, or "".
func DefaultOSDistro(os, rosdistro string) string {
	return defaultDistros[os][rosdistro]
}

func currentOwner() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return defaultOwner
	}
	return u.Username
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
