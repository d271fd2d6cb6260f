package pipeline

import "slices"

// ConfigOptions carries the user-facing switches every stage reads. It is
// passed by value and never modified by a stage.
type ConfigOptions struct {
	SkipRosdepCollection bool
	SkipRosdepKeys       []string // Forwarded to rosdep in order.
	CustomScript         string   // Optional rosdep setup script.
	CustomDataDir        string   // Optional directory made available to rosdep and the sysroot.
	CustomSetupScript    string   // Optional script sourced before the emulated build.
	SysrootNoCache       bool
}

// NewConfigOptions returns a ConfigOptions that does not share its key
// slice with the caller.
func NewConfigOptions(opts ConfigOptions) ConfigOptions {
	opts.SkipRosdepKeys = slices.Clone(opts.SkipRosdepKeys)
	return opts
}
