package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teodormadan/cross-compile/types"
	"github.com/teodormadan/cross-compile/validate"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate [WORKSPACE]",
	Short: "Validate ros-cross-compile.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path, ok, err := resolveConfigPath(dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no config file: pass --config or create %s", types.DefaultConfigFile)
	}

	cfg, _, err := loadConfig(dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	result := validate.ValidateCrossConfig(cfg)

	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %s\n", e)
	}

	if strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed: %d warning(s) treated as errors in strict mode", len(result.Warnings))
	}
	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", path)
	return nil
}
