// Package cmd implements the ros-cross-compile CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ros-cross-compile",
	Short: "Cross-compile ROS workspaces for other architectures",
	Long: "ros-cross-compile builds a ROS workspace for a target architecture by " +
		"collecting its rosdep dependencies, creating a sysroot image and running " +
		"colcon inside it under emulation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: <workspace>/ros-cross-compile.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(validateCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("ros-cross-compile %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("ros-cross-compile failed", "error", err)
		os.Exit(1)
	}
}
