package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teodormadan/cross-compile/build"
	"github.com/teodormadan/cross-compile/container"
	"github.com/teodormadan/cross-compile/internal/tui"
	"github.com/teodormadan/cross-compile/pipeline"
	"github.com/teodormadan/cross-compile/platform"
	"github.com/teodormadan/cross-compile/timing"
	"github.com/teodormadan/cross-compile/types"
	"github.com/teodormadan/cross-compile/validate"
	"github.com/teodormadan/cross-compile/workspace"
)

// buildFlags holds the build command's flag values.
type buildFlags struct {
	types.CrossConfig
	noTUI bool
}

// resolveClient selects the container client by builder name; "" detects one.
var resolveClient = func(builder string) (container.Client, error) {
	var c container.Client
	if builder == "" {
		c = container.Detect()
		if c == nil {
			return nil, fmt.Errorf("no container runtime found (tried docker, podman); install one or pass --builder engine")
		}
		return c, nil
	}
	c = container.Get(builder)
	if c == nil {
		return nil, fmt.Errorf("unknown builder %q", builder)
	}
	if !c.Available() {
		return nil, fmt.Errorf("builder %q is not available", builder)
	}
	return c, nil
}

// isInteractive reports whether the progress view can be drawn.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newBuildCmd() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build WORKSPACE",
		Short: "Cross-compile a ROS workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, f, args[0])
		},
	}
	bindBuildFlags(cmd, f)
	return cmd
}

func bindBuildFlags(cmd *cobra.Command, f *buildFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.Arch, "arch", "a", "", fmt.Sprintf("target architecture %v", platform.Arches()))
	fl.StringVarP(&f.OS, "os", "o", "", fmt.Sprintf("target operating system %v", platform.OSes()))
	fl.StringVarP(&f.ROSDistro, "rosdistro", "d", "", fmt.Sprintf("ROS distribution %v", platform.ROSDistros()))
	fl.StringVar(&f.Distro, "distro", "", "OS release of the target (default: the ROS distribution's default)")
	fl.StringVar(&f.SysrootBaseImage, "sysroot-base-image", "", "override the base image of the sysroot")
	fl.BoolVar(&f.SysrootNoCache, "sysroot-nocache", false, "build the sysroot image without the layer cache")
	fl.StringVar(&f.Builder, "builder", "", "container client: docker, podman or engine (default: detect)")
	fl.BoolVar(&f.SkipRosdepCollection, "skip-rosdep-collection", false, "reuse the previously collected rosdep install script")
	fl.StringSliceVar(&f.SkipRosdepKeys, "skip-rosdep-keys", nil, "rosdep keys to skip when collecting dependencies")
	fl.StringVar(&f.CustomRosdepScript, "custom-rosdep-script", "", "script run before rosdep, e.g. to add custom rosdep sources")
	fl.StringVar(&f.CustomDataDir, "custom-data-dir", "", "directory made available to the custom scripts and copied into the sysroot")
	fl.StringVar(&f.CustomSetupScript, "custom-setup-script", "", "script sourced in the sysroot before building")
	fl.BoolVar(&f.PrintMetrics, "print-metrics", false, "print the timing report after the build")
	fl.BoolVar(&f.noTUI, "no-tui", false, "disable the interactive progress view")
}

// mergeFlags overlays every flag the user set on top of the file config.
func mergeFlags(cmd *cobra.Command, f *buildFlags, cfg *types.CrossConfig) {
	set := cmd.Flags().Changed
	if set("arch") {
		cfg.Arch = f.Arch
	}
	if set("os") {
		cfg.OS = f.OS
	}
	if set("rosdistro") {
		cfg.ROSDistro = f.ROSDistro
	}
	if set("distro") {
		cfg.Distro = f.Distro
	}
	if set("sysroot-base-image") {
		cfg.SysrootBaseImage = f.SysrootBaseImage
	}
	if set("sysroot-nocache") {
		cfg.SysrootNoCache = f.SysrootNoCache
	}
	if set("builder") {
		cfg.Builder = f.Builder
	}
	if set("skip-rosdep-collection") {
		cfg.SkipRosdepCollection = f.SkipRosdepCollection
	}
	if set("skip-rosdep-keys") {
		cfg.SkipRosdepKeys = f.SkipRosdepKeys
	}
	if set("custom-rosdep-script") {
		cfg.CustomRosdepScript = f.CustomRosdepScript
	}
	if set("custom-data-dir") {
		cfg.CustomDataDir = f.CustomDataDir
	}
	if set("custom-setup-script") {
		cfg.CustomSetupScript = f.CustomSetupScript
	}
	if set("print-metrics") {
		cfg.PrintMetrics = f.PrintMetrics
	}
}

func runBuild(cmd *cobra.Command, f *buildFlags, wsArg string) error {
	ws, err := filepath.Abs(wsArg)
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}
	if info, err := os.Stat(ws); err != nil || !info.IsDir() {
		return fmt.Errorf("workspace %s is not a directory", ws)
	}

	cfg, cfgPath, err := loadConfig(ws, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfgPath != "" {
		slog.Debug("loaded config", "path", cfgPath)
	}
	mergeFlags(cmd, f, cfg)

	result := validate.ValidateCrossConfig(cfg)
	for _, w := range result.Warnings {
		slog.Warn(w)
	}
	if !result.IsValid() {
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %s\n", e)
		}
		return fmt.Errorf("config validation failed: %d error(s)", len(result.Errors))
	}

	plat, err := platform.New(platform.Options{
		Arch:      cfg.Arch,
		OS:        cfg.OS,
		OSDistro:  cfg.Distro,
		ROSDistro: cfg.ROSDistro,
		BaseImage: cfg.SysrootBaseImage,
	})
	if err != nil {
		return err
	}

	client, err := resolveClient(cfg.Builder)
	if err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}
	slog.Info("cross-compiling workspace", "workspace", ws, "platform", plat.String(), "client", client.Name())

	opts := pipeline.NewConfigOptions(pipeline.ConfigOptions{
		SkipRosdepCollection: cfg.SkipRosdepCollection,
		SkipRosdepKeys:       cfg.SkipRosdepKeys,
		CustomScript:         cfg.CustomRosdepScript,
		CustomDataDir:        cfg.CustomDataDir,
		CustomSetupScript:    cfg.CustomSetupScript,
		SysrootNoCache:       cfg.SysrootNoCache,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timings := timing.NewCollector()
	useTUI := !f.noTUI && isInteractive()

	var runErr error
	if useTUI {
		runErr = runWithProgress(ctx, stop, cmd, ws, plat, client, opts, timings)
	} else {
		p := pipeline.New(build.Stages(timings, cmd.ErrOrStderr())...)
		runErr = p.Run(ctx, plat, client, ws, opts)
	}

	report := timings.Report(plat.String(), workspace.Revision(ws))
	report.ToolVersion = appVersion
	path, err := timing.WriteReport(workspace.MetricsDir(ws), report)
	if err != nil {
		slog.Warn("could not write timing report", "error", err)
	} else {
		slog.Info("wrote timing report", "path", path, "total", report.Total().Round(time.Millisecond))
	}
	if cfg.PrintMetrics {
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderReport(tui.NewStyleSet(tui.DetectTheme()), report))
	}

	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Build complete. Output: %s\n",
		filepath.Join(ws, "install_"+plat.Arch))
	return nil
}

// runWithProgress runs the pipeline while a bubbletea view tracks it.
// Container output and logs go to a file under the workspace logs directory
// so they do not tear the view.
func runWithProgress(ctx context.Context, cancel context.CancelFunc, cmd *cobra.Command, ws string,
	plat platform.Platform, client container.Client, opts pipeline.ConfigOptions, timings *timing.Collector) error {
	logDir := workspace.LogsDir(ws)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}
	logPath := filepath.Join(logDir, time.Now().Format("20060102-150405")+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	prev := slog.Default()
	slog.SetDefault(newLogger(logFile, verbose))
	defer slog.SetDefault(prev)

	p := pipeline.New(build.Stages(timings, logFile)...)
	model := tui.NewProgressModel(tui.NewStyleSet(tui.DetectTheme()), plat.String(), p.Stages(), cancel)
	prog := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	p.SetObserver(tui.NewProgramObserver(prog))

	errCh := make(chan error, 1)
	go func() {
		err := p.Run(ctx, plat, client, ws, opts)
		prog.Send(tui.RunDoneMsg{Err: err})
		errCh <- err
	}()

	if _, err := prog.Run(); err != nil {
		prev.Debug("progress view exited", "error", err)
	}
	runErr := <-errCh
	prev.Info("container output written", "path", logPath)
	return runErr
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
