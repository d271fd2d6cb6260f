package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teodormadan/cross-compile/internal/tui"
	"github.com/teodormadan/cross-compile/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported target platforms",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	styles := tui.NewStyleSet(tui.DetectTheme())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", styles.SecondaryTxt.Width(14).Render("architectures"), strings.Join(platform.Arches(), ", "))
	fmt.Fprintf(out, "%s %s\n\n", styles.SecondaryTxt.Width(14).Render("systems"), strings.Join(platform.OSes(), ", "))

	fmt.Fprintf(out, "%s %s %s\n",
		styles.TableHeader.Width(10).Render("rosdistro"),
		styles.TableHeader.Width(8).Render("version"),
		styles.TableHeader.Render("default distro per os"))
	for _, d := range platform.ROSDistros() {
		var defaults []string
		for _, osName := range platform.OSes() {
			defaults = append(defaults, osName+":"+platform.DefaultOSDistro(osName, d))
		}
		version := platform.Platform{ROSDistro: d}.ROSVersion()
		fmt.Fprintf(out, "%s %s %s\n",
			styles.PrimaryTxt.Width(10).Render(d),
			styles.DimTxt.Width(8).Render(version),
			strings.Join(defaults, "  "))
	}
	return nil
}
