package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/teodormadan/cross-compile/timing"
)

// RenderReport renders a timing report as a bordered table.
func RenderReport(styles *StyleSet, r *timing.Report) string {
	nameWidth := len("operation")
	for _, rec := range r.Records {
		nameWidth = max(nameWidth, lipgloss.Width(rec.Name))
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render("Timing report") + "  " + styles.Subtitle.Render(r.Platform) + "\n")
	if r.WorkspaceRevision != "" {
		b.WriteString(styles.DimTxt.Render("revision "+shortRevision(r.WorkspaceRevision)) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s  %s  %s\n",
		styles.TableHeader.Width(nameWidth).Render("operation"),
		styles.TableHeader.Width(10).Render("duration"),
		styles.TableHeader.Render("status"))

	for _, rec := range r.Records {
		status := styles.SuccessTxt.Render("ok")
		if !rec.Complete {
			status = styles.ErrorTxt.Render("failed")
		}
		fmt.Fprintf(&b, "%s  %s  %s\n",
			styles.TableCell.Width(nameWidth).Render(rec.Name),
			styles.TableCell.Width(10).Render(formatDuration(rec.Duration())),
			status)
	}

	fmt.Fprintf(&b, "%s  %s",
		styles.TableHeader.Width(nameWidth).Render("total"),
		styles.TableHeader.Width(10).Render(formatDuration(r.Total())))

	return styles.BorderedBox.Render(b.String())
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
