package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StageStatus is the display state of one pipeline stage.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageRunning
	StageDone
	StageFailed
)

type stageRow struct {
	name    string
	status  StageStatus
	started time.Time
	elapsed time.Duration
	err     error
}

// ProgressModel shows each pipeline stage with a spinner while it runs.
type ProgressModel struct {
	styles   *StyleSet
	header   string
	rows     []stageRow
	spinner  spinner.Model
	now      func() time.Time
	onCancel func()

	done        bool
	interrupted bool
	err         error
}

// NewProgressModel creates a progress view for the named stages. onCancel
// is invoked when the user presses ctrl+c; it may be nil.
func NewProgressModel(styles *StyleSet, header string, stages []string, onCancel func()) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	rows := make([]stageRow, len(stages))
	for i, name := range stages {
		rows[i] = stageRow{name: name}
	}
	return ProgressModel{
		styles:   styles,
		header:   header,
		rows:     rows,
		spinner:  sp,
		now:      time.Now,
		onCancel: onCancel,
	}
}

// Init starts the spinner.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles stage progress, spinner ticks and ctrl+c.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageStartedMsg:
		if r := m.row(msg.Name); r != nil {
			r.status = StageRunning
			r.started = m.now()
		}

	case StageFinishedMsg:
		if r := m.row(msg.Name); r != nil {
			r.elapsed = m.now().Sub(r.started)
			r.err = msg.Err
			r.status = StageDone
			if msg.Err != nil {
				r.status = StageFailed
			}
		}

	case RunDoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

// View renders the stage list.
func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString("  " + m.styles.Title.Render(m.header) + "\n\n")

	for _, r := range m.rows {
		var icon string
		nameStyle := m.styles.PrimaryTxt
		detail := ""

		switch r.status {
		case StagePending:
			icon = m.styles.DimTxt.Render("·")
			nameStyle = m.styles.DimTxt
		case StageRunning:
			icon = m.spinner.View()
			detail = m.styles.DimTxt.Render(formatDuration(m.now().Sub(r.started)))
		case StageDone:
			icon = m.styles.SuccessTxt.Render("✓")
			detail = m.styles.DimTxt.Render(formatDuration(r.elapsed))
		case StageFailed:
			icon = m.styles.ErrorTxt.Render("✗")
			nameStyle = m.styles.ErrorTxt
			detail = m.styles.DimTxt.Render(formatDuration(r.elapsed))
		}

		fmt.Fprintf(&b, "    %s %s  %s\n", icon, nameStyle.Width(20).Render(r.name), detail)
		if r.err != nil {
			fmt.Fprintf(&b, "      %s\n", m.styles.ErrorTxt.Render(r.err.Error()))
		}
	}

	if m.interrupted {
		b.WriteString("\n  " + m.styles.WarningTxt.Render("interrupted, waiting for the current stage to exit") + "\n")
	}
	return b.String()
}

// Status returns the display state of the named stage.
func (m ProgressModel) Status(name string) StageStatus {
	for _, r := range m.rows {
		if r.name == name {
			return r.status
		}
	}
	return StagePending
}

// Done reports whether the pipeline finished while the view was running.
func (m ProgressModel) Done() bool { return m.done }

// Interrupted reports whether the user pressed ctrl+c.
func (m ProgressModel) Interrupted() bool { return m.interrupted }

func (m *ProgressModel) row(name string) *stageRow {
	for i := range m.rows {
		if m.rows[i].name == name {
			return &m.rows[i]
		}
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
