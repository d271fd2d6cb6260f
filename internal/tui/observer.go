package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teodormadan/cross-compile/pipeline"
)

// ProgramObserver forwards pipeline progress to a running bubbletea program.
type ProgramObserver struct {
	program *tea.Program
}

var _ pipeline.Observer = (*ProgramObserver)(nil)

// NewProgramObserver returns an observer sending to p.
func NewProgramObserver(p *tea.Program) *ProgramObserver {
	return &ProgramObserver{program: p}
}

func (o *ProgramObserver) StageStarted(name string) {
	o.program.Send(StageStartedMsg{Name: name})
}

func (o *ProgramObserver) StageFinished(name string, err error) {
	o.program.Send(StageFinishedMsg{Name: name, Err: err})
}
