package tui

// StageStartedMsg reports that a pipeline stage began.
type StageStartedMsg struct {
	Name string
}

// StageFinishedMsg reports that a pipeline stage returned.
type StageFinishedMsg struct {
	Name string
	Err  error
}

// RunDoneMsg signals that the pipeline returned.
type RunDoneMsg struct {
	Err error
}
