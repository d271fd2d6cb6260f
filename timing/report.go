package timing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var errPanicked = errors.New("timed operation panicked")

// Report is the persisted form of one run's timing data.
type Report struct {
	RunID             string    `json:"run_id"`
	ToolVersion       string    `json:"tool_version,omitempty"`
	Platform          string    `json:"platform"`
	WorkspaceRevision string    `json:"workspace_revision,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Records           []Record  `json:"records"`
}

// Total returns the summed duration of all records.
func (r *Report) Total() time.Duration {
	return lo.SumBy(r.Records, func(rec Record) time.Duration {
		return rec.Duration()
	})
}

// Failed returns the names of records whose timed call did not complete.
func (r *Report) Failed() []string {
	return lo.FilterMap(r.Records, func(rec Record, _ int) (string, bool) {
		return rec.Name, !rec.Complete
	})
}

// Report snapshots the collector into a Report with a fresh run ID.
func (c *Collector) Report(platform, revision string) *Report {
	return &Report{
		RunID:             uuid.NewString(),
		Platform:          platform,
		WorkspaceRevision: revision,
		CreatedAt:         c.now().UTC(),
		Records:           c.Records(),
	}
}

// WriteReport writes r as indented JSON into dir, named after its creation
// time and run ID, and returns the file path.
func WriteReport(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating metrics directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling timing report: %w", err)
	}
	name := r.CreatedAt.Format("20060102-150405")
	if r.RunID != "" {
		name += "-" + r.RunID
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing timing report: %w", err)
	}
	return path, nil
}

// ReadReport reads a report previously written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timing report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing timing report: %w", err)
	}
	return &r, nil
}
