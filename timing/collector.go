// Package timing records how long named operations take during a pipeline run.
package timing

import (
	"sync"
	"time"
)

// Record is one timed interval. Complete is false when the timed call failed.
type Record struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Complete bool      `json:"complete"`
}

// Duration returns the length of the interval.
func (r Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Collector accumulates Records in the order their intervals close.
// A single Collector is meant to live for exactly one pipeline run.
type Collector struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewCollector creates an empty Collector backed by the wall clock.
func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// Span is an open timing interval returned by Start.
type Span struct {
	c       *Collector
	name    string
	start   time.Time
	stopped bool
}

// Start opens an interval named name. The interval is recorded when Stop is called.
func (c *Collector) Start(name string) *Span {
	return &Span{c: c, name: name, start: c.now()}
}

// Stop closes the interval and appends its Record. err marks the record as
// incomplete. Calling Stop more than once has no effect.
func (s *Span) Stop(err error) {
	if s.stopped {
		return
	}
	s.stopped = true
	s.c.add(Record{
		Name:     s.name,
		Start:    s.start,
		End:      s.c.now(),
		Complete: err == nil,
	})
}

// Time runs fn inside an interval named name and returns fn's error.
// The interval is recorded on every exit path, including a panic in fn.
func (c *Collector) Time(name string, fn func() error) (err error) {
	span := c.Start(name)
	completed := false
	defer func() {
		if !completed && err == nil {
			// fn panicked; the record must not claim success
			span.Stop(errPanicked)
			return
		}
		span.Stop(err)
	}()
	err = fn()
	completed = true
	return err
}

// Records returns a copy of all records in completion order.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of recorded intervals.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func (c *Collector) add(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}
