// Package history keeps a sqlite journal of pipeline runs and their download attempts.
package history

import (
	"time"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Scope      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    Summary
}

// Summary holds the aggregate counts of a finished run.
type Summary struct {
	Documents  int
	Processed  int
	Links      int
	Downloaded int
	Failed     int
	Rewritten  int
}

// Attempt is a single download attempt made during a run.
type Attempt struct {
	ID         int64
	RunID      string
	Document   string
	URL        string
	LocalPath  string
	Success    bool
	StatusCode int
	Bytes      int64
	Duration   time.Duration
	Error      string
	CreatedAt  time.Time
}

// StatusFor derives the final status of a run from its summary.
func StatusFor(s Summary) string {
	switch {
	case s.Failed == 0:
		return StatusCompleted
	case s.Downloaded > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
