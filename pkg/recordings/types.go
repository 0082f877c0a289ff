// Package recordings manages recording metadata: lifecycle status,
// audio file attributes, and tag assignment.
package recordings

import (
	"time"
)

// Status is the processing lifecycle state of a recording.
type Status string

const (
	StatusRecorded   Status = "Recorded"
	StatusProcessing Status = "Processing"
	StatusProcessed  Status = "Processed"
	StatusError      Status = "Error"
)

// transitions maps each status to the statuses it may move to.
// Reprocessing a finished or failed recording goes back through
// Processing.
var transitions = map[Status][]Status{
	StatusRecorded:   {StatusProcessing},
	StatusProcessing: {StatusProcessed, StatusError},
	StatusProcessed:  {StatusProcessing},
	StatusError:      {StatusProcessing},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the status machine allows moving
// from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Recording is one captured meeting and its processing state.
type Recording struct {
	ID              string
	Name            string
	CreatedAt       time.Time
	ProcessedAt     *time.Time
	AudioPath       string
	Format          string
	DurationSeconds *float64
	FileSizeBytes   *int64
	Status          Status
}

// Tag is a user-defined label attachable to recordings. Names are
// unique case-insensitively.
type Tag struct {
	ID   int64
	Name string
}
