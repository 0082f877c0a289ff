// Package speakers owns speaker records, their per-recording
// diarization-label associations, and optional links to global speaker
// profiles. Every rename, merge and delete goes through the transcript
// rewrite primitive so text and records stay consistent.
package speakers

import (
	"github.com/google/uuid"
)

// UnknownDisplayName is the sentinel display name for undiarized audio.
// A recording has at most one such speaker, created lazily.
const UnknownDisplayName = "Unknown"

// Speaker is a per-recording participant. The display name is what the
// UI shows; transcript text always stores the diarization label, never
// the name.
type Speaker struct {
	ID              int64
	DisplayName     string
	GlobalSpeakerID *uuid.UUID
}

// Association binds a diarization label to a speaker within one
// recording. A label maps to exactly one speaker per recording.
type Association struct {
	RecordingID      string
	SpeakerID        int64
	DiarizationLabel string
	SnippetStart     *float64
	SnippetEnd       *float64
}

// GlobalSpeaker is a cross-recording identity that per-recording
// speakers may link to. Names are unique case-insensitively.
type GlobalSpeaker struct {
	ID   uuid.UUID
	Name string
}
