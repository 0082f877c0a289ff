package speakers

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence interface for speaker identity records. The
// Manager depends on this interface rather than a concrete database so
// its state-machine logic can be tested against in-memory fakes.
type Store interface {
	// Speakers.
	CreateSpeaker(ctx context.Context, displayName string) (*Speaker, error)
	GetSpeaker(ctx context.Context, id int64) (*Speaker, error)
	RenameSpeaker(ctx context.Context, id int64, displayName string) error
	DeleteSpeaker(ctx context.Context, id int64) error
	SetGlobalLink(ctx context.Context, speakerID int64, globalID *uuid.UUID) error

	// Associations.
	CreateAssociation(ctx context.Context, a Association) error
	GetAssociation(ctx context.Context, recordingID, label string) (*Association, error)
	AssociationsForSpeaker(ctx context.Context, recordingID string, speakerID int64) ([]Association, error)
	ListAssociations(ctx context.Context, recordingID string) ([]Association, error)
	UpdateSnippet(ctx context.Context, recordingID, label string, start, end *float64) error
	DeleteAssociation(ctx context.Context, recordingID string, speakerID int64, label string) error
	// CountAssociations counts a speaker's associations across all
	// recordings; zero means the speaker row is orphaned.
	CountAssociations(ctx context.Context, speakerID int64) (int, error)

	// Per-recording speaker listing (speakers joined to their labels).
	ListSpeakers(ctx context.Context, recordingID string) ([]Speaker, error)
	// FindSpeakerByName looks up a speaker in one recording by display
	// name, case-insensitively. Used for the Unknown sentinel.
	FindSpeakerByName(ctx context.Context, recordingID, displayName string) (*Speaker, error)

	// Global speaker profiles.
	CreateGlobalSpeaker(ctx context.Context, name string) (*GlobalSpeaker, error)
	GetGlobalSpeaker(ctx context.Context, id uuid.UUID) (*GlobalSpeaker, error)
	GetGlobalSpeakerByName(ctx context.Context, name string) (*GlobalSpeaker, error)
	ListGlobalSpeakers(ctx context.Context) ([]GlobalSpeaker, error)
	RenameGlobalSpeaker(ctx context.Context, id uuid.UUID, name string) error
	// DeleteGlobalSpeaker removes the profile; linked speakers have
	// their link cleared, the speaker rows themselves are untouched.
	DeleteGlobalSpeaker(ctx context.Context, id uuid.UUID) error
}
