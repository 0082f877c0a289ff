package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Valtora/nojoin/pkg/db"
	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/logging"
)

// Kind selects which transcript of a recording to operate on.
type Kind string

const (
	// KindRaw is the unattributed ASR output.
	KindRaw Kind = "raw"

	// KindDiarized is the speaker-attributed transcript the identity
	// operations rewrite.
	KindDiarized Kind = "diarized"
)

func (k Kind) valid() bool {
	return k == KindRaw || k == KindDiarized
}

func (k Kind) column() string {
	return string(k) + "_transcript_text"
}

// RewriteFunc transforms transcript text and reports how many lines it
// changed.
type RewriteFunc func(text string) (newText string, count int)

// Store provides transcript text storage keyed by recording id and kind.
type Store interface {
	// Get retrieves transcript text. njerrors.ErrNotFound when the
	// recording is missing or has no transcript of that kind.
	Get(ctx context.Context, recordingID string, kind Kind) (string, error)

	// Set stores transcript text, replacing any previous content.
	Set(ctx context.Context, recordingID string, kind Kind, text string) error

	// Replace applies fn to the stored text and persists the result only
	// if fn reports at least one change. Returns fn's change count.
	Replace(ctx context.Context, recordingID string, kind Kind, fn RewriteFunc) (int, error)

	// Exists reports whether a non-blank transcript of that kind exists.
	Exists(ctx context.Context, recordingID string, kind Kind) (bool, error)
}

// PGStore is the PostgreSQL-backed Store. Transcript text lives in
// columns on the recordings row, so identity operations can rewrite it
// inside the same transaction that mutates speaker records.
type PGStore struct {
	db     db.Querier
	logger logging.Logger
}

// NewPGStore creates a transcript store over the given querier, which
// may be a pool or an open transaction.
func NewPGStore(q db.Querier, logger logging.Logger) *PGStore {
	return &PGStore{
		db:     q,
		logger: logger.With(logging.F("component", "transcript_store")),
	}
}

// Get retrieves transcript text for a recording.
func (s *PGStore) Get(ctx context.Context, recordingID string, kind Kind) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("invalid transcript kind %q: %w", kind, njerrors.ErrValidation)
	}

	query := fmt.Sprintf(`SELECT %s FROM recordings WHERE id = $1`, kind.column())
	var text *string
	if err := s.db.QueryRow(ctx, query, recordingID).Scan(&text); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("recording %s: %w", recordingID, njerrors.ErrNotFound)
		}
		return "", fmt.Errorf("failed to load %s transcript: %w", kind, err)
	}
	if text == nil {
		return "", fmt.Errorf("no %s transcript for recording %s: %w", kind, recordingID, njerrors.ErrNotFound)
	}
	return *text, nil
}

// Set stores transcript text for a recording.
func (s *PGStore) Set(ctx context.Context, recordingID string, kind Kind, text string) error {
	if !kind.valid() {
		return fmt.Errorf("invalid transcript kind %q: %w", kind, njerrors.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE recordings SET %s = $1 WHERE id = $2`, kind.column())
	tag, err := s.db.Exec(ctx, query, text, recordingID)
	if err != nil {
		return fmt.Errorf("failed to store %s transcript: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %s: %w", recordingID, njerrors.ErrNotFound)
	}

	s.logger.Debug("Transcript stored",
		logging.F("recording_id", recordingID),
		logging.F("kind", string(kind)),
		logging.F("bytes", len(text)))
	return nil
}

// Replace applies fn to the stored transcript and persists the result
// when fn reports changes. A zero count leaves the stored text alone.
func (s *PGStore) Replace(ctx context.Context, recordingID string, kind Kind, fn RewriteFunc) (int, error) {
	current, err := s.Get(ctx, recordingID, kind)
	if err != nil {
		return 0, err
	}

	newText, count := fn(current)
	if count <= 0 {
		return 0, nil
	}
	if err := s.Set(ctx, recordingID, kind, newText); err != nil {
		return 0, err
	}

	s.logger.Debug("Transcript rewritten",
		logging.F("recording_id", recordingID),
		logging.F("kind", string(kind)),
		logging.F("lines_changed", count))
	return count, nil
}

// Exists reports whether a non-blank transcript exists.
func (s *PGStore) Exists(ctx context.Context, recordingID string, kind Kind) (bool, error) {
	text, err := s.Get(ctx, recordingID, kind)
	if err != nil {
		if njerrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(text) != "", nil
}
