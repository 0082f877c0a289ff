package recordings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Valtora/nojoin/pkg/db"
	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

const uniqueViolation = "23505"

// Repository persists recordings and tags. It accepts any db.Querier,
// so the same code runs against a pool or inside a transaction.
type Repository struct {
	db db.Querier
}

// NewRepository creates a repository over the given querier.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const recordingColumns = `id, name, created_at, processed_at, audio_path, format,
	duration_seconds, file_size_bytes, status`

// Create inserts a new recording in the Recorded state.
func (r *Repository) Create(ctx context.Context, rec *Recording) error {
	if rec.ID == "" || rec.Name == "" || rec.AudioPath == "" {
		return fmt.Errorf("recording id, name and audio path are required: %w", njerrors.ErrValidation)
	}
	if rec.Status == "" {
		rec.Status = StatusRecorded
	}
	if rec.Format == "" {
		rec.Format = "MP3"
	}

	query := `
		INSERT INTO recordings (id, name, audio_path, format, duration_seconds, file_size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.Name, rec.AudioPath, rec.Format,
		rec.DurationSeconds, rec.FileSizeBytes, string(rec.Status),
	).Scan(&rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("recording %s: %w", rec.ID, njerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("creating recording: %w", err)
	}
	return nil
}

// Get fetches one recording.
func (r *Repository) Get(ctx context.Context, id string) (*Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = $1`

	var rec Recording
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.CreatedAt, &rec.ProcessedAt, &rec.AudioPath,
		&rec.Format, &rec.DurationSeconds, &rec.FileSizeBytes, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recording %s: %w", id, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting recording %s: %w", id, err)
	}
	rec.Status = Status(status)
	return &rec, nil
}

// List returns all recordings, newest first.
func (r *Repository) List(ctx context.Context) ([]Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		var rec Recording
		var status string
		err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.ProcessedAt,
			&rec.AudioPath, &rec.Format, &rec.DurationSeconds, &rec.FileSizeBytes, &status)
		if err != nil {
			return nil, fmt.Errorf("scanning recording: %w", err)
		}
		rec.Status = Status(status)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recordings: %w", err)
	}
	return out, nil
}

// Rename changes a recording's display name.
func (r *Repository) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("recording name is required: %w", njerrors.ErrValidation)
	}

	tag, err := r.db.Exec(ctx, `UPDATE recordings SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("renaming recording %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %s: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

// Delete removes a recording. Associations, tags and transcript text
// go with it via cascading foreign keys.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM recordings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting recording %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recording %s: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

// SetStatus moves a recording through the lifecycle machine. The
// update is guarded in SQL by the current status, so a concurrent
// transition cannot be overwritten with a stale one.
func (r *Repository) SetStatus(ctx context.Context, id string, from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("unknown status %q: %w", to, njerrors.ErrValidation)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("cannot move recording from %s to %s: %w", from, to, njerrors.ErrInvalidState)
	}

	query := `UPDATE recordings SET status = $3 WHERE id = $1 AND status = $2`
	tag, err := r.db.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("updating recording status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the recording is gone or its status moved under us.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("recording %s is no longer %s: %w", id, from, njerrors.ErrConflict)
	}
	return nil
}

// MarkProcessed sets the Processed status and stamps processed_at.
func (r *Repository) MarkProcessed(ctx context.Context, id string) error {
	query := `
		UPDATE recordings SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, id, string(StatusProcessed), string(StatusProcessing))
	if err != nil {
		return fmt.Errorf("marking recording processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("recording %s is not processing: %w", id, njerrors.ErrInvalidState)
	}
	return nil
}

// CreateTag creates a tag. Names are unique case-insensitively.
func (r *Repository) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is required: %w", njerrors.ErrValidation)
	}

	var t Tag
	err := r.db.QueryRow(ctx, `INSERT INTO tags (name) VALUES ($1) RETURNING id, name`, name).
		Scan(&t.ID, &t.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("tag %q: %w", name, njerrors.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return &t, nil
}

// ListTags returns all tags ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]Tag, error) {
	return r.queryTags(ctx, `SELECT id, name FROM tags ORDER BY LOWER(name)`)
}

// SuggestTags returns tags whose name starts with the given prefix,
// case-insensitively. Used for autocomplete.
func (r *Repository) SuggestTags(ctx context.Context, prefix string) ([]Tag, error) {
	query := `
		SELECT id, name FROM tags
		WHERE LOWER(name) LIKE LOWER($1) || '%'
		ORDER BY LOWER(name)
	`
	return r.queryTags(ctx, query, prefix)
}

// DeleteTag removes a tag and all its recording assignments.
func (r *Repository) DeleteTag(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting tag %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tag %d: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

// AssignTag attaches a tag to a recording. Assigning an already
// assigned tag is a no-op.
func (r *Repository) AssignTag(ctx context.Context, recordingID string, tagID int64) error {
	query := `
		INSERT INTO recording_tags (recording_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, recordingID, tagID); err != nil {
		return fmt.Errorf("assigning tag %d to recording %s: %w", tagID, recordingID, err)
	}
	return nil
}

// UnassignTag detaches a tag from a recording.
func (r *Repository) UnassignTag(ctx context.Context, recordingID string, tagID int64) error {
	query := `DELETE FROM recording_tags WHERE recording_id = $1 AND tag_id = $2`

	tag, err := r.db.Exec(ctx, query, recordingID, tagID)
	if err != nil {
		return fmt.Errorf("unassigning tag %d from recording %s: %w", tagID, recordingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tag %d on recording %s: %w", tagID, recordingID, njerrors.ErrNotFound)
	}
	return nil
}

// TagsForRecording lists the tags assigned to one recording.
func (r *Repository) TagsForRecording(ctx context.Context, recordingID string) ([]Tag, error) {
	query := `
		SELECT t.id, t.name
		FROM tags t
		JOIN recording_tags rt ON rt.tag_id = t.id
		WHERE rt.recording_id = $1
		ORDER BY LOWER(t.name)
	`
	return r.queryTags(ctx, query, recordingID)
}

func (r *Repository) queryTags(ctx context.Context, query string, args ...any) ([]Tag, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return out, nil
}
