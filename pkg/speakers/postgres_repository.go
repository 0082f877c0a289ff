package speakers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Valtora/nojoin/pkg/db"
	njerrors "github.com/Valtora/nojoin/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// PostgresRepository implements the Store interface using PostgreSQL.
// It accepts any db.Querier, so the same code runs against a pool or
// inside a transaction.
type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository creates a repository over the given querier.
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

func (r *PostgresRepository) CreateSpeaker(ctx context.Context, displayName string) (*Speaker, error) {
	query := `INSERT INTO speakers (name) VALUES ($1) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, displayName).Scan(&id); err != nil {
		return nil, fmt.Errorf("creating speaker: %w", err)
	}
	return &Speaker{ID: id, DisplayName: displayName}, nil
}

func (r *PostgresRepository) GetSpeaker(ctx context.Context, id int64) (*Speaker, error) {
	query := `SELECT id, name, global_speaker_id FROM speakers WHERE id = $1`

	var s Speaker
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.DisplayName, &s.GlobalSpeakerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("speaker %d: %w", id, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting speaker %d: %w", id, err)
	}
	return &s, nil
}

func (r *PostgresRepository) RenameSpeaker(ctx context.Context, id int64, displayName string) error {
	query := `UPDATE speakers SET name = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, displayName)
	if err != nil {
		return fmt.Errorf("renaming speaker %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("speaker %d: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteSpeaker(ctx context.Context, id int64) error {
	query := `DELETE FROM speakers WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("deleting speaker %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) SetGlobalLink(ctx context.Context, speakerID int64, globalID *uuid.UUID) error {
	query := `UPDATE speakers SET global_speaker_id = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, speakerID, globalID)
	if err != nil {
		return fmt.Errorf("linking speaker %d: %w", speakerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("speaker %d: %w", speakerID, njerrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) CreateAssociation(ctx context.Context, a Association) error {
	query := `
		INSERT INTO recording_speakers (
			recording_id, speaker_id, diarization_label, snippet_start, snippet_end
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		a.RecordingID, a.SpeakerID, a.DiarizationLabel, a.SnippetStart, a.SnippetEnd)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("label %q in recording %s: %w",
				a.DiarizationLabel, a.RecordingID, njerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("creating association: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAssociation(ctx context.Context, recordingID, label string) (*Association, error) {
	query := `
		SELECT recording_id, speaker_id, diarization_label, snippet_start, snippet_end
		FROM recording_speakers
		WHERE recording_id = $1 AND diarization_label = $2
	`

	var a Association
	err := r.db.QueryRow(ctx, query, recordingID, label).Scan(
		&a.RecordingID, &a.SpeakerID, &a.DiarizationLabel, &a.SnippetStart, &a.SnippetEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("label %q in recording %s: %w", label, recordingID, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting association: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) AssociationsForSpeaker(ctx context.Context, recordingID string, speakerID int64) ([]Association, error) {
	query := `
		SELECT recording_id, speaker_id, diarization_label, snippet_start, snippet_end
		FROM recording_speakers
		WHERE recording_id = $1 AND speaker_id = $2
		ORDER BY diarization_label
	`

	rows, err := r.db.Query(ctx, query, recordingID, speakerID)
	if err != nil {
		return nil, fmt.Errorf("listing speaker associations: %w", err)
	}
	defer rows.Close()

	return scanAssociations(rows)
}

func (r *PostgresRepository) ListAssociations(ctx context.Context, recordingID string) ([]Association, error) {
	query := `
		SELECT recording_id, speaker_id, diarization_label, snippet_start, snippet_end
		FROM recording_speakers
		WHERE recording_id = $1
		ORDER BY diarization_label
	`

	rows, err := r.db.Query(ctx, query, recordingID)
	if err != nil {
		return nil, fmt.Errorf("listing associations: %w", err)
	}
	defer rows.Close()

	return scanAssociations(rows)
}

func (r *PostgresRepository) UpdateSnippet(ctx context.Context, recordingID, label string, start, end *float64) error {
	query := `
		UPDATE recording_speakers
		SET snippet_start = $3, snippet_end = $4
		WHERE recording_id = $1 AND diarization_label = $2
	`

	tag, err := r.db.Exec(ctx, query, recordingID, label, start, end)
	if err != nil {
		return fmt.Errorf("updating snippet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("label %q in recording %s: %w", label, recordingID, njerrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteAssociation(ctx context.Context, recordingID string, speakerID int64, label string) error {
	query := `
		DELETE FROM recording_speakers
		WHERE recording_id = $1 AND speaker_id = $2 AND diarization_label = $3
	`

	tag, err := r.db.Exec(ctx, query, recordingID, speakerID, label)
	if err != nil {
		return fmt.Errorf("deleting association: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("label %q in recording %s: %w", label, recordingID, njerrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) CountAssociations(ctx context.Context, speakerID int64) (int, error) {
	query := `SELECT COUNT(*) FROM recording_speakers WHERE speaker_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, speakerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting associations: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListSpeakers(ctx context.Context, recordingID string) ([]Speaker, error) {
	query := `
		SELECT DISTINCT s.id, s.name, s.global_speaker_id
		FROM speakers s
		JOIN recording_speakers rs ON rs.speaker_id = s.id
		WHERE rs.recording_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.Query(ctx, query, recordingID)
	if err != nil {
		return nil, fmt.Errorf("listing speakers: %w", err)
	}
	defer rows.Close()

	var out []Speaker
	for rows.Next() {
		var s Speaker
		if err := rows.Scan(&s.ID, &s.DisplayName, &s.GlobalSpeakerID); err != nil {
			return nil, fmt.Errorf("scanning speaker: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating speakers: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) FindSpeakerByName(ctx context.Context, recordingID, displayName string) (*Speaker, error) {
	query := `
		SELECT s.id, s.name, s.global_speaker_id
		FROM speakers s
		JOIN recording_speakers rs ON rs.speaker_id = s.id
		WHERE rs.recording_id = $1 AND LOWER(s.name) = LOWER($2)
		ORDER BY s.id
		LIMIT 1
	`

	var s Speaker
	err := r.db.QueryRow(ctx, query, recordingID, displayName).Scan(
		&s.ID, &s.DisplayName, &s.GlobalSpeakerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("speaker %q in recording %s: %w", displayName, recordingID, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("finding speaker by name: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) CreateGlobalSpeaker(ctx context.Context, name string) (*GlobalSpeaker, error) {
	query := `INSERT INTO global_speakers (id, name) VALUES ($1, $2)`

	gs := &GlobalSpeaker{ID: uuid.New(), Name: name}
	if _, err := r.db.Exec(ctx, query, gs.ID, gs.Name); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("global speaker %q: %w", name, njerrors.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating global speaker: %w", err)
	}
	return gs, nil
}

func (r *PostgresRepository) GetGlobalSpeaker(ctx context.Context, id uuid.UUID) (*GlobalSpeaker, error) {
	query := `SELECT id, name FROM global_speakers WHERE id = $1`

	var gs GlobalSpeaker
	err := r.db.QueryRow(ctx, query, id).Scan(&gs.ID, &gs.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting global speaker: %w", err)
	}
	return &gs, nil
}

func (r *PostgresRepository) GetGlobalSpeakerByName(ctx context.Context, name string) (*GlobalSpeaker, error) {
	query := `SELECT id, name FROM global_speakers WHERE LOWER(name) = LOWER($1)`

	var gs GlobalSpeaker
	err := r.db.QueryRow(ctx, query, name).Scan(&gs.ID, &gs.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("global speaker %q: %w", name, njerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("getting global speaker by name: %w", err)
	}
	return &gs, nil
}

func (r *PostgresRepository) ListGlobalSpeakers(ctx context.Context) ([]GlobalSpeaker, error) {
	query := `SELECT id, name FROM global_speakers ORDER BY LOWER(name)`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing global speakers: %w", err)
	}
	defer rows.Close()

	var out []GlobalSpeaker
	for rows.Next() {
		var gs GlobalSpeaker
		if err := rows.Scan(&gs.ID, &gs.Name); err != nil {
			return nil, fmt.Errorf("scanning global speaker: %w", err)
		}
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating global speakers: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) RenameGlobalSpeaker(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE global_speakers SET name = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("global speaker %q: %w", name, njerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("renaming global speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

func (r *PostgresRepository) DeleteGlobalSpeaker(ctx context.Context, id uuid.UUID) error {
	// Linked speakers are cleared by the ON DELETE SET NULL foreign key.
	query := `DELETE FROM global_speakers WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting global speaker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
	}
	return nil
}

func scanAssociations(rows pgx.Rows) ([]Association, error) {
	var out []Association
	for rows.Next() {
		var a Association
		err := rows.Scan(&a.RecordingID, &a.SpeakerID, &a.DiarizationLabel,
			&a.SnippetStart, &a.SnippetEnd)
		if err != nil {
			return nil, fmt.Errorf("scanning association: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating associations: %w", err)
	}
	return out, nil
}
