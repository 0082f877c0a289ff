package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements, applied in order. Each statement is idempotent so
// InitSchema can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS recordings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ,
		audio_path TEXT NOT NULL UNIQUE,
		format TEXT NOT NULL DEFAULT 'MP3',
		duration_seconds DOUBLE PRECISION,
		file_size_bytes BIGINT,
		status TEXT NOT NULL DEFAULT 'Recorded'
			CHECK (status IN ('Recorded', 'Processing', 'Processed', 'Error')),
		raw_transcript_text TEXT,
		diarized_transcript_text TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS global_speakers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Global speaker names are unique case-insensitively.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_global_speakers_name
		ON global_speakers (LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS speakers (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		global_speaker_id UUID REFERENCES global_speakers (id) ON DELETE SET NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recording_speakers (
		recording_id TEXT NOT NULL REFERENCES recordings (id) ON DELETE CASCADE,
		speaker_id BIGINT NOT NULL REFERENCES speakers (id) ON DELETE CASCADE,
		diarization_label TEXT NOT NULL,
		snippet_start DOUBLE PRECISION,
		snippet_end DOUBLE PRECISION,
		PRIMARY KEY (recording_id, diarization_label)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recording_speakers_speaker_id
		ON recording_speakers (speaker_id)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name ON tags (LOWER(name))`,

	`CREATE TABLE IF NOT EXISTS recording_tags (
		recording_id TEXT NOT NULL REFERENCES recordings (id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
		PRIMARY KEY (recording_id, tag_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recordings_created_at
		ON recordings (created_at)`,
}

// InitSchema creates all tables and indexes if they do not exist.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
