package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	return NewLogger(&Config{
		Level:      level,
		Component:  "test",
		JSONFormat: true,
		Output:     buf,
	})
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo)

	log.Info("processing recording", F("recording_id", "20240101120000"), F("segments", 12))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "processing recording", entry["message"])
	assert.Equal(t, "20240101120000", entry["recording_id"])
	assert.Equal(t, float64(12), entry["segments"])
	assert.Equal(t, "test", entry["component"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelWarn)

	log.Debug("should not appear")
	log.Info("should not appear either")
	assert.Zero(t, buf.Len())

	log.Warn("should appear")
	assert.NotZero(t, buf.Len())
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo).With(F("speaker_id", int64(7)))

	log.Info("renamed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(7), entry["speaker_id"])
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, LevelInfo)

	ctx := context.WithValue(context.Background(), RecordingIDKey, "20240101120000")
	log.WithContext(ctx).Info("fused")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "20240101120000", entry["recording_id"])
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	log := NewNopLogger()
	// Must not panic; With/WithContext keep returning the nop logger.
	log.With(F("k", "v")).WithContext(context.Background()).Error("ignored", Err(assert.AnError))
}
