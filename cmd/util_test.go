package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valtora/nojoin/pkg/transcript"
)

func TestParseSpeakerID(t *testing.T) {
	id, err := parseSpeakerID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseSpeakerID("forty-two")
	assert.Error(t, err)
}

func TestParseTagID(t *testing.T) {
	id, err := parseTagID("7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = parseTagID("")
	assert.Error(t, err)
}

func TestParseGlobalID(t *testing.T) {
	_, err := parseGlobalID("not-a-uuid")
	assert.Error(t, err)

	id, err := parseGlobalID("a2f7c6de-8a34-4a1b-9c55-0b6f0efab001")
	require.NoError(t, err)
	assert.Equal(t, "a2f7c6de-8a34-4a1b-9c55-0b6f0efab001", id.String())
}

func TestParseKind(t *testing.T) {
	kind, err := parseKind("raw")
	require.NoError(t, err)
	assert.Equal(t, transcript.KindRaw, kind)

	kind, err = parseKind("diarized")
	require.NoError(t, err)
	assert.Equal(t, transcript.KindDiarized, kind)

	_, err = parseKind("annotated")
	assert.Error(t, err)
}
