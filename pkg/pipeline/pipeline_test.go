package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/fusion"
	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/observability"
	"github.com/Valtora/nojoin/pkg/recordings"
	"github.com/Valtora/nojoin/pkg/speakers"
	"github.com/Valtora/nojoin/pkg/timeline"
	"github.com/Valtora/nojoin/pkg/transcript"
)

type memRecordings struct {
	recs map[string]*recordings.Recording
}

func (m *memRecordings) Get(ctx context.Context, id string) (*recordings.Recording, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("recording %s: %w", id, njerrors.ErrNotFound)
	}
	copied := *rec
	return &copied, nil
}

func (m *memRecordings) SetStatus(ctx context.Context, id string, from, to recordings.Status) error {
	rec, ok := m.recs[id]
	if !ok {
		return fmt.Errorf("recording %s: %w", id, njerrors.ErrNotFound)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("cannot move from %s to %s: %w", from, to, njerrors.ErrInvalidState)
	}
	if rec.Status != from {
		return fmt.Errorf("recording %s is %s: %w", id, rec.Status, njerrors.ErrConflict)
	}
	rec.Status = to
	return nil
}

func (m *memRecordings) MarkProcessed(ctx context.Context, id string) error {
	return m.SetStatus(ctx, id, recordings.StatusProcessing, recordings.StatusProcessed)
}

type transcriptKey struct {
	rec  string
	kind transcript.Kind
}

type memTranscripts struct {
	texts map[transcriptKey]string
}

func (m *memTranscripts) Get(ctx context.Context, recordingID string, kind transcript.Kind) (string, error) {
	text, ok := m.texts[transcriptKey{recordingID, kind}]
	if !ok {
		return "", fmt.Errorf("transcript: %w", njerrors.ErrNotFound)
	}
	return text, nil
}

func (m *memTranscripts) Set(ctx context.Context, recordingID string, kind transcript.Kind, text string) error {
	m.texts[transcriptKey{recordingID, kind}] = text
	return nil
}

func (m *memTranscripts) Replace(ctx context.Context, recordingID string, kind transcript.Kind, fn transcript.RewriteFunc) (int, error) {
	text, err := m.Get(ctx, recordingID, kind)
	if err != nil {
		return 0, err
	}
	newText, count := fn(text)
	if count > 0 {
		m.texts[transcriptKey{recordingID, kind}] = newText
	}
	return count, nil
}

func (m *memTranscripts) Exists(ctx context.Context, recordingID string, kind transcript.Kind) (bool, error) {
	_, ok := m.texts[transcriptKey{recordingID, kind}]
	return ok, nil
}

type memIdentity struct {
	labels         []string
	snippets       map[string]timeline.Interval
	unknownEnsured bool
}

func (m *memIdentity) CreateAssociationsForLabels(ctx context.Context, recordingID string, labels []string, snippets map[string]timeline.Interval) error {
	m.labels = labels
	m.snippets = snippets
	return nil
}

func (m *memIdentity) EnsureUnknown(ctx context.Context, recordingID string) (*speakers.Speaker, error) {
	m.unknownEnsured = true
	return &speakers.Speaker{ID: 99, DisplayName: speakers.UnknownDisplayName}, nil
}

type busyLock struct{}

func (busyLock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	return nil, njerrors.ErrPipelineBusy
}

func newTestRunner(recs *memRecordings, texts *memTranscripts, id *memIdentity, lock Locker) *Runner {
	return NewRunner(recs, texts, id, lock,
		observability.NewPipelineMetrics(prometheus.NewRegistry()),
		observability.NewTracer(),
		logging.NewNopLogger())
}

func seededFixtures() (*memRecordings, *memTranscripts, *memIdentity) {
	recs := &memRecordings{recs: map[string]*recordings.Recording{
		"rec-1": {ID: "rec-1", Name: "standup", AudioPath: "/audio/rec-1.mp3", Status: recordings.StatusRecorded},
	}}
	texts := &memTranscripts{texts: make(map[transcriptKey]string)}
	return recs, texts, &memIdentity{}
}

func TestRun_HappyPath(t *testing.T) {
	recs, texts, id := seededFixtures()
	runner := newTestRunner(recs, texts, id, nil)

	result, err := runner.Run(context.Background(), Request{
		RecordingID: "rec-1",
		Utterances: []fusion.Utterance{
			{Start: 0, End: 2, Text: "hi"},
			{Start: 2, End: 4, Text: "there"},
		},
		Diarization: fusion.Diarization{
			{Start: 0, End: 5, Label: "SPEAKER_00"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Segments)
	assert.Equal(t, 1, result.Turns)
	assert.Zero(t, result.UnknownSegments)
	assert.Equal(t, []string{"SPEAKER_00"}, result.Labels)

	assert.Equal(t, recordings.StatusProcessed, recs.recs["rec-1"].Status)

	diarized := texts.texts[transcriptKey{"rec-1", transcript.KindDiarized}]
	assert.Contains(t, diarized, "- SPEAKER_00 - hi there")
	assert.True(t, strings.HasSuffix(diarized, "END\n"))

	raw := texts.texts[transcriptKey{"rec-1", transcript.KindRaw}]
	assert.Contains(t, raw, "hi")
	assert.Contains(t, raw, "there")

	assert.Equal(t, []string{"SPEAKER_00"}, id.labels)
	require.Contains(t, id.snippets, "SPEAKER_00")
	assert.Equal(t, timeline.Interval{Start: 0, End: 5}, id.snippets["SPEAKER_00"])
	assert.False(t, id.unknownEnsured)
}

func TestRun_EnsuresUnknownSpeaker(t *testing.T) {
	recs, texts, id := seededFixtures()
	runner := newTestRunner(recs, texts, id, nil)

	result, err := runner.Run(context.Background(), Request{
		RecordingID: "rec-1",
		Utterances: []fusion.Utterance{
			{Start: 0, End: 2, Text: "hi"},
			{Start: 100, End: 102, Text: "who said this"},
		},
		Diarization: fusion.Diarization{
			{Start: 0, End: 5, Label: "SPEAKER_00"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.UnknownSegments)
	assert.True(t, id.unknownEnsured)

	diarized := texts.texts[transcriptKey{"rec-1", transcript.KindDiarized}]
	assert.Contains(t, diarized, "- UNKNOWN - who said this")
}

func TestRun_BusyLock(t *testing.T) {
	recs, texts, id := seededFixtures()
	runner := newTestRunner(recs, texts, id, busyLock{})

	_, err := runner.Run(context.Background(), Request{RecordingID: "rec-1"})
	assert.True(t, njerrors.IsPipelineBusy(err))
	assert.Equal(t, recordings.StatusRecorded, recs.recs["rec-1"].Status,
		"no status change when the lock is held elsewhere")
}

func TestRun_MissingRecording(t *testing.T) {
	recs, texts, id := seededFixtures()
	runner := newTestRunner(recs, texts, id, nil)

	_, err := runner.Run(context.Background(), Request{RecordingID: "rec-404"})
	assert.True(t, njerrors.IsNotFound(err))
}

func TestRun_CancelledContext(t *testing.T) {
	recs, texts, id := seededFixtures()
	runner := newTestRunner(recs, texts, id, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, Request{
		RecordingID: "rec-1",
		Utterances:  []fusion.Utterance{{Start: 0, End: 2, Text: "hi"}},
		Diarization: fusion.Diarization{{Start: 0, End: 5, Label: "SPEAKER_00"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, recordings.StatusError, recs.recs["rec-1"].Status)
}

func TestRun_ReprocessingFromProcessed(t *testing.T) {
	recs, texts, id := seededFixtures()
	recs.recs["rec-1"].Status = recordings.StatusProcessed
	runner := newTestRunner(recs, texts, id, nil)

	_, err := runner.Run(context.Background(), Request{
		RecordingID: "rec-1",
		Utterances:  []fusion.Utterance{{Start: 0, End: 2, Text: "hi"}},
		Diarization: fusion.Diarization{{Start: 0, End: 5, Label: "SPEAKER_00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, recordings.StatusProcessed, recs.recs["rec-1"].Status)
}
