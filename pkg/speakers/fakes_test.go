package speakers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/transcript"
)

// fakeState is the in-memory backing for manager tests. The fake
// runner snapshots it before an operation and restores it on failure,
// mirroring transaction rollback.
type fakeState struct {
	nextSpeakerID int64
	speakers      map[int64]*Speaker
	assocs        []Association
	globals       map[uuid.UUID]*GlobalSpeaker
	transcripts   map[string]map[transcript.Kind]string
}

func newFakeState() *fakeState {
	return &fakeState{
		nextSpeakerID: 1,
		speakers:      make(map[int64]*Speaker),
		globals:       make(map[uuid.UUID]*GlobalSpeaker),
		transcripts:   make(map[string]map[transcript.Kind]string),
	}
}

func (st *fakeState) clone() *fakeState {
	c := newFakeState()
	c.nextSpeakerID = st.nextSpeakerID
	for id, s := range st.speakers {
		copied := *s
		c.speakers[id] = &copied
	}
	c.assocs = append([]Association(nil), st.assocs...)
	for id, g := range st.globals {
		copied := *g
		c.globals[id] = &copied
	}
	for rec, kinds := range st.transcripts {
		c.transcripts[rec] = make(map[transcript.Kind]string, len(kinds))
		for k, v := range kinds {
			c.transcripts[rec][k] = v
		}
	}
	return c
}

func (st *fakeState) setTranscript(recordingID string, kind transcript.Kind, text string) {
	if st.transcripts[recordingID] == nil {
		st.transcripts[recordingID] = make(map[transcript.Kind]string)
	}
	st.transcripts[recordingID][kind] = text
}

// fakeSpeakerStore implements Store over fakeState.
type fakeSpeakerStore struct{ st *fakeState }

func (f *fakeSpeakerStore) CreateSpeaker(ctx context.Context, displayName string) (*Speaker, error) {
	s := &Speaker{ID: f.st.nextSpeakerID, DisplayName: displayName}
	f.st.nextSpeakerID++
	f.st.speakers[s.ID] = s
	copied := *s
	return &copied, nil
}

func (f *fakeSpeakerStore) GetSpeaker(ctx context.Context, id int64) (*Speaker, error) {
	s, ok := f.st.speakers[id]
	if !ok {
		return nil, fmt.Errorf("speaker %d: %w", id, njerrors.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSpeakerStore) RenameSpeaker(ctx context.Context, id int64, displayName string) error {
	s, ok := f.st.speakers[id]
	if !ok {
		return fmt.Errorf("speaker %d: %w", id, njerrors.ErrNotFound)
	}
	s.DisplayName = displayName
	return nil
}

func (f *fakeSpeakerStore) DeleteSpeaker(ctx context.Context, id int64) error {
	delete(f.st.speakers, id)
	return nil
}

func (f *fakeSpeakerStore) SetGlobalLink(ctx context.Context, speakerID int64, globalID *uuid.UUID) error {
	s, ok := f.st.speakers[speakerID]
	if !ok {
		return fmt.Errorf("speaker %d: %w", speakerID, njerrors.ErrNotFound)
	}
	s.GlobalSpeakerID = globalID
	return nil
}

func (f *fakeSpeakerStore) CreateAssociation(ctx context.Context, a Association) error {
	for _, existing := range f.st.assocs {
		if existing.RecordingID == a.RecordingID && existing.DiarizationLabel == a.DiarizationLabel {
			return fmt.Errorf("label %q: %w", a.DiarizationLabel, njerrors.ErrAlreadyExists)
		}
	}
	f.st.assocs = append(f.st.assocs, a)
	return nil
}

func (f *fakeSpeakerStore) GetAssociation(ctx context.Context, recordingID, label string) (*Association, error) {
	for _, a := range f.st.assocs {
		if a.RecordingID == recordingID && a.DiarizationLabel == label {
			copied := a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("label %q: %w", label, njerrors.ErrNotFound)
}

func (f *fakeSpeakerStore) AssociationsForSpeaker(ctx context.Context, recordingID string, speakerID int64) ([]Association, error) {
	var out []Association
	for _, a := range f.st.assocs {
		if a.RecordingID == recordingID && a.SpeakerID == speakerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSpeakerStore) ListAssociations(ctx context.Context, recordingID string) ([]Association, error) {
	var out []Association
	for _, a := range f.st.assocs {
		if a.RecordingID == recordingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSpeakerStore) UpdateSnippet(ctx context.Context, recordingID, label string, start, end *float64) error {
	for i := range f.st.assocs {
		a := &f.st.assocs[i]
		if a.RecordingID == recordingID && a.DiarizationLabel == label {
			a.SnippetStart, a.SnippetEnd = start, end
			return nil
		}
	}
	return fmt.Errorf("label %q: %w", label, njerrors.ErrNotFound)
}

func (f *fakeSpeakerStore) DeleteAssociation(ctx context.Context, recordingID string, speakerID int64, label string) error {
	for i, a := range f.st.assocs {
		if a.RecordingID == recordingID && a.SpeakerID == speakerID && a.DiarizationLabel == label {
			f.st.assocs = append(f.st.assocs[:i], f.st.assocs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("label %q: %w", label, njerrors.ErrNotFound)
}

func (f *fakeSpeakerStore) CountAssociations(ctx context.Context, speakerID int64) (int, error) {
	count := 0
	for _, a := range f.st.assocs {
		if a.SpeakerID == speakerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSpeakerStore) ListSpeakers(ctx context.Context, recordingID string) ([]Speaker, error) {
	seen := make(map[int64]bool)
	var out []Speaker
	for _, a := range f.st.assocs {
		if a.RecordingID != recordingID || seen[a.SpeakerID] {
			continue
		}
		seen[a.SpeakerID] = true
		if s, ok := f.st.speakers[a.SpeakerID]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSpeakerStore) FindSpeakerByName(ctx context.Context, recordingID, displayName string) (*Speaker, error) {
	for _, a := range f.st.assocs {
		if a.RecordingID != recordingID {
			continue
		}
		s, ok := f.st.speakers[a.SpeakerID]
		if ok && strings.EqualFold(s.DisplayName, displayName) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("speaker %q: %w", displayName, njerrors.ErrNotFound)
}

func (f *fakeSpeakerStore) CreateGlobalSpeaker(ctx context.Context, name string) (*GlobalSpeaker, error) {
	for _, g := range f.st.globals {
		if strings.EqualFold(g.Name, name) {
			return nil, fmt.Errorf("global speaker %q: %w", name, njerrors.ErrAlreadyExists)
		}
	}
	gs := &GlobalSpeaker{ID: uuid.New(), Name: name}
	f.st.globals[gs.ID] = gs
	copied := *gs
	return &copied, nil
}

func (f *fakeSpeakerStore) GetGlobalSpeaker(ctx context.Context, id uuid.UUID) (*GlobalSpeaker, error) {
	g, ok := f.st.globals[id]
	if !ok {
		return nil, fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
	}
	copied := *g
	return &copied, nil
}

func (f *fakeSpeakerStore) GetGlobalSpeakerByName(ctx context.Context, name string) (*GlobalSpeaker, error) {
	for _, g := range f.st.globals {
		if strings.EqualFold(g.Name, name) {
			copied := *g
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("global speaker %q: %w", name, njerrors.ErrNotFound)
}

func (f *fakeSpeakerStore) ListGlobalSpeakers(ctx context.Context) ([]GlobalSpeaker, error) {
	var out []GlobalSpeaker
	for _, g := range f.st.globals {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeSpeakerStore) RenameGlobalSpeaker(ctx context.Context, id uuid.UUID, name string) error {
	g, ok := f.st.globals[id]
	if !ok {
		return fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
	}
	for otherID, other := range f.st.globals {
		if otherID != id && strings.EqualFold(other.Name, name) {
			return fmt.Errorf("global speaker %q: %w", name, njerrors.ErrAlreadyExists)
		}
	}
	g.Name = name
	return nil
}

func (f *fakeSpeakerStore) DeleteGlobalSpeaker(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.st.globals[id]; !ok {
		return fmt.Errorf("global speaker %s: %w", id, njerrors.ErrNotFound)
	}
	delete(f.st.globals, id)
	for _, s := range f.st.speakers {
		if s.GlobalSpeakerID != nil && *s.GlobalSpeakerID == id {
			s.GlobalSpeakerID = nil
		}
	}
	return nil
}

// fakeTranscriptStore implements transcript.Store over fakeState.
type fakeTranscriptStore struct{ st *fakeState }

func (f *fakeTranscriptStore) Get(ctx context.Context, recordingID string, kind transcript.Kind) (string, error) {
	kinds, ok := f.st.transcripts[recordingID]
	if !ok {
		return "", fmt.Errorf("recording %s: %w", recordingID, njerrors.ErrNotFound)
	}
	text, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("recording %s has no %s transcript: %w", recordingID, kind, njerrors.ErrNotFound)
	}
	return text, nil
}

func (f *fakeTranscriptStore) Set(ctx context.Context, recordingID string, kind transcript.Kind, text string) error {
	f.st.setTranscript(recordingID, kind, text)
	return nil
}

func (f *fakeTranscriptStore) Replace(ctx context.Context, recordingID string, kind transcript.Kind, fn transcript.RewriteFunc) (int, error) {
	text, err := f.Get(ctx, recordingID, kind)
	if err != nil {
		return 0, err
	}
	newText, count := fn(text)
	if count > 0 {
		f.st.setTranscript(recordingID, kind, newText)
	}
	return count, nil
}

func (f *fakeTranscriptStore) Exists(ctx context.Context, recordingID string, kind transcript.Kind) (bool, error) {
	kinds, ok := f.st.transcripts[recordingID]
	if !ok {
		return false, nil
	}
	_, ok = kinds[kind]
	return ok, nil
}

// fakeTxRunner applies fn to a cloned state and copies the clone back
// only on success.
type fakeTxRunner struct{ st *fakeState }

func (r *fakeTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	clone := r.st.clone()
	s := Stores{
		Speakers:    &fakeSpeakerStore{st: clone},
		Transcripts: &fakeTranscriptStore{st: clone},
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	*r.st = *clone
	return nil
}

func newFakeManager() (*Manager, *fakeState) {
	st := newFakeState()
	stores := Stores{
		Speakers:    &fakeSpeakerStore{st: st},
		Transcripts: &fakeTranscriptStore{st: st},
	}
	return NewManager(&fakeTxRunner{st: st}, stores, logging.NewNopLogger()), st
}
