package speakers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/fusion"
	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/timeline"
	"github.com/Valtora/nojoin/pkg/transcript"
)

// Manager is the speaker identity state machine. Rename only touches
// the speaker record; merge and delete rewrite the diarized transcript
// first and commit record changes only if the rewrite reported at
// least one modified line. Both run inside a single transaction, so a
// failure leaves transcript and records untouched.
type Manager struct {
	tx     TxRunner
	stores Stores
	logger logging.Logger
}

// NewManager creates a manager. The stores are used for reads and
// single-statement writes; the runner scopes multi-step operations.
func NewManager(tx TxRunner, stores Stores, logger logging.Logger) *Manager {
	return &Manager{tx: tx, stores: stores, logger: logger}
}

// CreateAssociationsForLabels registers every diarization label
// observed for a recording. A new label gets a fresh speaker named
// after the label plus an association; a label that already has an
// association only has its snippet updated. Speakers are deliberately
// not deduplicated by display name.
func (m *Manager) CreateAssociationsForLabels(ctx context.Context, recordingID string, labels []string, snippets map[string]timeline.Interval) error {
	if recordingID == "" {
		return fmt.Errorf("recording id is required: %w", njerrors.ErrValidation)
	}

	return m.tx.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		for _, label := range labels {
			var start, end *float64
			if snippet, ok := snippets[label]; ok {
				start, end = &snippet.Start, &snippet.End
			}

			existing, err := s.Speakers.GetAssociation(ctx, recordingID, label)
			switch {
			case err == nil:
				if start == nil {
					continue
				}
				if err := s.Speakers.UpdateSnippet(ctx, recordingID, label, start, end); err != nil {
					return err
				}
				m.logger.Debug("updated speaker snippet",
					logging.F("recording_id", recordingID),
					logging.F("label", label),
					logging.F("speaker_id", existing.SpeakerID))

			case njerrors.IsNotFound(err):
				speaker, err := s.Speakers.CreateSpeaker(ctx, label)
				if err != nil {
					return err
				}
				err = s.Speakers.CreateAssociation(ctx, Association{
					RecordingID:      recordingID,
					SpeakerID:        speaker.ID,
					DiarizationLabel: label,
					SnippetStart:     start,
					SnippetEnd:       end,
				})
				if err != nil {
					return err
				}
				m.logger.Debug("created speaker for label",
					logging.F("recording_id", recordingID),
					logging.F("label", label),
					logging.F("speaker_id", speaker.ID))

			default:
				return err
			}
		}
		return nil
	})
}

// Rename updates a speaker's display name. Transcript text stores the
// diarization label, so no rewrite happens.
func (m *Manager) Rename(ctx context.Context, speakerID int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("display name is required: %w", njerrors.ErrValidation)
	}
	if err := m.stores.Speakers.RenameSpeaker(ctx, speakerID, newName); err != nil {
		return err
	}
	m.logger.Info("renamed speaker",
		logging.F("speaker_id", speakerID),
		logging.F("name", newName))
	return nil
}

// Merge folds the source speakers into the target within one
// recording. Each source's diarization labels are rewritten to the
// target's label in the diarized transcript; source associations are
// then removed, and source speaker rows deleted once they hold no
// associations in any recording. Aborts without side effects if any
// source or the target lacks an association in the recording, or if
// the rewrite changes no lines.
func (m *Manager) Merge(ctx context.Context, recordingID string, sourceIDs []int64, targetID int64) (int, error) {
	var total int
	err := m.tx.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		targetAssocs, err := s.Speakers.AssociationsForSpeaker(ctx, recordingID, targetID)
		if err != nil {
			return err
		}
		if len(targetAssocs) == 0 {
			return fmt.Errorf("target speaker %d in recording %s: %w", targetID, recordingID, njerrors.ErrNotFound)
		}
		targetLabel := targetAssocs[0].DiarizationLabel

		type source struct {
			id     int64
			assocs []Association
		}
		var sources []source
		var sourceLabels []string
		for _, id := range sourceIDs {
			if id == targetID {
				continue
			}
			assocs, err := s.Speakers.AssociationsForSpeaker(ctx, recordingID, id)
			if err != nil {
				return err
			}
			if len(assocs) == 0 {
				return fmt.Errorf("source speaker %d in recording %s: %w", id, recordingID, njerrors.ErrNotFound)
			}
			sources = append(sources, source{id: id, assocs: assocs})
			for _, a := range assocs {
				sourceLabels = append(sourceLabels, a.DiarizationLabel)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("no source speakers to merge: %w", njerrors.ErrValidation)
		}

		count, err := s.Transcripts.Replace(ctx, recordingID, transcript.KindDiarized,
			func(text string) (string, int) {
				return transcript.RewriteLabels(text, sourceLabels, targetLabel)
			})
		if err != nil {
			return err
		}
		if count <= 0 {
			return fmt.Errorf("merging %v into %q changed no lines: %w",
				sourceLabels, targetLabel, njerrors.ErrRewriteFailed)
		}
		total = count

		for _, src := range sources {
			for _, a := range src.assocs {
				if err := s.Speakers.DeleteAssociation(ctx, recordingID, src.id, a.DiarizationLabel); err != nil {
					return err
				}
			}
			if err := m.deleteIfOrphaned(ctx, s, src.id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("merged speakers",
		logging.F("recording_id", recordingID),
		logging.F("target_id", targetID),
		logging.F("lines_rewritten", total))
	return total, nil
}

// Delete removes a speaker from one recording. The speaker's labels
// are stripped from the diarized transcript (lines they solely occupy
// are deleted, overlap groups lose the member); the association is
// then removed, and the speaker row deleted once orphaned. Aborts
// without side effects if the speaker has no association in the
// recording or the rewrite changes no lines.
func (m *Manager) Delete(ctx context.Context, recordingID string, speakerID int64) (int, error) {
	var total int
	err := m.tx.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		assocs, err := s.Speakers.AssociationsForSpeaker(ctx, recordingID, speakerID)
		if err != nil {
			return err
		}
		if len(assocs) == 0 {
			return fmt.Errorf("speaker %d in recording %s: %w", speakerID, recordingID, njerrors.ErrNotFound)
		}

		labels := make([]string, len(assocs))
		for i, a := range assocs {
			labels[i] = a.DiarizationLabel
		}

		count, err := s.Transcripts.Replace(ctx, recordingID, transcript.KindDiarized,
			func(text string) (string, int) {
				return transcript.RewriteLabels(text, labels, "")
			})
		if err != nil {
			return err
		}
		if count <= 0 {
			return fmt.Errorf("deleting %v changed no lines: %w", labels, njerrors.ErrRewriteFailed)
		}
		total = count

		for _, a := range assocs {
			if err := s.Speakers.DeleteAssociation(ctx, recordingID, speakerID, a.DiarizationLabel); err != nil {
				return err
			}
		}
		return m.deleteIfOrphaned(ctx, s, speakerID)
	})
	if err != nil {
		return 0, err
	}
	m.logger.Info("deleted speaker",
		logging.F("recording_id", recordingID),
		logging.F("speaker_id", speakerID),
		logging.F("lines_rewritten", total))
	return total, nil
}

// EnsureUnknown returns the recording's sentinel Unknown speaker,
// creating it (with an association for the UNKNOWN fused label) on
// first use.
func (m *Manager) EnsureUnknown(ctx context.Context, recordingID string) (*Speaker, error) {
	existing, err := m.stores.Speakers.FindSpeakerByName(ctx, recordingID, UnknownDisplayName)
	if err == nil {
		return existing, nil
	}
	if !njerrors.IsNotFound(err) {
		return nil, err
	}

	var created *Speaker
	err = m.tx.WithinTx(ctx, func(ctx context.Context, s Stores) error {
		speaker, err := s.Speakers.CreateSpeaker(ctx, UnknownDisplayName)
		if err != nil {
			return err
		}
		err = s.Speakers.CreateAssociation(ctx, Association{
			RecordingID:      recordingID,
			SpeakerID:        speaker.ID,
			DiarizationLabel: fusion.UnknownLabel,
		})
		if err != nil {
			return err
		}
		created = speaker
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteUnknown removes the sentinel Unknown speaker from a recording,
// following the same delete path as any other speaker.
func (m *Manager) DeleteUnknown(ctx context.Context, recordingID string) (int, error) {
	speaker, err := m.stores.Speakers.FindSpeakerByName(ctx, recordingID, UnknownDisplayName)
	if err != nil {
		return 0, err
	}
	return m.Delete(ctx, recordingID, speaker.ID)
}

// LinkToGlobal links a speaker to a global profile. Pure foreign-key
// update, no transcript effect.
func (m *Manager) LinkToGlobal(ctx context.Context, speakerID int64, globalID uuid.UUID) error {
	if _, err := m.stores.Speakers.GetGlobalSpeaker(ctx, globalID); err != nil {
		return err
	}
	return m.stores.Speakers.SetGlobalLink(ctx, speakerID, &globalID)
}

// Unlink clears a speaker's global profile link.
func (m *Manager) Unlink(ctx context.Context, speakerID int64) error {
	return m.stores.Speakers.SetGlobalLink(ctx, speakerID, nil)
}

// CreateGlobalProfile creates a global speaker profile. Names are
// unique case-insensitively.
func (m *Manager) CreateGlobalProfile(ctx context.Context, name string) (*GlobalSpeaker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("profile name is required: %w", njerrors.ErrValidation)
	}
	gs, err := m.stores.Speakers.CreateGlobalSpeaker(ctx, name)
	if err != nil {
		return nil, err
	}
	m.logger.Info("created global speaker profile",
		logging.F("global_speaker_id", gs.ID.String()),
		logging.F("name", gs.Name))
	return gs, nil
}

// RenameGlobalProfile renames a global profile, subject to the same
// case-insensitive uniqueness rule.
func (m *Manager) RenameGlobalProfile(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("profile name is required: %w", njerrors.ErrValidation)
	}
	return m.stores.Speakers.RenameGlobalSpeaker(ctx, id, name)
}

// DeleteGlobalProfile removes a global profile. Linked speakers keep
// their records and recordings; only the link is cleared.
func (m *Manager) DeleteGlobalProfile(ctx context.Context, id uuid.UUID) error {
	if err := m.stores.Speakers.DeleteGlobalSpeaker(ctx, id); err != nil {
		return err
	}
	m.logger.Info("deleted global speaker profile", logging.F("global_speaker_id", id.String()))
	return nil
}

// ListGlobalProfiles lists all global speaker profiles by name.
func (m *Manager) ListGlobalProfiles(ctx context.Context) ([]GlobalSpeaker, error) {
	return m.stores.Speakers.ListGlobalSpeakers(ctx)
}

// GetGlobalProfile fetches one global profile.
func (m *Manager) GetGlobalProfile(ctx context.Context, id uuid.UUID) (*GlobalSpeaker, error) {
	return m.stores.Speakers.GetGlobalSpeaker(ctx, id)
}

// ListSpeakers lists the speakers appearing in a recording.
func (m *Manager) ListSpeakers(ctx context.Context, recordingID string) ([]Speaker, error) {
	return m.stores.Speakers.ListSpeakers(ctx, recordingID)
}

// deleteIfOrphaned removes the speaker row when it no longer has an
// association in any recording. Explicit count query, so the invariant
// is auditable in isolation.
func (m *Manager) deleteIfOrphaned(ctx context.Context, s Stores, speakerID int64) error {
	count, err := s.Speakers.CountAssociations(ctx, speakerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.Speakers.DeleteSpeaker(ctx, speakerID)
}
