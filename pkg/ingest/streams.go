package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/fusion"
)

// utteranceJSON is the ASR engine's wire shape.
type utteranceJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// turnJSON is the diarization engine's wire shape. Some engines emit
// the label under "speaker" instead of "label"; both are accepted,
// with "label" winning when both are present.
type turnJSON struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Label   string  `json:"label"`
	Speaker string  `json:"speaker"`
}

// ReadUtterances decodes an ASR utterance stream. Ordering by start is
// not guaranteed and is not enforced here; downstream fusion tolerates
// out-of-order and degenerate ranges.
func ReadUtterances(r io.Reader, charset string) ([]fusion.Utterance, error) {
	decoded, err := decodedReader(r, charset)
	if err != nil {
		return nil, err
	}

	var raw []utteranceJSON
	if err := json.NewDecoder(decoded).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding utterance stream: %v: %w", err, njerrors.ErrValidation)
	}

	out := make([]fusion.Utterance, len(raw))
	for i, u := range raw {
		out[i] = fusion.Utterance{Start: u.Start, End: u.End, Text: u.Text}
	}
	return out, nil
}

// ReadDiarization decodes a diarization turn stream. Turns may overlap
// in time and share labels.
func ReadDiarization(r io.Reader, charset string) (fusion.Diarization, error) {
	decoded, err := decodedReader(r, charset)
	if err != nil {
		return nil, err
	}

	var raw []turnJSON
	if err := json.NewDecoder(decoded).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding diarization stream: %v: %w", err, njerrors.ErrValidation)
	}

	out := make(fusion.Diarization, len(raw))
	for i, t := range raw {
		label := t.Label
		if label == "" {
			label = t.Speaker
		}
		if label == "" {
			return nil, fmt.Errorf("turn %d has no label: %w", i, njerrors.ErrValidation)
		}
		out[i] = fusion.SpeakerTurn{Start: t.Start, End: t.End, Label: label}
	}
	return out, nil
}
