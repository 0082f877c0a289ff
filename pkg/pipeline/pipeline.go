// Package pipeline orchestrates one recording's processing pass:
// fusing ASR utterances with diarization turns, consolidating them
// into display turns, serializing transcript text, selecting snippet
// intervals, and registering speaker associations. Runs are guarded by
// a global single-flight lock.
package pipeline

import (
	"context"
	"fmt"
	"time"

	njerrors "github.com/Valtora/nojoin/pkg/errors"
	"github.com/Valtora/nojoin/pkg/fusion"
	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/observability"
	"github.com/Valtora/nojoin/pkg/recordings"
	"github.com/Valtora/nojoin/pkg/speakers"
	"github.com/Valtora/nojoin/pkg/timeline"
	"github.com/Valtora/nojoin/pkg/transcript"
)

// RecordingStore is the slice of the recordings repository the runner
// needs for lifecycle transitions.
type RecordingStore interface {
	Get(ctx context.Context, id string) (*recordings.Recording, error)
	SetStatus(ctx context.Context, id string, from, to recordings.Status) error
	MarkProcessed(ctx context.Context, id string) error
}

// IdentityRegistrar registers the speakers a run discovers.
type IdentityRegistrar interface {
	CreateAssociationsForLabels(ctx context.Context, recordingID string, labels []string, snippets map[string]timeline.Interval) error
	EnsureUnknown(ctx context.Context, recordingID string) (*speakers.Speaker, error)
}

// Request carries one recording's externally produced streams.
type Request struct {
	RecordingID string
	Utterances  []fusion.Utterance
	Diarization fusion.Diarization
}

// Result summarizes a completed run.
type Result struct {
	Segments        int
	Turns           int
	UnknownSegments int
	Labels          []string
}

// Runner executes the processing pipeline.
type Runner struct {
	recordings  RecordingStore
	transcripts transcript.Store
	identity    IdentityRegistrar
	lock        Locker
	metrics     *observability.PipelineMetrics
	tracer      *observability.Tracer
	logger      logging.Logger
}

// NewRunner wires a pipeline runner.
func NewRunner(
	recs RecordingStore,
	transcripts transcript.Store,
	identity IdentityRegistrar,
	lock Locker,
	metrics *observability.PipelineMetrics,
	tracer *observability.Tracer,
	logger logging.Logger,
) *Runner {
	if lock == nil {
		lock = NoopLock{}
	}
	return &Runner{
		recordings:  recs,
		transcripts: transcripts,
		identity:    identity,
		lock:        lock,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
	}
}

// Run processes one recording synchronously. The recording moves to
// Processing at the start and to Processed or Error at the end. A
// second concurrent call anywhere in the installation fails with
// ErrPipelineBusy. Cancellation is checked between stages, never
// inside one.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	release, err := r.lock.Acquire(ctx)
	if err != nil {
		if njerrors.IsPipelineBusy(err) {
			r.metrics.LockContentions.Inc()
		}
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			r.logger.Warn("failed to release pipeline lock", logging.Err(err))
		}
	}()

	ctx, runSpan := r.tracer.StartRunSpan(ctx, req.RecordingID)
	start := time.Now()

	result, err := r.run(ctx, req)

	r.metrics.RunSeconds.Observe(time.Since(start).Seconds())
	observability.EndSpan(runSpan, err)
	if err != nil {
		r.metrics.RunsTotal.WithLabelValues("error").Inc()
		if stErr := r.recordings.SetStatus(ctx, req.RecordingID, recordings.StatusProcessing, recordings.StatusError); stErr != nil {
			r.logger.Warn("failed to mark recording errored",
				logging.F("recording_id", req.RecordingID), logging.Err(stErr))
		}
		return nil, err
	}
	r.metrics.RunsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*Result, error) {
	rec, err := r.recordings.Get(ctx, req.RecordingID)
	if err != nil {
		return nil, err
	}
	if err := r.recordings.SetStatus(ctx, rec.ID, rec.Status, recordings.StatusProcessing); err != nil {
		return nil, err
	}

	log := r.logger.With(logging.F("recording_id", req.RecordingID))
	result := &Result{Labels: req.Diarization.Labels()}

	var fused []fusion.FusedSegment
	err = r.stage(ctx, observability.StageFuse, func() error {
		fused = fusion.Fuse(req.Utterances, req.Diarization)
		result.Segments = len(fused)
		for _, seg := range fused {
			if seg.SpeakerLabel == fusion.UnknownLabel {
				result.UnknownSegments++
			}
		}
		r.metrics.SegmentsFused.Add(float64(len(fused)))
		r.metrics.UnknownSegments.Add(float64(result.UnknownSegments))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var turns []fusion.ConsolidatedTurn
	err = r.stage(ctx, observability.StageConsolidate, func() error {
		turns = fusion.Consolidate(fused)
		result.Turns = len(turns)
		r.metrics.TurnsProduced.Add(float64(len(turns)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, observability.StageSerialize, func() error {
		raw := transcript.Serialize(rawTurns(req.Utterances))
		if err := r.transcripts.Set(ctx, rec.ID, transcript.KindRaw, raw); err != nil {
			return err
		}
		return r.transcripts.Set(ctx, rec.ID, transcript.KindDiarized, transcript.Serialize(turns))
	})
	if err != nil {
		return nil, err
	}

	snippets := make(map[string]timeline.Interval, len(result.Labels))
	err = r.stage(ctx, observability.StageSnippets, func() error {
		for _, label := range result.Labels {
			snippet, err := timeline.SelectClearest(
				req.Diarization.IntervalsForLabel(label), timeline.DefaultMinSnippetLength)
			if err != nil {
				// A label observed in turns always has intervals, but a
				// degenerate stream should not fail the whole run.
				log.Warn("no snippet for label", logging.F("label", label), logging.Err(err))
				continue
			}
			snippets[label] = snippet
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, observability.StageAssociate, func() error {
		if err := r.identity.CreateAssociationsForLabels(ctx, rec.ID, result.Labels, snippets); err != nil {
			return err
		}
		if result.UnknownSegments > 0 {
			if _, err := r.identity.EnsureUnknown(ctx, rec.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.recordings.MarkProcessed(ctx, rec.ID); err != nil {
		return nil, err
	}

	log.Info("pipeline run complete",
		logging.F("segments", result.Segments),
		logging.F("turns", result.Turns),
		logging.F("unknown_segments", result.UnknownSegments),
		logging.F("labels", len(result.Labels)))
	return result, nil
}

// stage runs one pipeline stage with a cooperative cancellation check,
// a span, and a duration observation.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline cancelled before %s: %w", name, err)
	}

	_, span := r.tracer.StartStageSpan(ctx, name)
	start := time.Now()
	err := fn()
	r.metrics.StageSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	observability.EndSpan(span, err)
	if err != nil {
		return fmt.Errorf("pipeline stage %s: %w", name, err)
	}
	return nil
}

// rawTurns shapes the pre-diarization utterance stream into canonical
// transcript turns. No speaker is known yet, so every line carries the
// UNKNOWN label.
func rawTurns(utterances []fusion.Utterance) []fusion.ConsolidatedTurn {
	out := make([]fusion.ConsolidatedTurn, 0, len(utterances))
	for _, u := range utterances {
		out = append(out, fusion.ConsolidatedTurn{
			Start:        u.Start,
			End:          u.End,
			SpeakerLabel: fusion.UnknownLabel,
			Text:         u.Text,
		})
	}
	return out
}
