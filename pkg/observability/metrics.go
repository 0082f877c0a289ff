// Package observability holds the Prometheus metrics and OpenTelemetry
// tracing for the transcript processing pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage names used as metric and span labels.
const (
	StageIngest      = "ingest"
	StageFuse        = "fuse"
	StageConsolidate = "consolidate"
	StageSerialize   = "serialize"
	StageSnippets    = "snippets"
	StagePersist     = "persist"
	StageAssociate   = "associate"
)

// PipelineMetrics holds all Prometheus metrics for pipeline runs.
type PipelineMetrics struct {
	RunsTotal        *prometheus.CounterVec
	RunSeconds       prometheus.Histogram
	StageSeconds     *prometheus.HistogramVec
	SegmentsFused    prometheus.Counter
	TurnsProduced    prometheus.Counter
	UnknownSegments  prometheus.Counter
	LockContentions  prometheus.Counter
	RewritesTotal    *prometheus.CounterVec
	RewrittenLines   prometheus.Counter
}

// DefaultPipelineMetrics creates metrics on the default registerer.
func DefaultPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetrics(prometheus.DefaultRegisterer)
}

// NewPipelineMetrics creates a new set of pipeline metrics.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nojoin_pipeline_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		RunSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nojoin_pipeline_run_seconds",
				Help:    "End-to-end pipeline run duration",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nojoin_pipeline_stage_seconds",
				Help:    "Per-stage pipeline duration",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"stage"},
		),
		SegmentsFused: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nojoin_segments_fused_total",
				Help: "Utterances assigned a speaker label",
			},
		),
		TurnsProduced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nojoin_turns_produced_total",
				Help: "Consolidated turns written to transcripts",
			},
		),
		UnknownSegments: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nojoin_unknown_segments_total",
				Help: "Fused segments with no overlapping diarization turn",
			},
		),
		LockContentions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nojoin_pipeline_lock_contentions_total",
				Help: "Pipeline runs rejected because another run held the lock",
			},
		),
		RewritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nojoin_transcript_rewrites_total",
				Help: "Transcript label rewrites by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		RewrittenLines: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "nojoin_transcript_rewritten_lines_total",
				Help: "Transcript lines modified or deleted by rewrites",
			},
		),
	}
}
