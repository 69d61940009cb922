package domain

import (
	"context"
	"time"
)

// Checkpointer snapshots learner state to durable storage. Implemented
// by the checkpoint subsystem; attached to a learner as an optional
// capability.
type Checkpointer interface {
	Create(ctx context.Context, state *LearnerState, label string) (CheckpointMeta, error)
}

// ShadowEvaluator is the best-effort external auditing hook. Its return
// value is logged but otherwise ignored by the core; failures are never
// propagated.
type ShadowEvaluator interface {
	Evaluate(ctx context.Context, view StateSummary, meanBrier *float64, replay []ReplayEvent) error
}

// MetricsSink receives one report per self-reflection cycle and returns
// where it was written.
type MetricsSink interface {
	Write(ctx context.Context, report MetricsReport) (string, error)
}

// ClaimArchiver mirrors ingested claims to external storage. Failures
// are logged by the caller and never abort ingestion.
type ClaimArchiver interface {
	Insert(ctx context.Context, c *Claim) error
}

// MetricsReport is the per-reflection metrics artifact.
type MetricsReport struct {
	Timestamp           time.Time `json:"timestamp"`
	EventCount          int       `json:"event_count"`
	TotalReward         float64   `json:"total_reward"`
	Accuracy            *float64  `json:"accuracy"`
	CalibrationBrier    *float64  `json:"calibration_brier"`
	TotalPredictions    int       `json:"total_predictions"`
	ResolvedPredictions int       `json:"resolved_predictions"`
	BiasCount           int       `json:"bias_count"`
	SubjectsTracked     int       `json:"subjects_tracked"`
	SourcesCount        int       `json:"sources_count"`
}

// SubjectReport is the per-subject inspection view.
type SubjectReport struct {
	Subject           string  `json:"subject"`
	CompletionPercent float64 `json:"completion_percent"`
	Items             int     `json:"items"`
	DistinctSources   int     `json:"distinct_sources"`
	Prior             float64 `json:"prior"`
	Skepticism        float64 `json:"skepticism"`
}
