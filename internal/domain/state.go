package domain

import "time"

// StateVersion is the schema version written into every snapshot.
// Bump it whenever a field is added or its meaning changes.
const StateVersion = 1

// PriorEntry is the serialized per-subject EWMA prior.
type PriorEntry struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// SubjectProgressState is the serialized per-subject progress record.
// DistinctSources is kept sorted so snapshots are deterministic.
type SubjectProgressState struct {
	SeenItems         int      `json:"seen_items"`
	DistinctSources   []string `json:"distinct_sources"`
	CompletionPercent float64  `json:"completion_percent"`
}

// LearnerState is the explicit, versioned snapshot schema covering
// every component the learner owns. Checkpoints serialize this type
// rather than live objects.
type LearnerState struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	EventCount          int     `json:"event_count"`
	LastReflectionEvent int     `json:"last_reflection_event"`
	LastCheckpointEvent int     `json:"last_checkpoint_event"`
	TotalReward         float64 `json:"total_reward"`

	Sources      []Source                        `json:"sources"`
	Claims       []Claim                         `json:"claims"`
	Priors       map[string]PriorEntry           `json:"priors"`
	Progress     map[string]SubjectProgressState `json:"progress"`
	Predictions  []PredictionRecord              `json:"predictions"`
	Calibration  []float64                       `json:"calibration"`
	Replay       []ReplayEvent                   `json:"replay"`
	PatternStats map[string]PatternStats         `json:"pattern_stats"`
	BiasNotes    []string                        `json:"bias_notes"`
	Links        []Link                          `json:"links"`
}

// StateSummary is the lightweight learner view handed to the shadow
// evaluation hook.
type StateSummary struct {
	EventCount      int     `json:"event_count"`
	TotalReward     float64 `json:"total_reward"`
	SubjectsTracked int     `json:"subjects_tracked"`
	SourcesCount    int     `json:"sources_count"`
	BiasCount       int     `json:"bias_count"`
}

// CheckpointMeta is the sidecar descriptor written next to every
// checkpoint blob.
type CheckpointMeta struct {
	Timestamp string `json:"timestamp"`
	Label     string `json:"label"`
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
}
