package domain

import "time"

// PredictionRecord is one logged prediction. Its index in the predictor
// history is the external handle used to resolve it later. Once Resolved
// is set, Correct and Brier never change.
type PredictionRecord struct {
	Subject   string    `json:"subject"`
	Scenario  Payload   `json:"scenario,omitempty"`
	Prob      float64   `json:"prob"`
	Own       bool      `json:"own"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
	Correct   *bool     `json:"correct,omitempty"`
	Brier     *float64  `json:"brier,omitempty"`
}

// Replay event kinds.
const (
	ReplayIngest  = "ingest"
	ReplayPredict = "predict"
	ReplayResolve = "resolve"
)

// ReplayEvent is one entry in the bounded replay log.
type ReplayEvent struct {
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Label     *float64  `json:"label,omitempty"`
	Prob      *float64  `json:"prob,omitempty"`
	Correct   *bool     `json:"correct,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PatternStats tracks per-subject ingestion patterns used by
// self-reflection to flag disagreement-heavy subjects.
type PatternStats struct {
	Events        int       `json:"events"`
	Disagreements int       `json:"disagreements"`
	LastLabel     *float64  `json:"last_label,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
}

// Link is a recorded relation between two subjects. Self-reflection
// records (subject, "high_disagreement", subject) self links.
type Link struct {
	SubjectA string `json:"subject_a"`
	Relation string `json:"relation"`
	SubjectB string `json:"subject_b"`
}
