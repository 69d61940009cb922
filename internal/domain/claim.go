package domain

import "time"

// Payload is a schema-free key/value payload supplied by callers.
// Claim info and prediction scenarios round-trip through JSON without
// the core knowing their shape.
type Payload = map[string]any

// Claim is a single labeled observation about a subject. Claims are
// immutable once stored and are never deleted.
type Claim struct {
	Subject   string    `json:"subject"`
	Info      Payload   `json:"info,omitempty"`
	Label     *float64  `json:"label,omitempty"`
	SourceIDs []string  `json:"source_ids"`
	Own       bool      `json:"own"`
	Timestamp time.Time `json:"timestamp"`
}
