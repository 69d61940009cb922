package domain

// Source is a named origin of claims. Sources are created on first
// mention during ingestion and never deleted; trust is only mutated
// during self-reflection.
type Source struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	Trust    float64 `json:"trust"`
	Samples  int     `json:"samples"`
}
