package learner

import (
	"errors"

	"github.com/google/uuid"
	"github.com/openclaip/claip/internal/domain"
)

var ErrSourceNotFound = errors.New("source not found")

const maxTrustHops = 4

// SourceGraph stores sources and their optional parent links. Parent
// references are by id only, so the graph never forms ownership cycles.
type SourceGraph struct {
	sources map[string]*domain.Source
	order   []string // insertion order, for deterministic snapshots
}

func NewSourceGraph() *SourceGraph {
	return &SourceGraph{sources: make(map[string]*domain.Source)}
}

// Add creates a source and returns its id. Names are not deduplicated
// here; callers that want dedupe must check FindByName first.
func (g *SourceGraph) Add(name string, parentID *string, baseTrust float64) string {
	s := &domain.Source{
		ID:       uuid.NewString(),
		Name:     name,
		ParentID: parentID,
		Trust:    baseTrust,
	}
	g.sources[s.ID] = s
	g.order = append(g.order, s.ID)
	return s.ID
}

func (g *SourceGraph) Get(id string) (*domain.Source, error) {
	s, ok := g.sources[id]
	if !ok {
		return nil, ErrSourceNotFound
	}
	return s, nil
}

// FindByName returns the id of the first source with an exactly
// matching name. Matching is case-sensitive by design.
func (g *SourceGraph) FindByName(name string) (string, bool) {
	for _, id := range g.order {
		if g.sources[id].Name == name {
			return id, true
		}
	}
	return "", false
}

// InheritedTrust walks up to four parent hops, blending the source's
// trust with each ancestor as t = 0.7*t + 0.3*parent.trust. It stops
// early when the chain bottoms out.
func (g *SourceGraph) InheritedTrust(id string) (float64, error) {
	s, ok := g.sources[id]
	if !ok {
		return 0, ErrSourceNotFound
	}
	t := s.Trust
	for hops := 0; hops < maxTrustHops; hops++ {
		if s.ParentID == nil {
			break
		}
		parent, ok := g.sources[*s.ParentID]
		if !ok {
			break
		}
		s = parent
		t = 0.7*t + 0.3*s.Trust
	}
	return t, nil
}

// Skepticism is one minus the combined independent confidence across
// the given sources, with each trust softened away from the extremes.
// Lower means better-corroborated. An empty source list is maximally
// skeptical (1.0).
func (g *SourceGraph) Skepticism(sourceIDs []string) (float64, error) {
	if len(sourceIDs) == 0 {
		return 1.0, nil
	}
	independent := 1.0
	for _, id := range sourceIDs {
		t, err := g.InheritedTrust(id)
		if err != nil {
			return 0, err
		}
		independent *= 0.9*t + 0.1
	}
	s := 1.0 - independent
	if s < 0 {
		s = 0
	}
	return s, nil
}

// All returns every source in insertion order. The returned pointers
// alias graph state; only self-reflection mutates them.
func (g *SourceGraph) All() []*domain.Source {
	out := make([]*domain.Source, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.sources[id])
	}
	return out
}

func (g *SourceGraph) Len() int {
	return len(g.sources)
}
