package learner

import (
	"math"
	"sort"

	"github.com/openclaip/claip/internal/domain"
)

// subjectProgress is the heuristic completion tracker for one subject.
// Completion only ever grows because its inputs (items seen, distinct
// sources) only ever grow.
type subjectProgress struct {
	seenItems  int
	sources    map[string]struct{}
	completion float64
}

func newSubjectProgress(floor float64) *subjectProgress {
	return &subjectProgress{
		sources:    make(map[string]struct{}),
		completion: floor,
	}
}

// update counts one more item, unions the contributing sources, and
// recomputes completion as a diversity-accelerated saturating curve:
// the growth rate k rises with distinct sources but saturates at 10.
func (p *subjectProgress) update(rules domain.StaticRules, sourceIDs []string) {
	p.seenItems++
	for _, id := range sourceIDs {
		p.sources[id] = struct{}{}
	}
	diversity := len(p.sources)
	if diversity > 10 {
		diversity = 10
	}
	k := 0.06 + 0.01*float64(diversity)
	approx := (1 - math.Exp(-k*float64(p.seenItems))) * 100.0
	p.completion = math.Max(rules.MinCompletionFloor, math.Min(rules.MaxCompletionCap, approx))
}

func (p *subjectProgress) snapshot() domain.SubjectProgressState {
	ids := make([]string, 0, len(p.sources))
	for id := range p.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return domain.SubjectProgressState{
		SeenItems:         p.seenItems,
		DistinctSources:   ids,
		CompletionPercent: p.completion,
	}
}

func restoreSubjectProgress(s domain.SubjectProgressState) *subjectProgress {
	p := &subjectProgress{
		seenItems:  s.SeenItems,
		sources:    make(map[string]struct{}, len(s.DistinctSources)),
		completion: s.CompletionPercent,
	}
	for _, id := range s.DistinctSources {
		p.sources[id] = struct{}{}
	}
	return p
}
