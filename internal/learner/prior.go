package learner

import "github.com/openclaip/claip/internal/domain"

const defaultPriorValue = 0.5

// GeneralizedPrior holds a per-subject exponentially-weighted moving
// average of observed numeric labels, used as a prediction prior.
type GeneralizedPrior struct {
	alpha   float64
	entries map[string]*domain.PriorEntry
}

func NewGeneralizedPrior(alpha float64) *GeneralizedPrior {
	return &GeneralizedPrior{
		alpha:   alpha,
		entries: make(map[string]*domain.PriorEntry),
	}
}

// UpdateWithObservation folds a numeric outcome into the subject's
// EWMA. A nil outcome is a no-op.
func (g *GeneralizedPrior) UpdateWithObservation(subject string, outcome *float64) {
	if outcome == nil {
		return
	}
	e, ok := g.entries[subject]
	if !ok {
		e = &domain.PriorEntry{Value: defaultPriorValue}
		g.entries[subject] = e
	}
	e.Count++
	e.Value = (1-g.alpha)*e.Value + g.alpha*(*outcome)
}

// Prior returns the current EWMA value for the subject, 0.5 if unseen.
func (g *GeneralizedPrior) Prior(subject string) float64 {
	if e, ok := g.entries[subject]; ok {
		return e.Value
	}
	return defaultPriorValue
}

func (g *GeneralizedPrior) snapshot() map[string]domain.PriorEntry {
	out := make(map[string]domain.PriorEntry, len(g.entries))
	for subj, e := range g.entries {
		out[subj] = *e
	}
	return out
}

func (g *GeneralizedPrior) restore(entries map[string]domain.PriorEntry) {
	g.entries = make(map[string]*domain.PriorEntry, len(entries))
	for subj, e := range entries {
		copied := e
		g.entries[subj] = &copied
	}
}
