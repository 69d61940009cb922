package learner

import (
	"errors"

	"github.com/openclaip/claip/internal/domain"
)

var ErrPredictionNotFound = errors.New("prediction not found")

const (
	evidenceWeight = 0.35
	minProb        = 0.01
	maxProb        = 0.99
)

// Predictor blends the generalized prior with optional external
// evidence, keeps the append-only prediction history, and tracks a
// bounded rolling window of Brier scores for calibration.
type Predictor struct {
	prior       *GeneralizedPrior
	history     []domain.PredictionRecord
	calibration []float64
	windowSize  int
}

func NewPredictor(prior *GeneralizedPrior, windowSize int) *Predictor {
	return &Predictor{prior: prior, windowSize: windowSize}
}

// Predict returns the raw prior when no evidence is given, otherwise a
// clamped convex blend of prior and evidence. Pure; does not log.
func (p *Predictor) Predict(subject string, scenario domain.Payload, extraEvidence *float64) float64 {
	prior := p.prior.Prior(subject)
	if extraEvidence == nil {
		return prior
	}
	blended := (1-evidenceWeight)*prior + evidenceWeight*(*extraEvidence)
	return clampProb(blended)
}

func clampProb(v float64) float64 {
	if v < minProb {
		return minProb
	}
	if v > maxProb {
		return maxProb
	}
	return v
}

// LogPrediction appends the record and returns its index. Indices are
// stable and serve as external resolution handles.
func (p *Predictor) LogPrediction(rec domain.PredictionRecord) int {
	p.history = append(p.history, rec)
	return len(p.history) - 1
}

// Resolve finalizes a prediction against the observed outcome (0 or 1).
// It is idempotent: resolving an already-resolved record changes
// nothing and reports changed=false.
func (p *Predictor) Resolve(idx int, observed int) (changed bool, err error) {
	if idx < 0 || idx >= len(p.history) {
		return false, ErrPredictionNotFound
	}
	rec := &p.history[idx]
	if rec.Resolved {
		return false, nil
	}
	rec.Resolved = true
	correct := (observed == 1 && rec.Prob >= 0.5) || (observed == 0 && rec.Prob < 0.5)
	rec.Correct = &correct
	brier := (rec.Prob - float64(observed)) * (rec.Prob - float64(observed))
	rec.Brier = &brier

	if len(p.calibration) == p.windowSize {
		copy(p.calibration, p.calibration[1:])
		p.calibration = p.calibration[:len(p.calibration)-1]
	}
	p.calibration = append(p.calibration, brier)
	return true, nil
}

// Record returns a copy of the prediction at idx.
func (p *Predictor) Record(idx int) (domain.PredictionRecord, error) {
	if idx < 0 || idx >= len(p.history) {
		return domain.PredictionRecord{}, ErrPredictionNotFound
	}
	return p.history[idx], nil
}

// MeanBrier averages the rolling calibration window. ok is false when
// no prediction has been resolved yet.
func (p *Predictor) MeanBrier() (mean float64, ok bool) {
	if len(p.calibration) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, b := range p.calibration {
		sum += b
	}
	return sum / float64(len(p.calibration)), true
}

func (p *Predictor) TotalPredictions() int {
	return len(p.history)
}

// ResolvedCounts returns how many predictions are resolved and how many
// of those were correct.
func (p *Predictor) ResolvedCounts() (resolved, correct int) {
	for _, rec := range p.history {
		if rec.Resolved {
			resolved++
			if rec.Correct != nil && *rec.Correct {
				correct++
			}
		}
	}
	return resolved, correct
}

func (p *Predictor) snapshotHistory() []domain.PredictionRecord {
	out := make([]domain.PredictionRecord, len(p.history))
	copy(out, p.history)
	return out
}

func (p *Predictor) snapshotCalibration() []float64 {
	out := make([]float64, len(p.calibration))
	copy(out, p.calibration)
	return out
}

func (p *Predictor) restore(history []domain.PredictionRecord, calibration []float64) {
	p.history = make([]domain.PredictionRecord, len(history))
	copy(p.history, history)
	p.calibration = make([]float64, len(calibration))
	copy(p.calibration, calibration)
	if len(p.calibration) > p.windowSize {
		p.calibration = p.calibration[len(p.calibration)-p.windowSize:]
	}
}
