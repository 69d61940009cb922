package learner

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/openclaip/claip/internal/domain"
)

func testRecord(subject string, prob float64) domain.PredictionRecord {
	return domain.PredictionRecord{
		Subject:   subject,
		Prob:      prob,
		Timestamp: time.Now().UTC(),
	}
}

func TestPredictor_Predict(t *testing.T) {
	prior := NewGeneralizedPrior(0.1)
	p := NewPredictor(prior, 256)

	// No evidence: the raw prior, unclamped.
	if got := p.Predict("s", nil, nil); got != 0.5 {
		t.Fatalf("Predict without evidence = %v; want raw prior 0.5", got)
	}

	ev := 0.3
	got := p.Predict("s", nil, &ev)
	want := 0.65*0.5 + 0.35*0.3
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Predict = %v; want %v", got, want)
	}

	// Blend is clamped into [0.01, 0.99].
	low := -2.0
	if got := p.Predict("s", nil, &low); got != 0.01 {
		t.Fatalf("Predict = %v; want clamp floor 0.01", got)
	}
	high := 3.0
	if got := p.Predict("s", nil, &high); got != 0.99 {
		t.Fatalf("Predict = %v; want clamp ceiling 0.99", got)
	}
}

func TestPredictor_ResolveIdempotent(t *testing.T) {
	p := NewPredictor(NewGeneralizedPrior(0.1), 256)
	idx := p.LogPrediction(testRecord("s", 0.43))

	changed, err := p.Resolve(idx, 0)
	if err != nil || !changed {
		t.Fatalf("Resolve = %v, %v; want true, nil", changed, err)
	}

	rec, err := p.Record(idx)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Correct == nil || !*rec.Correct {
		t.Fatal("prob 0.43 with observed 0 should be correct")
	}
	wantBrier := 0.43 * 0.43
	if rec.Brier == nil || math.Abs(*rec.Brier-wantBrier) > 1e-12 {
		t.Fatalf("Brier = %v; want %v", rec.Brier, wantBrier)
	}

	// Second resolve with the opposite outcome changes nothing.
	changed, err = p.Resolve(idx, 1)
	if err != nil || changed {
		t.Fatalf("second Resolve = %v, %v; want false, nil", changed, err)
	}
	rec2, _ := p.Record(idx)
	if *rec2.Correct != *rec.Correct || *rec2.Brier != *rec.Brier {
		t.Fatal("resolved record must be immutable")
	}

	if _, err := p.Resolve(99, 1); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("Resolve(99) error = %v; want ErrPredictionNotFound", err)
	}
}

func TestPredictor_MeanBrierWindow(t *testing.T) {
	p := NewPredictor(NewGeneralizedPrior(0.1), 4)

	if _, ok := p.MeanBrier(); ok {
		t.Fatal("MeanBrier should be unavailable before any resolution")
	}

	// Six resolutions with known probabilities; the window keeps the
	// last four Brier scores only.
	probs := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4}
	for _, prob := range probs {
		idx := p.LogPrediction(testRecord("s", prob))
		if _, err := p.Resolve(idx, 1); err != nil {
			t.Fatal(err)
		}
	}

	mean, ok := p.MeanBrier()
	if !ok {
		t.Fatal("MeanBrier should be available")
	}
	want := (0.3*0.3 + 0.4*0.4 + 0.5*0.5 + 0.6*0.6) / 4
	if math.Abs(mean-want) > 1e-12 {
		t.Fatalf("MeanBrier = %v; want %v over the last 4 only", mean, want)
	}

	resolved, correct := p.ResolvedCounts()
	if resolved != 6 {
		t.Fatalf("resolved = %d; want 6", resolved)
	}
	// prob >= 0.5 with observed 1 is correct: probs 0.9..0.5.
	if correct != 5 {
		t.Fatalf("correct = %d; want 5", correct)
	}
}
