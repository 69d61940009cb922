package learner

import (
	"math"
	"testing"
)

func TestGeneralizedPrior_DefaultsAndNoOp(t *testing.T) {
	g := NewGeneralizedPrior(0.1)

	if got := g.Prior("unseen"); got != 0.5 {
		t.Fatalf("Prior(unseen) = %v; want 0.5", got)
	}

	g.UpdateWithObservation("subject", nil)
	if got := g.Prior("subject"); got != 0.5 {
		t.Fatalf("nil outcome must be a no-op, got %v", got)
	}
}

func TestGeneralizedPrior_EWMA(t *testing.T) {
	g := NewGeneralizedPrior(0.1)

	labels := []float64{0, 1, 0}
	for _, l := range labels {
		l := l
		g.UpdateWithObservation("weather.rain_tomorrow", &l)
	}

	// v0=0.5; v1=0.9*0.5=0.45; v2=0.9*0.45+0.1=0.505; v3=0.9*0.505=0.4545
	want := 0.4545
	if got := g.Prior("weather.rain_tomorrow"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Prior = %v; want %v", got, want)
	}
}

func TestGeneralizedPrior_SnapshotRestore(t *testing.T) {
	g := NewGeneralizedPrior(0.1)
	one := 1.0
	g.UpdateWithObservation("a", &one)
	g.UpdateWithObservation("b", &one)

	snap := g.snapshot()

	g2 := NewGeneralizedPrior(0.1)
	g2.restore(snap)
	if g2.Prior("a") != g.Prior("a") || g2.Prior("b") != g.Prior("b") {
		t.Fatal("restored priors differ from snapshot")
	}

	// The snapshot must not alias live entries.
	g2.UpdateWithObservation("a", &one)
	if g2.Prior("a") == g.Prior("a") {
		t.Fatal("restore should deep-copy entries")
	}
}
