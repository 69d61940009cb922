package learner

import (
	"fmt"
	"testing"

	"github.com/openclaip/claip/internal/domain"
)

func TestSubjectProgress_MonotoneAndBounded(t *testing.T) {
	rules := domain.DefaultStaticRules()
	p := newSubjectProgress(rules.MinCompletionFloor)

	if p.completion != rules.MinCompletionFloor {
		t.Fatalf("new progress starts at floor, got %v", p.completion)
	}

	prev := p.completion
	for i := 0; i < 500; i++ {
		p.update(rules, []string{fmt.Sprintf("src-%d", i%15)})
		if p.completion < prev {
			t.Fatalf("completion decreased at item %d: %v < %v", i, p.completion, prev)
		}
		if p.completion > rules.MaxCompletionCap {
			t.Fatalf("completion exceeded cap: %v", p.completion)
		}
		if p.completion < rules.MinCompletionFloor {
			t.Fatalf("completion below floor: %v", p.completion)
		}
		prev = p.completion
	}

	// Saturates at, never above, the cap for large item counts.
	if p.completion != rules.MaxCompletionCap {
		t.Fatalf("completion = %v; want cap %v after 500 items", p.completion, rules.MaxCompletionCap)
	}
}

func TestSubjectProgress_DiversityAccelerates(t *testing.T) {
	rules := domain.DefaultStaticRules()

	single := newSubjectProgress(rules.MinCompletionFloor)
	diverse := newSubjectProgress(rules.MinCompletionFloor)

	for i := 0; i < 3; i++ {
		single.update(rules, []string{"only"})
		diverse.update(rules, []string{fmt.Sprintf("src-%d", i)})
	}

	if diverse.completion <= single.completion {
		t.Fatalf("diverse sources should accelerate completion: %v <= %v",
			diverse.completion, single.completion)
	}
}

func TestSubjectProgress_SnapshotRestore(t *testing.T) {
	rules := domain.DefaultStaticRules()
	p := newSubjectProgress(rules.MinCompletionFloor)
	p.update(rules, []string{"b", "a"})
	p.update(rules, []string{"a", "c"})

	snap := p.snapshot()
	if snap.SeenItems != 2 {
		t.Fatalf("SeenItems = %d; want 2", snap.SeenItems)
	}
	want := []string{"a", "b", "c"}
	if len(snap.DistinctSources) != len(want) {
		t.Fatalf("DistinctSources = %v; want %v", snap.DistinctSources, want)
	}
	for i, id := range want {
		if snap.DistinctSources[i] != id {
			t.Fatalf("DistinctSources = %v; want sorted %v", snap.DistinctSources, want)
		}
	}

	restored := restoreSubjectProgress(snap)
	if restored.seenItems != p.seenItems || restored.completion != p.completion {
		t.Fatal("restored progress differs")
	}
	if len(restored.sources) != len(p.sources) {
		t.Fatal("restored source set differs")
	}
}
