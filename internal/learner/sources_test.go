package learner

import (
	"errors"
	"math"
	"testing"
)

func TestSourceGraph_AddAndFindByName(t *testing.T) {
	g := NewSourceGraph()

	id := g.Add("NOAA", nil, 0.5)
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	got, ok := g.FindByName("NOAA")
	if !ok || got != id {
		t.Fatalf("FindByName = %q, %v; want %q, true", got, ok, id)
	}

	// Matching is exact and case-sensitive.
	if _, ok := g.FindByName("noaa"); ok {
		t.Fatal("FindByName should not match different case")
	}

	// Add does not deduplicate by name.
	id2 := g.Add("NOAA", nil, 0.5)
	if id2 == id {
		t.Fatal("expected a distinct id for the second source")
	}
	if g.Len() != 2 {
		t.Fatalf("Len = %d; want 2", g.Len())
	}
}

func TestSourceGraph_Get_Unknown(t *testing.T) {
	g := NewSourceGraph()
	if _, err := g.Get("missing"); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Get error = %v; want ErrSourceNotFound", err)
	}
	if _, err := g.InheritedTrust("missing"); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("InheritedTrust error = %v; want ErrSourceNotFound", err)
	}
}

func TestSourceGraph_InheritedTrust_Blend(t *testing.T) {
	g := NewSourceGraph()

	parentID := g.Add("agency", nil, 0.2)
	childID := g.Add("field-office", &parentID, 0.8)

	got, err := g.InheritedTrust(childID)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.7*0.8 + 0.3*0.2
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("InheritedTrust = %v; want %v", got, want)
	}
}

func TestSourceGraph_InheritedTrust_HopLimit(t *testing.T) {
	g := NewSourceGraph()

	// Six ancestors with zero trust; the leaf has trust 1.0. Each hop
	// multiplies by 0.7, and only four hops may be taken.
	var parent *string
	for i := 0; i < 6; i++ {
		id := g.Add("ancestor", parent, 0)
		parent = &id
	}
	leaf := g.Add("leaf", parent, 1.0)

	got, err := g.InheritedTrust(leaf)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Pow(0.7, 4)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("InheritedTrust = %v; want %v (4 hops only)", got, want)
	}
}

func TestSourceGraph_Skepticism(t *testing.T) {
	g := NewSourceGraph()

	if s, err := g.Skepticism(nil); err != nil || s != 1.0 {
		t.Fatalf("Skepticism(nil) = %v, %v; want 1.0, nil", s, err)
	}

	id := g.Add("NOAA", nil, 0.5)
	s, err := g.Skepticism([]string{id})
	if err != nil {
		t.Fatal(err)
	}
	want := 1.0 - (0.9*0.5 + 0.1)
	if math.Abs(s-want) > 1e-12 {
		t.Fatalf("Skepticism = %v; want %v", s, want)
	}

	// More independent sources means less skepticism.
	id2 := g.Add("WXBlog", nil, 0.5)
	s2, err := g.Skepticism([]string{id, id2})
	if err != nil {
		t.Fatal(err)
	}
	if s2 >= s {
		t.Fatalf("skepticism should drop with corroboration: %v >= %v", s2, s)
	}

	if _, err := g.Skepticism([]string{"missing"}); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Skepticism error = %v; want ErrSourceNotFound", err)
	}
}
