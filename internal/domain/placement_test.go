package domain

import (
	"errors"
	"testing"
)

func TestParsePlacementNormalizesInput(t *testing.T) {
	cases := map[string]Placement{
		"front":        PlacementFront,
		" BACK ":       PlacementBack,
		"left-sleeve":  PlacementLeftSleeve,
		"Right Sleeve": PlacementRightSleeve,
	}
	for raw, want := range cases {
		got, err := ParsePlacement(raw)
		if err != nil {
			t.Fatalf("ParsePlacement(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePlacement(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParsePlacementRejectsUnknown(t *testing.T) {
	_, err := ParsePlacement("collar")
	if !errors.Is(err, ErrUnknownPlacement) {
		t.Fatalf("expected ErrUnknownPlacement, got %v", err)
	}
}

func TestPlacementsOrderIsStable(t *testing.T) {
	got := Placements()
	want := []Placement{PlacementFront, PlacementBack, PlacementLeftSleeve, PlacementRightSleeve}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] || got[i].Index() != i {
			t.Fatalf("placement[%d] = %q (index %d), want %q", i, got[i], got[i].Index(), want[i])
		}
	}
	got[0] = "mutated"
	if Placements()[0] != PlacementFront {
		t.Fatalf("Placements must return a copy")
	}
}
