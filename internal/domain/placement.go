package domain

import (
	"fmt"
	"strings"
)

// Placement names a garment print area understood by the print vendor.
type Placement string

const (
	PlacementFront       Placement = "front"
	PlacementBack        Placement = "back"
	PlacementLeftSleeve  Placement = "left_sleeve"
	PlacementRightSleeve Placement = "right_sleeve"
)

var placementOrder = []Placement{
	PlacementFront,
	PlacementBack,
	PlacementLeftSleeve,
	PlacementRightSleeve,
}

// Placements returns every placement in submission order.
func Placements() []Placement {
	return append([]Placement(nil), placementOrder...)
}

// ParsePlacement maps free-form input onto a known placement.
func ParsePlacement(raw string) (Placement, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for _, p := range placementOrder {
		if string(p) == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlacement, raw)
}

// Index returns the position of p in submission order, or -1.
func (p Placement) Index() int {
	for i, candidate := range placementOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p Placement) String() string {
	return string(p)
}
