package geometry

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"mockupgen/internal/domain"
)

// Scheme selects how placement images are derived from the canvas.
type Scheme string

const (
	// SchemeDirectCrop cuts every placement from its own canvas rectangle.
	SchemeDirectCrop Scheme = "direct"
	// SchemeMirror cuts only the front; back is its horizontal mirror and the
	// sleeves are full-height strips along the canvas edges.
	SchemeMirror Scheme = "mirror"
)

// ParseScheme maps configuration input onto a Scheme. There is no default:
// callers must choose one.
func ParseScheme(raw string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(raw))) {
	case SchemeDirectCrop:
		return SchemeDirectCrop, nil
	case SchemeMirror:
		return SchemeMirror, nil
	default:
		return "", fmt.Errorf("%w: unknown scheme %q", ErrInvalidTemplate, raw)
	}
}

// Region is a placement rectangle in canvas coordinates. MirrorOf is set when
// the placement is derived from another placement's crop instead of its own
// canvas area.
type Region struct {
	Placement domain.Placement
	Rect      image.Rectangle
	MirrorOf  domain.Placement
}

// Derived reports whether the region is computed from another crop.
func (r Region) Derived() bool {
	return r.MirrorOf != ""
}

// Template describes the expected canvas and the placement geometry for one
// product template.
type Template struct {
	Width  int
	Height int
	Scheme Scheme

	// Areas holds the four rectangles used by SchemeDirectCrop.
	Areas map[domain.Placement]image.Rectangle

	// Front, SleeveWidth and SleeveFraction drive SchemeMirror. SleeveWidth
	// wins when set; otherwise the width is SleeveFraction of the canvas width.
	Front          image.Rectangle
	SleeveWidth    int
	SleeveFraction float64
}

// DefaultTemplate returns the 4800x5100 all-over-print shirt template.
func DefaultTemplate() Template {
	front := image.Rect(600, 900, 2400, 4200)
	return Template{
		Width:  4800,
		Height: 5100,
		Scheme: SchemeDirectCrop,
		Areas: map[domain.Placement]image.Rectangle{
			domain.PlacementFront:       front,
			domain.PlacementBack:        image.Rect(2400, 900, 4200, 4200),
			domain.PlacementLeftSleeve:  image.Rect(0, 900, 600, 3300),
			domain.PlacementRightSleeve: image.Rect(4200, 900, 4800, 3300),
		},
		Front:          front,
		SleeveFraction: 0.125,
	}
}

// Bounds returns the expected canvas rectangle.
func (t Template) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width, t.Height)
}

// ResolvedSleeveWidth returns the sleeve strip width used by SchemeMirror.
func (t Template) ResolvedSleeveWidth() int {
	if t.SleeveWidth > 0 {
		return t.SleeveWidth
	}
	return int(math.Round(float64(t.Width) * t.SleeveFraction))
}

// Layout validates the template and returns its regions in submission order.
func (t Template) Layout() ([]Region, error) {
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas size %dx%d", ErrInvalidTemplate, t.Width, t.Height)
	}
	switch t.Scheme {
	case SchemeDirectCrop:
		return t.directLayout()
	case SchemeMirror:
		return t.mirrorLayout()
	default:
		return nil, fmt.Errorf("%w: unknown scheme %q", ErrInvalidTemplate, t.Scheme)
	}
}

func (t Template) directLayout() ([]Region, error) {
	bounds := t.Bounds()
	regions := make([]Region, 0, len(domain.Placements()))
	for _, placement := range domain.Placements() {
		rect, ok := t.Areas[placement]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s area", ErrInvalidTemplate, placement)
		}
		if err := checkRect(placement, rect, bounds); err != nil {
			return nil, err
		}
		regions = append(regions, Region{Placement: placement, Rect: rect})
	}
	return regions, nil
}

func (t Template) mirrorLayout() ([]Region, error) {
	bounds := t.Bounds()
	if err := checkRect(domain.PlacementFront, t.Front, bounds); err != nil {
		return nil, err
	}
	sleeve := t.ResolvedSleeveWidth()
	if sleeve <= 0 || sleeve*2 > t.Width {
		return nil, fmt.Errorf("%w: sleeve width %d for canvas width %d", ErrInvalidTemplate, sleeve, t.Width)
	}
	return []Region{
		{Placement: domain.PlacementFront, Rect: t.Front},
		{Placement: domain.PlacementBack, Rect: t.Front, MirrorOf: domain.PlacementFront},
		{Placement: domain.PlacementLeftSleeve, Rect: image.Rect(0, 0, sleeve, t.Height)},
		{Placement: domain.PlacementRightSleeve, Rect: image.Rect(t.Width-sleeve, 0, t.Width, t.Height)},
	}, nil
}

func checkRect(placement domain.Placement, rect, bounds image.Rectangle) error {
	if rect.Empty() {
		return fmt.Errorf("%w: %s area %v is empty", ErrInvalidTemplate, placement, rect)
	}
	if !rect.In(bounds) {
		return fmt.Errorf("%w: %s area %v outside canvas %v", ErrInvalidTemplate, placement, rect, bounds)
	}
	return nil
}

// ParseRect parses "left,top,right,bottom".
func ParseRect(raw string) (image.Rectangle, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("%w: rectangle %q needs 4 values", ErrInvalidTemplate, raw)
	}
	var v [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("%w: rectangle %q: %v", ErrInvalidTemplate, raw, err)
		}
		v[i] = n
	}
	if v[2] <= v[0] || v[3] <= v[1] {
		return image.Rectangle{}, fmt.Errorf("%w: rectangle %q is inverted or empty", ErrInvalidTemplate, raw)
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}
