package geometry

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mockupgen/internal/domain"
)

const (
	outlineWidth = 6
	labelInset   = 10
)

var placementColors = map[domain.Placement]color.NRGBA{
	domain.PlacementFront:       {R: 0, G: 128, B: 0, A: 255},
	domain.PlacementBack:        {R: 0, G: 0, B: 255, A: 255},
	domain.PlacementLeftSleeve:  {R: 255, G: 0, B: 0, A: 255},
	domain.PlacementRightSleeve: {R: 255, G: 165, B: 0, A: 255},
}

// PlacementColor returns the overlay color for placement.
func PlacementColor(placement domain.Placement) color.NRGBA {
	if c, ok := placementColors[placement]; ok {
		return c
	}
	return color.NRGBA{A: 255}
}

// PlacementLabel returns the upper-case overlay caption for placement.
func PlacementLabel(placement domain.Placement) string {
	return cases.Upper(language.English).String(strings.ReplaceAll(string(placement), "_", " "))
}

// Preview returns a copy of canvas with each region outlined and labelled.
// Derived regions have no canvas area of their own and are skipped. The input
// is never modified.
func Preview(canvas image.Image, regions []Region) *image.NRGBA {
	out := imaging.Clone(canvas)
	face := basicfont.Face7x13
	for _, region := range regions {
		if region.Derived() {
			continue
		}
		c := PlacementColor(region.Placement)
		drawOutline(out, region.Rect, c)
		drawer := font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(region.Rect.Min.X+labelInset, region.Rect.Min.Y+labelInset+face.Ascent),
		}
		drawer.DrawString(PlacementLabel(region.Placement))
	}
	return out
}

func drawOutline(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	w := outlineWidth
	if r.Dx() < 2*w || r.Dy() < 2*w {
		w = 1
	}
	src := image.NewUniform(c)
	strips := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, strip := range strips {
		draw.Draw(dst, strip.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
