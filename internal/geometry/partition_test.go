package geometry

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"mockupgen/internal/domain"
)

func smallTemplate(scheme Scheme) Template {
	return Template{
		Width:  48,
		Height: 51,
		Scheme: scheme,
		Areas: map[domain.Placement]image.Rectangle{
			domain.PlacementFront:       image.Rect(6, 9, 24, 42),
			domain.PlacementBack:        image.Rect(24, 9, 42, 42),
			domain.PlacementLeftSleeve:  image.Rect(0, 9, 6, 33),
			domain.PlacementRightSleeve: image.Rect(42, 9, 48, 33),
		},
		Front:       image.Rect(6, 9, 24, 42),
		SleeveWidth: 6,
	}
}

func patternCanvas(rect image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 5),
				G: uint8(y * 3),
				B: uint8(x*7 + y*11),
				A: 255,
			})
		}
	}
	return img
}

func newTestPartitioner(t *testing.T, tpl Template, policy MismatchPolicy) *Partitioner {
	t.Helper()
	p, err := NewPartitioner(Options{Template: tpl, Policy: policy})
	if err != nil {
		t.Fatalf("NewPartitioner: %v", err)
	}
	return p
}

func TestPartitionDirectCropMatchesRegions(t *testing.T) {
	tpl := smallTemplate(SchemeDirectCrop)
	canvas := patternCanvas(tpl.Bounds())
	part, err := newTestPartitioner(t, tpl, MismatchStrict).Partition(canvas)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if part.Resampled {
		t.Fatalf("expected no resample")
	}
	if part.Len() != 4 {
		t.Fatalf("expected 4 images, got %d", part.Len())
	}
	for placement, rect := range tpl.Areas {
		img := part.Image(placement)
		if img == nil {
			t.Fatalf("missing %s", placement)
		}
		if img.Bounds() != image.Rect(0, 0, rect.Dx(), rect.Dy()) {
			t.Fatalf("%s bounds = %v, want %dx%d at origin", placement, img.Bounds(), rect.Dx(), rect.Dy())
		}
		for y := 0; y < rect.Dy(); y++ {
			for x := 0; x < rect.Dx(); x++ {
				got := img.NRGBAAt(x, y)
				want := canvas.NRGBAAt(rect.Min.X+x, rect.Min.Y+y)
				if got != want {
					t.Fatalf("%s pixel (%d,%d) = %v, want %v", placement, x, y, got, want)
				}
			}
		}
	}
}

func TestPartitionHandlesOffsetCanvas(t *testing.T) {
	tpl := smallTemplate(SchemeDirectCrop)
	big := patternCanvas(image.Rect(0, 0, 60, 60))
	canvas := big.SubImage(image.Rect(5, 4, 53, 55)).(*image.NRGBA)

	part, err := newTestPartitioner(t, tpl, MismatchStrict).Partition(canvas)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	front := part.Image(domain.PlacementFront)
	got := front.NRGBAAt(0, 0)
	want := big.NRGBAAt(5+6, 4+9)
	if got != want {
		t.Fatalf("front origin pixel = %v, want %v", got, want)
	}
}

func TestPartitionMirrorDerivesBackAndSleeves(t *testing.T) {
	tpl := smallTemplate(SchemeMirror)
	canvas := patternCanvas(tpl.Bounds())
	part, err := newTestPartitioner(t, tpl, MismatchStrict).Partition(canvas)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	front := part.Image(domain.PlacementFront)
	back := part.Image(domain.PlacementBack)
	if front.Bounds() != back.Bounds() {
		t.Fatalf("back bounds %v differ from front %v", back.Bounds(), front.Bounds())
	}
	w := front.Bounds().Dx()
	for y := 0; y < front.Bounds().Dy(); y++ {
		for x := 0; x < w; x++ {
			if back.NRGBAAt(x, y) != front.NRGBAAt(w-1-x, y) {
				t.Fatalf("back (%d,%d) is not the mirror of front", x, y)
			}
		}
	}

	left := part.Image(domain.PlacementLeftSleeve)
	right := part.Image(domain.PlacementRightSleeve)
	for name, img := range map[string]*image.NRGBA{"left": left, "right": right} {
		if img.Bounds().Dx() != 6 || img.Bounds().Dy() != tpl.Height {
			t.Fatalf("%s sleeve = %v, want 6x%d", name, img.Bounds(), tpl.Height)
		}
	}
	for y := 0; y < tpl.Height; y++ {
		if left.NRGBAAt(0, y) != canvas.NRGBAAt(0, y) {
			t.Fatalf("left sleeve is not flush with the left edge at row %d", y)
		}
		if right.NRGBAAt(5, y) != canvas.NRGBAAt(tpl.Width-1, y) {
			t.Fatalf("right sleeve is not flush with the right edge at row %d", y)
		}
	}
}

func TestPartitionStrictRejectsMismatch(t *testing.T) {
	tpl := smallTemplate(SchemeDirectCrop)
	part, err := newTestPartitioner(t, tpl, MismatchStrict).Partition(patternCanvas(image.Rect(0, 0, 40, 51)))
	if part != nil {
		t.Fatalf("expected no partition on mismatch")
	}
	var dimErr *InputDimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected InputDimensionError, got %v", err)
	}
	if dimErr.Width != 40 || dimErr.WantWidth != 48 || dimErr.Height != 51 {
		t.Fatalf("unexpected dimensions in %+v", dimErr)
	}
	if !errors.Is(err, domain.ErrInvalidCanvas) {
		t.Fatalf("expected error to match ErrInvalidCanvas")
	}
}

func TestPartitionResampleNormalizesCanvas(t *testing.T) {
	tpl := smallTemplate(SchemeDirectCrop)
	part, err := newTestPartitioner(t, tpl, MismatchResample).Partition(patternCanvas(image.Rect(0, 0, 96, 102)))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if !part.Resampled {
		t.Fatalf("expected Resampled to be set")
	}
	if got := part.Canvas.Bounds().Size(); got != image.Pt(48, 51) {
		t.Fatalf("resampled canvas size = %v", got)
	}
	if part.Len() != 4 {
		t.Fatalf("expected 4 images, got %d", part.Len())
	}
}

func TestPartitionRejectsNilCanvas(t *testing.T) {
	if _, err := newTestPartitioner(t, smallTemplate(SchemeDirectCrop), MismatchStrict).Partition(nil); err == nil {
		t.Fatalf("expected error for nil canvas")
	}
}

func TestNewPartitionerRejectsUnknownPolicy(t *testing.T) {
	_, err := NewPartitioner(Options{Template: smallTemplate(SchemeDirectCrop), Policy: "stretch"})
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
}
