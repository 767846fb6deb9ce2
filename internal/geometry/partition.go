package geometry

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"mockupgen/internal/domain"
	"mockupgen/internal/infra"
)

// MismatchPolicy decides what happens to a canvas whose size differs from
// the template.
type MismatchPolicy string

const (
	MismatchStrict   MismatchPolicy = "strict"
	MismatchResample MismatchPolicy = "resample"
)

// ParseMismatchPolicy maps configuration input onto a MismatchPolicy.
func ParseMismatchPolicy(raw string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case MismatchStrict:
		return MismatchStrict, nil
	case MismatchResample:
		return MismatchResample, nil
	default:
		return "", fmt.Errorf("%w: unknown mismatch policy %q", ErrInvalidTemplate, raw)
	}
}

// Options configures a Partitioner.
type Options struct {
	Template Template
	Policy   MismatchPolicy
	Logger   *infra.Logger
}

// Partitioner cuts a canvas into per-placement images.
type Partitioner struct {
	template Template
	layout   []Region
	policy   MismatchPolicy
	logger   *infra.Logger
}

// Partition is the output of one partitioning run. Canvas is the canvas the
// regions were cut from; it differs from the input only when Resampled is set.
type Partition struct {
	Canvas    image.Image
	Resampled bool
	Scheme    Scheme
	images    map[domain.Placement]*image.NRGBA
}

// NewPartitioner validates the template and returns a ready partitioner.
func NewPartitioner(opts Options) (*Partitioner, error) {
	layout, err := opts.Template.Layout()
	if err != nil {
		return nil, err
	}
	policy := opts.Policy
	if policy == "" {
		policy = MismatchStrict
	}
	if policy != MismatchStrict && policy != MismatchResample {
		return nil, fmt.Errorf("%w: unknown mismatch policy %q", ErrInvalidTemplate, policy)
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Partitioner{
		template: opts.Template,
		layout:   layout,
		policy:   policy,
		logger:   logger,
	}, nil
}

// Template returns the template the partitioner was built with.
func (p *Partitioner) Template() Template {
	return p.template
}

// Regions returns the validated layout in submission order.
func (p *Partitioner) Regions() []Region {
	return append([]Region(nil), p.layout...)
}

// Policy returns the mismatch policy in effect.
func (p *Partitioner) Policy() MismatchPolicy {
	return p.policy
}

// CheckSize reports whether a canvas of the given size can be partitioned.
// Mismatched sizes pass only under MismatchResample.
func (p *Partitioner) CheckSize(width, height int) error {
	if width == p.template.Width && height == p.template.Height {
		return nil
	}
	if p.policy == MismatchResample && width > 0 && height > 0 {
		return nil
	}
	return &InputDimensionError{
		Width:      width,
		Height:     height,
		WantWidth:  p.template.Width,
		WantHeight: p.template.Height,
	}
}

// Normalize checks the canvas size. Under MismatchResample a mismatched
// canvas is resampled with a Lanczos filter and the second return is true.
func (p *Partitioner) Normalize(canvas image.Image) (image.Image, bool, error) {
	if canvas == nil {
		return nil, false, errors.New("geometry: nil canvas")
	}
	size := canvas.Bounds().Size()
	if size.X == p.template.Width && size.Y == p.template.Height {
		return canvas, false, nil
	}
	if err := p.CheckSize(size.X, size.Y); err != nil {
		return nil, false, err
	}
	p.logger.Warn().
		Int("width", size.X).
		Int("height", size.Y).
		Int("want_width", p.template.Width).
		Int("want_height", p.template.Height).
		Msg("canvas size mismatch, resampling")
	return imaging.Resize(canvas, p.template.Width, p.template.Height, imaging.Lanczos), true, nil
}

// Partition extracts every placement image from canvas. Nothing is cut when
// the canvas fails the size check.
func (p *Partitioner) Partition(canvas image.Image) (*Partition, error) {
	normalized, resampled, err := p.Normalize(canvas)
	if err != nil {
		return nil, err
	}
	origin := normalized.Bounds().Min
	images := make(map[domain.Placement]*image.NRGBA, len(p.layout))
	for _, region := range p.layout {
		if region.Derived() {
			continue
		}
		images[region.Placement] = imaging.Crop(normalized, region.Rect.Add(origin))
	}
	for _, region := range p.layout {
		if !region.Derived() {
			continue
		}
		src, ok := images[region.MirrorOf]
		if !ok {
			return nil, fmt.Errorf("%w: %s mirrors missing %s", ErrInvalidTemplate, region.Placement, region.MirrorOf)
		}
		images[region.Placement] = imaging.FlipH(src)
	}
	p.logger.Debug().
		Str("scheme", string(p.template.Scheme)).
		Bool("resampled", resampled).
		Msg("canvas partitioned")
	return &Partition{
		Canvas:    normalized,
		Resampled: resampled,
		Scheme:    p.template.Scheme,
		images:    images,
	}, nil
}

// Preview normalizes canvas and draws the partition overlay on a copy.
func (p *Partitioner) Preview(canvas image.Image) (*image.NRGBA, error) {
	normalized, _, err := p.Normalize(canvas)
	if err != nil {
		return nil, err
	}
	return Preview(normalized, p.layout), nil
}

// Image returns the image for placement, or nil.
func (p *Partition) Image(placement domain.Placement) *image.NRGBA {
	if p == nil {
		return nil
	}
	return p.images[placement]
}

// Len reports how many placement images the partition holds.
func (p *Partition) Len() int {
	if p == nil {
		return 0
	}
	return len(p.images)
}
