// Package encoder turns placement images into self-describing PNG data URIs.
package encoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/vincent-petithory/dataurl"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
)

// MediaTypePNG is the only media type produced.
const MediaTypePNG = "image/png"

// Asset is one encoded placement image.
type Asset struct {
	Placement domain.Placement
	MediaType string
	DataURI   string
}

// Encode serializes img as lossless PNG and wraps it in a base64 data URI.
// Identical pixels always produce identical output.
func Encode(placement domain.Placement, img image.Image) (Asset, error) {
	if img == nil {
		return Asset{}, fmt.Errorf("encoder: %s: nil image", placement)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return Asset{}, fmt.Errorf("encoder: %s: png: %w", placement, err)
	}
	return Asset{
		Placement: placement,
		MediaType: MediaTypePNG,
		DataURI:   dataurl.New(buf.Bytes(), MediaTypePNG).String(),
	}, nil
}

// Decode reverses Encode.
func Decode(asset Asset) (image.Image, error) {
	parsed, err := dataurl.DecodeString(asset.DataURI)
	if err != nil {
		return nil, fmt.Errorf("encoder: %s: parse data uri: %w", asset.Placement, err)
	}
	if parsed.ContentType() != MediaTypePNG {
		return nil, fmt.Errorf("encoder: %s: unexpected media type %q", asset.Placement, parsed.ContentType())
	}
	img, err := png.Decode(bytes.NewReader(parsed.Data))
	if err != nil {
		return nil, fmt.Errorf("encoder: %s: png: %w", asset.Placement, err)
	}
	return img, nil
}

// Submission is the complete, ordered set of encoded placements for one
// render job.
type Submission struct {
	assets []Asset
}

// NewSubmission orders assets canonically and rejects duplicate, unknown or
// missing placements.
func NewSubmission(assets ...Asset) (Submission, error) {
	order := domain.Placements()
	slots := make([]Asset, len(order))
	seen := make([]bool, len(order))
	for _, asset := range assets {
		idx := asset.Placement.Index()
		if idx < 0 {
			return Submission{}, fmt.Errorf("%w: %q", domain.ErrUnknownPlacement, asset.Placement)
		}
		if seen[idx] {
			return Submission{}, fmt.Errorf("%w: duplicate %s", domain.ErrIncompleteBundle, asset.Placement)
		}
		seen[idx] = true
		slots[idx] = asset
	}
	var missing []domain.Placement
	for i, ok := range seen {
		if !ok {
			missing = append(missing, order[i])
		}
	}
	if len(missing) > 0 {
		return Submission{}, fmt.Errorf("%w: missing %v", domain.ErrIncompleteBundle, missing)
	}
	return Submission{assets: slots}, nil
}

// Assets returns the encoded placements in submission order.
func (s Submission) Assets() []Asset {
	return append([]Asset(nil), s.assets...)
}

// Empty reports whether the submission was never built.
func (s Submission) Empty() bool {
	return len(s.assets) == 0
}

// EncodeSubmission encodes every placement of a partition.
func EncodeSubmission(part *geometry.Partition) (Submission, error) {
	if part == nil {
		return Submission{}, errors.New("encoder: nil partition")
	}
	assets := make([]Asset, 0, len(domain.Placements()))
	for _, placement := range domain.Placements() {
		img := part.Image(placement)
		if img == nil {
			return Submission{}, fmt.Errorf("%w: missing %s", domain.ErrIncompleteBundle, placement)
		}
		asset, err := Encode(placement, img)
		if err != nil {
			return Submission{}, err
		}
		assets = append(assets, asset)
	}
	return NewSubmission(assets...)
}
