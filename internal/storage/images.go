package storage

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DecodeImage reads any format imaging understands. EXIF orientation is not
// applied: the stored pixel grid is what the template rectangles address, and
// it matches what image.DecodeConfig reports at upload time.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("storage: decode image: %w", err)
	}
	return img, nil
}

// EncodeImage writes img to w in the format implied by name.
func EncodeImage(w io.Writer, name string, img image.Image) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("storage: %s: %w", name, err)
	}
	if err := imaging.Encode(w, img, format); err != nil {
		return fmt.Errorf("storage: encode %s: %w", name, err)
	}
	return nil
}

// ReadImageFile opens and decodes the image at path.
func ReadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeImage(f)
}

// WriteImageFile encodes img to path, creating parent directories.
func WriteImageFile(path string, img image.Image) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("storage: %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", path, err)
	}
	if err := EncodeImage(f, path, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", path, err)
	}
	return nil
}

// Paths addresses images by plain filesystem path. The CLI uses it where the
// service uses a FileStore.
type Paths struct{}

func (Paths) ReadImage(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadImageFile(path)
}

func (Paths) WriteImage(ctx context.Context, path string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := WriteImageFile(path, img); err != nil {
		return "", err
	}
	return path, nil
}
