package storage

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

// exifOrientation6 is an APP1 segment carrying Orientation=6 (rotate 90 CW).
var exifOrientation6 = []byte{
	0xFF, 0xE1, 0x00, 0x22,
	'E', 'x', 'i', 'f', 0x00, 0x00,
	'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
	0x00, 0x01,
	0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

func rotatedJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	raw := buf.Bytes()
	out := append([]byte{}, raw[:2]...)
	out = append(out, exifOrientation6...)
	return append(out, raw[2:]...)
}

func TestDecodeImageKeepsStoredOrientation(t *testing.T) {
	data := rotatedJPEG(t, 60, 40)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	got := img.Bounds().Size()
	if got.X != 60 || got.Y != 40 {
		t.Fatalf("decoded size = %dx%d, want 60x40", got.X, got.Y)
	}
	if got.X != cfg.Width || got.Y != cfg.Height {
		t.Fatalf("decoded size %v differs from upload check %dx%d", got, cfg.Width, cfg.Height)
	}
}
