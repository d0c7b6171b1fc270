package capture

import (
	"image/png"
	"os"
	"testing"
)

func TestSavePNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pixels := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}

	path, err := SavePNG(dir, pixels, 2, 2)
	if err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding screenshot: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	if r != 0xffff {
		t.Errorf("top-left pixel should be red, got r=%d", r)
	}
}

func TestSavePNGRejectsShortBuffer(t *testing.T) {
	if _, err := SavePNG(t.TempDir(), []byte{0, 0, 0}, 2, 2); err == nil {
		t.Fatal("expected error for short pixel buffer")
	}
}
