package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestGetOrLoadCachesByPath(t *testing.T) {
	data := pngBytes(t, 4, 4)
	var reads atomic.Int32
	cache := NewCache()
	read := func() ([]byte, error) {
		reads.Add(1)
		return data, nil
	}

	a, err := cache.GetOrLoad("tex/base.png", SRGB, read)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	b, err := cache.GetOrLoad("tex/base.png", SRGB, read)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	if a != b {
		t.Error("repeated load of the same path should return the same texture handle")
	}
	if got := reads.Load(); got != 1 {
		t.Errorf("expected exactly 1 read for a warm cache, got %d", got)
	}
	if cache.Len() != 1 {
		t.Errorf("cache should hold 1 entry, got %d", cache.Len())
	}
}

func TestGetOrLoadDistinctPaths(t *testing.T) {
	data := pngBytes(t, 2, 2)
	cache := NewCache()
	read := func() ([]byte, error) {
		return data, nil
	}

	a, _ := cache.GetOrLoad("a.png", SRGB, read)
	b, _ := cache.GetOrLoad("b.png", Linear, read)
	if a == b {
		t.Error("distinct paths must not share a texture handle")
	}
	if cache.Len() != 2 {
		t.Errorf("cache should hold 2 entries, got %d", cache.Len())
	}
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	data := pngBytes(t, 8, 8)
	var reads atomic.Int32
	cache := NewCache()
	read := func() ([]byte, error) {
		reads.Add(1)
		return data, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]*Texture, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			tex, err := cache.GetOrLoad("shared.png", SRGB, read)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = tex
		}(i)
	}
	wg.Wait()

	if got := reads.Load(); got != 1 {
		t.Errorf("concurrent loads of one path should read once, got %d reads", got)
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a different handle", i)
		}
	}
}

func TestGetOrLoadErrorDoesNotCacheTexture(t *testing.T) {
	cache := NewCache()
	read := func() ([]byte, error) {
		return nil, fmt.Errorf("no such file")
	}

	if _, err := cache.GetOrLoad("missing.png", SRGB, read); err == nil {
		t.Fatal("expected error for unreadable source")
	}
	if cache.Len() != 0 {
		t.Errorf("failed load must not populate the cache, got %d entries", cache.Len())
	}
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// Minimal 2x1 uncompressed 24bpp TGA, bottom-to-top: pixels BGR.
	data := []byte{
		0, 0, 2, // no id, no color map, type 2
		0, 0, 0, 0, 0, // color map spec
		0, 0, 0, 0, // origin
		2, 0, 1, 0, // width=2 height=1
		24, 0, // bpp, descriptor
		255, 0, 0, // blue pixel
		0, 0, 255, // red pixel
	}

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff {
		t.Errorf("pixel 0 should be blue, got r=%d g=%d b=%d", r, g, b)
	}
	r, _, b, _ = img.At(1, 0).RGBA()
	if r != 0xffff || b != 0 {
		t.Errorf("pixel 1 should be red, got r=%d b=%d", r, b)
	}
}
