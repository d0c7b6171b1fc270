// Package texture provides image decoding, GPU texture upload, and a
// shared texture cache keyed by source path.
package texture

import (
	"bytes"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/quietfall/stageview/internal/logger"

	_ "image/jpeg"
	_ "image/png"
)

// ColorSpace selects how texel data is interpreted at sampling time.
type ColorSpace int

const (
	// SRGB marks color data (base color, emissive): stored gamma-encoded,
	// linearized by the sampler.
	SRGB ColorSpace = iota
	// Linear marks data textures (normal, metallic, roughness).
	Linear
)

// maxDimension is the largest texture edge uploaded; bigger images are
// downscaled first.
const maxDimension = 4096

// Texture is a decoded image plus its lazily created GPU handle.
// Decode happens on any goroutine; the GL handle is created on first
// GLTexture call, which must run on the render thread.
type Texture struct {
	Source string
	Space  ColorSpace

	img *image.RGBA
	id  uint32
}

// Decode decodes image bytes into RGBA, downscaling oversized images.
// TGA is detected by extension; PNG and JPEG by content.
func Decode(data []byte, path string) (*image.RGBA, error) {
	var img image.Image
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	return toRGBA(img), nil
}

// toRGBA converts any image to RGBA, downscaling if an edge exceeds
// maxDimension.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if w > maxDimension || h > maxDimension {
		scale := float64(maxDimension) / float64(w)
		if h > w {
			scale = float64(maxDimension) / float64(h)
		}
		dw := int(float64(w) * scale)
		dh := int(float64(h) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst
}

// GLTexture returns the GPU handle, uploading on first use.
// Must be called on the render thread.
func (t *Texture) GLTexture() uint32 {
	if t.id != 0 {
		return t.id
	}
	if t.img == nil {
		return 0
	}
	t.id = upload(t.img, t.Space)
	logger.Debug("texture uploaded",
		zap.String("source", t.Source),
		zap.Uint32("id", t.id),
	)
	return t.id
}

// Destroy releases the GPU handle, keeping the decoded image.
func (t *Texture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func upload(img *image.RGBA, space ColorSpace) uint32 {
	internalFormat := int32(gl.RGBA8)
	if space == SRGB {
		internalFormat = gl.SRGB8_ALPHA8
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}
