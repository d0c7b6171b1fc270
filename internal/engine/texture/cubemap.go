package texture

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/logger"
)

// LoadCubemap creates an environment cubemap from six face images in
// +X, -X, +Y, -Y, +Z, -Z order. Faces are color data and uploaded as
// sRGB; mipmaps are generated so rough surfaces can sample blurrier
// levels. Must be called on the render thread.
func LoadCubemap(read func(path string) ([]byte, error), faces []string) (uint32, error) {
	if len(faces) != 6 {
		return 0, fmt.Errorf("cubemap needs 6 faces, got %d", len(faces))
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	for i, path := range faces {
		data, err := read(path)
		if err != nil {
			gl.DeleteTextures(1, &id)
			return 0, fmt.Errorf("reading cubemap face %s: %w", path, err)
		}
		img, err := Decode(data, path)
		if err != nil {
			gl.DeleteTextures(1, &id)
			return 0, fmt.Errorf("decoding cubemap face %s: %w", path, err)
		}
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.SRGB8_ALPHA8,
			int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
			0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	}

	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	logger.Info("environment cubemap loaded", zap.Strings("faces", faces))
	return id, nil
}

// FallbackCubemap creates a 1x1 neutral gray cubemap so the reflection
// path works when no environment is configured.
func FallbackCubemap() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	gray := []uint8{90, 90, 95, 255}
	for i := 0; i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(gray))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return id
}
