// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Shading  ShadingConfig  `yaml:"shading"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and render-target settings.
type GraphicsConfig struct {
	Width            int  `yaml:"width"`
	Height           int  `yaml:"height"`
	Fullscreen       bool `yaml:"fullscreen"`
	VSync            bool `yaml:"vsync"`
	ShadowResolution int  `yaml:"shadow_resolution"` // shadow map width = height
}

// ShadingConfig holds the user-tunable shading intensities.
// Values outside the documented ranges are clamped by Normalize.
type ShadingConfig struct {
	KeyIntensity      float32 `yaml:"key_intensity"`      // [0, 3]
	AmbientIntensity  float32 `yaml:"ambient_intensity"`  // [0, 0.5]
	SpecularIntensity float32 `yaml:"specular_intensity"` // [0, 2]
	RoughnessBias     float32 `yaml:"roughness_bias"`     // [-0.5, 0.5]
	ShadowStrength    float32 `yaml:"shadow_strength"`    // [0, 1]
	GroundSize        float32 `yaml:"ground_size"`        // footprint multiplier, > 0
}

// AssetsConfig holds paths to externally supplied assets.
type AssetsConfig struct {
	Model            string   `yaml:"model"`             // glTF/GLB scene asset
	EnvironmentFaces []string `yaml:"environment_faces"` // +X -X +Y -Y +Z -Z cubemap faces
	Background       string   `yaml:"background"`        // backdrop image composited behind the model
	ScreenshotDir    string   `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			ShadowResolution: 1024,
		},
		Shading: ShadingConfig{
			KeyIntensity:      1.0,
			AmbientIntensity:  0.2,
			SpecularIntensity: 1.0,
			RoughnessBias:     0.0,
			ShadowStrength:    0.65,
			GroundSize:        1.0,
		},
		Assets: AssetsConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Normalize clamps all shading values into their documented ranges and
// fixes up degenerate graphics settings.
func (c *Config) Normalize() {
	c.Shading.KeyIntensity = clamp(c.Shading.KeyIntensity, 0, 3)
	c.Shading.AmbientIntensity = clamp(c.Shading.AmbientIntensity, 0, 0.5)
	c.Shading.SpecularIntensity = clamp(c.Shading.SpecularIntensity, 0, 2)
	c.Shading.RoughnessBias = clamp(c.Shading.RoughnessBias, -0.5, 0.5)
	c.Shading.ShadowStrength = clamp(c.Shading.ShadowStrength, 0, 1)
	if c.Shading.GroundSize <= 0 {
		c.Shading.GroundSize = 1.0
	}
	if c.Graphics.Width < 1 {
		c.Graphics.Width = 1280
	}
	if c.Graphics.Height < 1 {
		c.Graphics.Height = 720
	}
	if c.Graphics.ShadowResolution < 256 {
		c.Graphics.ShadowResolution = 1024
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
