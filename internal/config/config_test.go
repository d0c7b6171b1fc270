package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.ShadowResolution != 1024 {
		t.Errorf("expected shadow resolution 1024, got %d", cfg.Graphics.ShadowResolution)
	}

	if cfg.Shading.KeyIntensity != 1.0 {
		t.Errorf("expected key intensity 1.0, got %f", cfg.Shading.KeyIntensity)
	}
	if cfg.Shading.AmbientIntensity != 0.2 {
		t.Errorf("expected ambient intensity 0.2, got %f", cfg.Shading.AmbientIntensity)
	}
	if cfg.Shading.GroundSize != 1.0 {
		t.Errorf("expected ground size 1.0, got %f", cfg.Shading.GroundSize)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestNormalizeClampsShading(t *testing.T) {
	cfg := Default()
	cfg.Shading.KeyIntensity = 100
	cfg.Shading.AmbientIntensity = -1
	cfg.Shading.SpecularIntensity = 5
	cfg.Shading.RoughnessBias = 2
	cfg.Shading.ShadowStrength = 1.5
	cfg.Shading.GroundSize = -3

	cfg.Normalize()

	if cfg.Shading.KeyIntensity != 3 {
		t.Errorf("key intensity should clamp to 3, got %f", cfg.Shading.KeyIntensity)
	}
	if cfg.Shading.AmbientIntensity != 0 {
		t.Errorf("ambient intensity should clamp to 0, got %f", cfg.Shading.AmbientIntensity)
	}
	if cfg.Shading.SpecularIntensity != 2 {
		t.Errorf("specular intensity should clamp to 2, got %f", cfg.Shading.SpecularIntensity)
	}
	if cfg.Shading.RoughnessBias != 0.5 {
		t.Errorf("roughness bias should clamp to 0.5, got %f", cfg.Shading.RoughnessBias)
	}
	if cfg.Shading.ShadowStrength != 1 {
		t.Errorf("shadow strength should clamp to 1, got %f", cfg.Shading.ShadowStrength)
	}
	if cfg.Shading.GroundSize != 1 {
		t.Errorf("non-positive ground size should reset to 1, got %f", cfg.Shading.GroundSize)
	}
}

func TestNormalizeFixesDegenerateGraphics(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Width = 0
	cfg.Graphics.Height = -5
	cfg.Graphics.ShadowResolution = 16

	cfg.Normalize()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("degenerate window size should reset, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.ShadowResolution != 1024 {
		t.Errorf("tiny shadow resolution should reset to 1024, got %d", cfg.Graphics.ShadowResolution)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stageview.yaml")

	yaml := `
graphics:
  width: 1920
  height: 1080
  shadow_resolution: 2048
shading:
  key_intensity: 1.5
  shadow_strength: 0.9
assets:
  model: "models/camera.glb"
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Graphics.ShadowResolution)
	}
	if cfg.Shading.KeyIntensity != 1.5 {
		t.Errorf("expected key intensity 1.5, got %f", cfg.Shading.KeyIntensity)
	}
	if cfg.Assets.Model != "models/camera.glb" {
		t.Errorf("expected model path, got %q", cfg.Assets.Model)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	// Unset values keep their defaults.
	if !cfg.Graphics.VSync {
		t.Error("vsync default should survive partial file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "stageview.yaml")

	cfg := Default()
	cfg.Shading.RoughnessBias = -0.25
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile after save: %v", err)
	}
	if loaded.Shading.RoughnessBias != -0.25 {
		t.Errorf("round-trip roughness bias: got %f, want -0.25", loaded.Shading.RoughnessBias)
	}
}
