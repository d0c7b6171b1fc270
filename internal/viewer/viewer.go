// Package viewer implements the interactive stage viewer: window and
// input wiring, asynchronous model loading, and the per-frame render
// loop.
package viewer

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/config"
	"github.com/quietfall/stageview/internal/engine/camera"
	"github.com/quietfall/stageview/internal/engine/capture"
	"github.com/quietfall/stageview/internal/engine/input"
	"github.com/quietfall/stageview/internal/engine/model"
	"github.com/quietfall/stageview/internal/engine/pbr"
	"github.com/quietfall/stageview/internal/engine/picking"
	"github.com/quietfall/stageview/internal/engine/scene"
	"github.com/quietfall/stageview/internal/engine/shadow"
	"github.com/quietfall/stageview/internal/engine/texture"
	"github.com/quietfall/stageview/internal/engine/window"
	"github.com/quietfall/stageview/internal/logger"
)

const windowTitle = "stageview"

// loadResult carries a finished asset parse from the loader goroutine
// back to the render thread, which owns the GPU upload.
type loadResult struct {
	path string
	data *model.Data
	err  error
}

// Viewer owns the window, scene, camera, and the loop that drives them.
type Viewer struct {
	cfg     *config.Config
	window  *window.Window
	scene   *scene.Scene
	camera  *camera.Orbit
	input   *input.Input
	cache   *texture.Cache
	loads   chan loadResult
	running bool
}

// New creates the window, GL context, and scene, then kicks off the
// initial asset loads from the configuration.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		input: input.New(),
		cache: texture.NewCache(),
		loads: make(chan loadResult, 1),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	v.scene, err = scene.New(scene.Config{
		Width:            int32(cfg.Graphics.Width),
		Height:           int32(cfg.Graphics.Height),
		ShadowResolution: int32(cfg.Graphics.ShadowResolution),
		ShadowStrength:   cfg.Shading.ShadowStrength,
		GroundSize:       cfg.Shading.GroundSize,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("creating scene: %w", err)
	}
	v.scene.SetControls(pbr.Controls{
		KeyIntensity:      cfg.Shading.KeyIntensity,
		AmbientIntensity:  cfg.Shading.AmbientIntensity,
		SpecularIntensity: cfg.Shading.SpecularIntensity,
		RoughnessBias:     cfg.Shading.RoughnessBias,
	})

	v.camera = camera.NewOrbit()
	v.setupEnvironment()
	v.setupBackdrop()

	if cfg.Assets.Model != "" {
		v.loadModelAsync(cfg.Assets.Model)
	}
	return v, nil
}

func (v *Viewer) setupEnvironment() {
	faces := v.cfg.Assets.EnvironmentFaces
	if len(faces) == 6 {
		cubemap, err := texture.LoadCubemap(os.ReadFile, faces)
		if err == nil {
			v.scene.SetEnvironment(cubemap, 4)
			return
		}
		logger.Warn("environment cubemap unavailable, using fallback", zap.Error(err))
	} else if len(faces) != 0 {
		logger.Warn("environment needs exactly 6 faces", zap.Int("got", len(faces)))
	}
	v.scene.SetEnvironment(texture.FallbackCubemap(), 0)
}

func (v *Viewer) setupBackdrop() {
	path := v.cfg.Assets.Background
	if path == "" {
		return
	}
	tex, err := v.cache.GetOrLoad(path, texture.SRGB, func() ([]byte, error) {
		return os.ReadFile(path)
	})
	if err != nil {
		logger.Warn("backdrop unavailable", zap.String("path", path), zap.Error(err))
		return
	}
	v.scene.SetBackdrop(tex.GLTexture())
}

// LoadModel starts loading an asset without blocking the render loop.
// The previous model keeps drawing until the new one is fully ready.
func (v *Viewer) LoadModel(path string) {
	v.loadModelAsync(path)
}

func (v *Viewer) loadModelAsync(path string) {
	logger.Info("loading model", zap.String("path", path))
	go func() {
		data, err := model.Load(path, v.cache)
		v.loads <- loadResult{path: path, data: data, err: err}
	}()
}

// Run drives the render loop until quit.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.finishPendingLoad()

		// One camera snapshot per frame, shared by every pass.
		view := v.camera.ViewMatrix()
		eye := v.camera.Position()
		v.scene.Render(view, eye)

		drawableW, drawableH := v.window.DrawableSize()
		v.scene.Blit(drawableW, drawableH)
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s (%d fps)", windowTitle, frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.scene.Resize(int32(e.Width), int32(e.Height))
		case input.EventKeyDown:
			v.handleKey(e.Key)
		case input.EventMouseDrag:
			v.camera.HandleDrag(float32(e.DragX), float32(e.DragY))
		case input.EventMouseWheel:
			v.camera.HandleZoom(e.WheelY)
		case input.EventMouseClick:
			v.retarget(e.MouseX, e.MouseY)
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_F12:
		v.screenshot()
	case sdl.SCANCODE_R:
		v.frameModel()
	}
}

// retarget moves the orbit target to whatever the click hit: the model
// bounds when possible, the ground plane otherwise.
func (v *Viewer) retarget(x, y int) {
	winW, winH := v.window.Size()
	if winW == 0 || winH == 0 {
		return
	}
	inv := v.scene.Projection().Mul(v.camera.ViewMatrix()).Inverse()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(winW), float32(winH), inv)
	if target, ok := picking.PickTarget(ray, v.scene.Model()); ok {
		v.camera.SetTarget(target)
	}
}

// frameModel recenters and re-distances the camera around the current
// model bounds.
func (v *Viewer) frameModel() {
	bounds := shadow.SceneBounds(v.scene.Model())
	v.camera.FitToBounds(bounds.Min, bounds.Max)
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.scene.CaptureImage()
	if _, err := capture.SavePNG(v.cfg.Assets.ScreenshotDir, pixels, w, h); err != nil {
		logger.Error("screenshot failed", zap.Error(err))
	}
}

// finishPendingLoad uploads a completed parse on the render thread and
// swaps it in. A failed load keeps the previous model on screen.
func (v *Viewer) finishPendingLoad() {
	select {
	case res := <-v.loads:
		if res.err != nil {
			logger.Error("model load failed",
				zap.String("path", res.path),
				zap.Error(res.err),
			)
			return
		}
		m := res.data.Upload()
		v.scene.SetModel(m)
		v.cfg.Assets.Model = res.path
		bounds := shadow.SceneBounds(m)
		v.camera.FitToBounds(bounds.Min, bounds.Max)
	default:
	}
}

// Close tears down GL resources and the window, then persists the
// configuration.
func (v *Viewer) Close() {
	if v.scene != nil {
		v.scene.Destroy()
	}
	if v.cache != nil {
		v.cache.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
	if err := v.cfg.Save(); err != nil {
		logger.Warn("could not persist configuration", zap.Error(err))
	}
}
