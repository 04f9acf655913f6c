package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/config"
	"github.com/Faultbox/fieldview/internal/engine/debug"
	"github.com/Faultbox/fieldview/internal/engine/input"
	"github.com/Faultbox/fieldview/internal/engine/rhi/glrhi"
	"github.com/Faultbox/fieldview/internal/engine/walkview"
	"github.com/Faultbox/fieldview/internal/engine/window"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/internal/viewer"
	"github.com/Faultbox/fieldview/pkg/field"
)

// app owns the window, the GL device and the view.
type app struct {
	running bool
	steps   walkview.Steps

	window *window.Window
	input  *input.Input
	dev    *glrhi.Device
	cb     *glrhi.CommandBuffer
	view   *walkview.View
	shots  *debug.Capturer
}

func newApp(cfg *config.Config, src field.Source) (*app, error) {
	a := &app{
		steps: viewer.Steps(cfg),
		input: input.New(nil),
		view:  viewer.NewView(cfg, src),
		shots: debug.NewCapturer("screenshots", viewer.Title),
	}

	// The window creates the GL context the device binds to.
	var err error
	a.window, err = window.New(window.FromConfig(viewer.Title, cfg.Viewer))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.dev, err = glrhi.New()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	a.cb = glrhi.NewCommandBuffer(a.window.DrawableSize)

	if err := a.view.Initialize(a.dev, a.cb); err != nil {
		// Render degrades to clearing; keep the window up so the user sees it.
		logger.Error("view initialization failed", zap.Error(err))
	}
	return a, nil
}

// Run drives the view until the window is closed.
func (a *app) Run() error {
	a.running = true
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting render loop")

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleInput()

		if err := a.view.Initialize(a.dev, a.cb); err != nil {
			logger.Debug("view not ready", zap.Error(err))
		}
		a.view.Render(a.cb)

		if a.input.IsKeyPressed(input.KeyScreenshot) {
			a.screenshot()
		}
		if a.input.IsKeyPressed(input.KeyFullscreen) {
			if err := a.window.ToggleFullscreen(); err != nil {
				logger.Warn("fullscreen toggle failed", zap.Error(err))
			}
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := a.view.Stats()
			a.window.SetTitle(fmt.Sprintf("%s - %d fps - tab %s", viewer.Title, frameCount, a.view.Selection().Tab))
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draw_calls", st.DrawCalls),
				zap.Bool("clear_only", st.ClearOnly),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *app) handleInput() {
	for _, act := range a.input.Actions() {
		if a.view.Apply(act, a.steps) {
			logger.Debug("action", zap.Stringer("action", act))
		}
	}

	if dx, dy, ok := a.input.Drag(); ok {
		a.view.Drag(dx, dy, a.steps)
	}
	a.view.Wheel(a.input.Wheel(), a.steps)

	if x, y, ok := a.input.Clicked(); ok {
		if px, py, ok := a.window.ToPixels(x, y); ok {
			i := a.view.SelectTriangleAt(px, py, a.cb.Target())
			logger.Debug("triangle picked", zap.Int("triangle", i))
		}
	}
}

func (a *app) screenshot() {
	w, h := a.window.DrawableSize()
	path, err := a.shots.Capture(a.dev, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources while the context is still current.
func (a *app) Close() {
	logger.Info("closing viewer")

	if a.view != nil {
		a.view.Close()
	}
	if a.dev != nil {
		a.dev.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
