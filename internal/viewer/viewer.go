// Package viewer wires configuration and field data into a walkmesh view
// and drives it without a window.
package viewer

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/config"
	"github.com/Faultbox/fieldview/internal/engine/rhi/nullrhi"
	"github.com/Faultbox/fieldview/internal/engine/walkview"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/pkg/field"
)

// Title is the window title prefix.
const Title = "walkview"

// ViewOptions converts the render section into view options.
func ViewOptions(cfg *config.Config) walkview.Options {
	opts := walkview.DefaultOptions()
	opts.MarkerHalfSize = cfg.Render.MarkerHalfSize
	opts.ClearWithBackground = gpuColor(cfg.Render.ClearWithBackground)
	opts.ClearWithoutBackground = gpuColor(cfg.Render.ClearWithoutBackground)
	return opts
}

// Steps converts the render section into per-action increments.
func Steps(cfg *config.Config) walkview.Steps {
	s := walkview.DefaultSteps()
	if cfg.Render.PanStep > 0 {
		s.Pan = cfg.Render.PanStep
	}
	if cfg.Render.RotateStep > 0 {
		s.Rotate = cfg.Render.RotateStep
	}
	return s
}

// NewView returns a view configured by cfg and filled with src.
func NewView(cfg *config.Config, src field.Source) *walkview.View {
	v := walkview.New(ViewOptions(cfg))
	v.SetCurrentTab(walkview.Tab(cfg.Render.InitialTab))
	if src != nil {
		v.Fill(src)
	}
	return v
}

// LoadField loads the configured field dump. An empty path yields no data.
func LoadField(cfg *config.Config) (field.Source, error) {
	if cfg.Data.FieldPath == "" {
		logger.Warn("no field configured, the view will only clear")
		return nil, nil
	}
	data, err := field.LoadFile(cfg.Data.FieldPath)
	if err != nil {
		return nil, fmt.Errorf("loading field %s: %w", cfg.Data.FieldPath, err)
	}
	logger.Info("field loaded",
		zap.String("path", cfg.Data.FieldPath),
		zap.Int("triangles", len(data.Triangles())),
		zap.Int("cameras", len(data.Cameras())),
		zap.Int("gateways", len(data.Gateways())),
		zap.Int("triggers", len(data.Triggers())),
	)
	return data, nil
}

// RunHeadless renders frames on the recording backend and returns the
// statistics of each frame. Actions, if any, are applied one per frame
// before rendering.
func RunHeadless(cfg *config.Config, src field.Source, frames int, actions ...walkview.Action) ([]walkview.Stats, error) {
	dev := nullrhi.New()
	cb := nullrhi.NewCommandBuffer(cfg.Viewer.Width, cfg.Viewer.Height)
	view := NewView(cfg, src)
	defer view.Close()
	steps := Steps(cfg)
	log := logger.Named("headless")

	log.Info("headless run",
		zap.Int("frames", frames),
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
	)

	stats := make([]walkview.Stats, 0, frames)
	for i := 0; i < frames; i++ {
		cb.Reset()
		if err := view.Initialize(dev, cb); err != nil {
			log.Warn("initialize failed", zap.Int("frame", i), zap.Error(err))
		}
		if i < len(actions) {
			view.Apply(actions[i], steps)
		}
		view.Render(cb)
		if err := cb.Err(); err != nil {
			return stats, fmt.Errorf("frame %d: %w", i, err)
		}

		st := view.Stats()
		stats = append(stats, st)
		log.Debug("frame",
			zap.Uint64("frame", st.Frame),
			zap.Int("draw_calls", st.DrawCalls),
			zap.Ints("vertices", st.Vertices[:]),
			zap.Bool("clear_only", st.ClearOnly),
		)
	}

	log.Info("headless run finished", zap.Int("live_resources", dev.Live()))
	return stats, nil
}

func gpuColor(c config.Color) gputypes.Color {
	return gputypes.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}
