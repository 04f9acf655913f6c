package walkview

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/engine/camera"
	"github.com/Faultbox/fieldview/internal/engine/gpures"
	"github.com/Faultbox/fieldview/internal/engine/overlay"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/pkg/field"
)

// clearDepth is the depth buffer clear value.
const clearDepth = 1

// errNoData marks a frame without field data. It is not a failure.
var errNoData = errors.New("walkview: no field data")

// lineStreams are drawn with the line pipeline, in this order.
var lineStreams = []overlay.Stream{
	overlay.StreamWire,
	overlay.StreamExits,
	overlay.StreamDoors,
	overlay.StreamGuide,
}

// Initialize prepares GPU resources for dev. It is cheap to call every frame:
// nothing happens unless the device changed or resources were released.
func (v *View) Initialize(dev rhi.Device, cb rhi.CommandBuffer) error {
	if dev == nil {
		return errors.New("walkview: initialize: nil device")
	}
	if dev != v.dev {
		if v.dev != nil {
			logger.Info("walkview device changed", zap.Stringer("backend", dev.Backend()))
		}
		v.dev = dev
		v.bgDirty = true
	}

	batch := dev.NextUpdateBatch()
	err := v.resources.Initialize(dev, batch, gpures.Hints{Triangles: len(v.triangles())})
	if batch.Len() > 0 {
		cb.ResourceUpdate(batch)
	}
	if err != nil {
		return fmt.Errorf("walkview: initialize: %w", err)
	}
	return nil
}

// ReleaseResources frees every GPU resource. The next Initialize rebuilds them.
func (v *View) ReleaseResources() {
	v.resources.Release()
	v.dev = nil
	v.bgDirty = true
}

// Close releases resources and drops the field data.
func (v *View) Close() {
	v.ReleaseResources()
	v.src = nil
	v.classifier.Invalidate()
}

// Render records one frame into cb. It never fails: any problem turns the
// frame into a plain clear and is reported through Err.
func (v *View) Render(cb rhi.CommandBuffer) {
	v.frame++
	v.stats = Stats{Frame: v.frame}

	clear := v.clearColor()
	batch := rhi.NewUpdateBatch()
	if v.dev != nil {
		batch = v.dev.NextUpdateBatch()
	}

	frame, err := v.prepare(cb, batch)
	if err != nil {
		v.clearOnly(cb, clear, batch, err)
		return
	}
	v.setDegraded(nil)

	cb.BeginPass(clear, clearDepth, batch)
	cb.SetViewport(rhi.FullViewport(cb.Target()))

	if v.backgroundVisible && v.bind(cb, gpures.CategoryBackground) {
		cb.SetVertexInput(v.resources.QuadBuffer(), 0)
		cb.Draw(gpures.QuadVertices)
		v.stats.DrawCalls++
		v.stats.Background = true
	}

	bound, ok := false, true
	for _, s := range lineStreams {
		buf := frame.Stream(s)
		if buf.Empty() {
			continue
		}
		if !bound {
			ok, bound = v.bind(cb, gpures.CategoryLines), true
		}
		if ok {
			v.draw(cb, s, buf)
		}
	}

	if markers := frame.Stream(overlay.StreamMarkers); !markers.Empty() && v.bind(cb, gpures.CategoryMarkers) {
		v.draw(cb, overlay.StreamMarkers, markers)
	}

	cb.EndPass()
}

// prepare builds the overlay streams and queues every upload of the frame.
func (v *View) prepare(cb rhi.CommandBuffer, batch *rhi.UpdateBatch) (overlay.Frame, error) {
	if v.dev == nil || !v.resources.Ready() {
		if err := v.resources.Err(); err != nil {
			return overlay.Frame{}, err
		}
		return overlay.Frame{}, gpures.ErrNotReady
	}
	if v.src == nil {
		return overlay.Frame{}, errNoData
	}

	if v.bgDirty {
		// A fresh session already holds the fallback a field without image needs.
		if img := v.src.Background(); img != nil || !v.resources.FallbackBackground() {
			if err := v.resources.RebuildBackground(batch, img); err != nil {
				return overlay.Frame{}, err
			}
		}
		v.bgDirty = false
	}

	tris := v.src.Triangles()
	cam := field.CameraAt(v.src, v.cameraID)
	right, up := camera.Basis(cam)

	set := v.classifier.Classify(tris, v.sel.Triangle)
	frame := overlay.Build(overlay.Input{
		Edges:     set,
		Tiers:     v.classifier,
		Triangles: tris,
		Gateways:  v.src.Gateways(),
		Triggers:  v.src.Triggers(),
		Selection: overlay.Selection{
			Triangle: v.sel.Triangle,
			Gate:     v.sel.Gate,
			Door:     v.sel.Door,
			ShowGate: v.sel.Tab == TabGateways,
			ShowDoor: v.sel.Tab == TabDoors,
		},
		Right:          right,
		Up:             up,
		Guide:          v.guide,
		MarkerHalfSize: v.opts.MarkerHalfSize,
	})

	for s := overlay.Stream(0); s < overlay.StreamCount; s++ {
		buf := frame.Stream(s)
		if err := v.resources.Upload(batch, s, buf.Data); err != nil {
			return overlay.Frame{}, err
		}
		v.stats.Vertices[s] = buf.Vertices
	}

	target := cb.Target()
	mvp := v.rig.MVP(v.dev.ClipSpaceCorrection(), cam, target.Width, target.Height)
	if err := v.resources.UploadUniform(batch, mvp); err != nil {
		return overlay.Frame{}, err
	}
	return frame, nil
}

// bind selects the pipeline of cat. On failure the category's draws are skipped.
func (v *View) bind(cb rhi.CommandBuffer, cat gpures.Category) bool {
	if err := v.resources.Bind(cb, cat); err != nil {
		logger.Warn("walkview bind failed, skipping draws",
			zap.Stringer("category", cat),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (v *View) draw(cb rhi.CommandBuffer, s overlay.Stream, buf overlay.Buffer) {
	cb.SetVertexInput(v.resources.Buffer(s), 0)
	cb.Draw(buf.Vertices)
	v.stats.DrawCalls++
}

func (v *View) clearOnly(cb rhi.CommandBuffer, clear gputypes.Color, batch *rhi.UpdateBatch, reason error) {
	v.stats = Stats{Frame: v.frame, ClearOnly: true}
	v.setDegraded(reason)
	cb.BeginPass(clear, clearDepth, batch)
	cb.EndPass()
}

// setDegraded logs transitions between full and clear-only frames.
func (v *View) setDegraded(reason error) {
	switch {
	case reason != nil && !v.degraded:
		v.degraded = true
		if reason == errNoData {
			logger.Debug("walkview has no data, clearing only")
			return
		}
		logger.Warn("walkview rendering disabled", zap.Error(reason))
	case reason == nil && v.degraded:
		v.degraded = false
		logger.Debug("walkview rendering resumed")
	}
}

func (v *View) clearColor() gputypes.Color {
	if v.backgroundVisible {
		return v.opts.ClearWithBackground
	}
	return v.opts.ClearWithoutBackground
}

func (v *View) triangles() []field.Triangle {
	if v.src == nil {
		return nil
	}
	return v.src.Triangles()
}

func (v *View) cameras() []field.Camera {
	if v.src == nil {
		return nil
	}
	return v.src.Cameras()
}
