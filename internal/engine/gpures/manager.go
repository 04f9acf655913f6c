// Package gpures owns the GPU resources of the walkmesh view: vertex and
// uniform buffers, the background texture and the fixed pipelines.
//
// Resources live in a session tied to one rhi.Device. Initialize builds the
// session, a device change tears it down and builds a new one, and a failure
// anywhere is latched until the session is released.
package gpures

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	gomath "math"

	"github.com/gogpu/gputypes"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/fieldview/internal/engine/overlay"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/engine/shader"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/pkg/math"
)

// UniformSize is the size of the uniform block: one mat4.
const UniformSize = 64

// Initial capacities.
const (
	// segmentReserve is the number of gateway or trigger segments reserved up front.
	segmentReserve = 1024
	guideCapacity  = 2 * overlay.VertexSize
	markerCapacity = overlay.MarkerVertices * overlay.VertexSize
)

// ErrNotReady is returned by operations that need an initialized session.
var ErrNotReady = errors.New("gpures: not initialized")

// Hints size the initial buffers.
type Hints struct {
	Triangles int
}

// Manager owns one resource session.
type Manager struct {
	shaders *shader.Library

	dev   rhi.Device
	ready bool
	err   error

	streams   [overlay.StreamCount]rhi.Buffer
	uniform   rhi.Buffer
	quad      rhi.Buffer
	sampler   rhi.Sampler
	bgTexture rhi.Texture
	// bgFallback is set while bgTexture is the 1x1 fallback.
	bgFallback bool

	uniformBindings rhi.Bindings
	bgBindings      rhi.Bindings
	pipelines       [categoryCount]rhi.Pipeline
}

// New returns a manager that loads programs from shaders.
func New(shaders *shader.Library) *Manager {
	return &Manager{shaders: shaders}
}

// Device returns the device of the current session, or nil.
func (m *Manager) Device() rhi.Device { return m.dev }

// Ready reports whether every resource of the session exists.
func (m *Manager) Ready() bool { return m.ready && m.err == nil }

// FallbackBackground reports whether the background texture is the 1x1 fallback.
func (m *Manager) FallbackBackground() bool { return m.Ready() && m.bgFallback }

// Err returns the latched failure of the session, if any.
func (m *Manager) Err() error { return m.err }

// Initialize builds the session for dev. Calling it again with the same
// device is a no-op; a different device releases the old session first.
// Uploads are queued on batch.
func (m *Manager) Initialize(dev rhi.Device, batch *rhi.UpdateBatch, hints Hints) error {
	if dev == nil {
		return fmt.Errorf("initialize: %w", ErrNotReady)
	}
	if m.dev == dev {
		if m.err != nil {
			return m.err
		}
		if m.ready {
			return nil
		}
	}
	if m.dev != nil && m.dev != dev {
		logger.Info("graphics device changed, rebuilding resources",
			zap.Stringer("from", m.dev.Backend()),
			zap.Stringer("to", dev.Backend()),
		)
		m.Release()
	}

	m.dev = dev
	// Uploads are staged so a failed build leaves batch untouched.
	staged := rhi.NewUpdateBatch()
	if err := m.build(staged, hints); err != nil {
		m.releaseResources()
		m.err = err
		logger.Error("gpu resources unavailable", zap.Error(err))
		return err
	}
	batch.Merge(staged)
	m.ready = true
	logger.Debug("gpu resources ready",
		zap.Stringer("backend", dev.Backend()),
		zap.Int("live", m.LiveResources()),
	)
	return nil
}

func (m *Manager) build(batch *rhi.UpdateBatch, hints Hints) error {
	tris := max(1, hints.Triangles)
	initial := [overlay.StreamCount]int{
		overlay.StreamWire:    tris * 6 * overlay.VertexSize,
		overlay.StreamExits:   segmentReserve * 2 * overlay.VertexSize,
		overlay.StreamDoors:   segmentReserve * 2 * overlay.VertexSize,
		overlay.StreamGuide:   guideCapacity,
		overlay.StreamMarkers: markerCapacity,
	}
	for s, size := range initial {
		buf, err := m.newVertexBuffer(overlay.Stream(s), size)
		if err != nil {
			return err
		}
		m.streams[s] = buf
	}

	var err error
	m.uniform, err = m.dev.NewBuffer(gputypes.BufferDescriptor{
		Label: "uniforms",
		Size:  UniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}

	quad := floatBytes(backgroundQuad)
	m.quad, err = m.dev.NewBuffer(gputypes.BufferDescriptor{
		Label: "background-quad",
		Size:  uint64(len(quad)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("background quad: %w", err)
	}
	batch.UploadStaticBuffer(m.quad, 0, quad)

	m.sampler, err = m.dev.NewSampler(gputypes.SamplerDescriptor{
		Label:        "background",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.MipmapFilterModeUndefined,
	})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	m.uniformBindings, err = m.dev.NewBindings(rhi.BindingsDescriptor{
		Label:   "uniforms",
		Entries: []rhi.Binding{rhi.UniformBinding(UniformSlot, shader.UniformBlock, gputypes.ShaderStageVertex, m.uniform)},
	})
	if err != nil {
		return fmt.Errorf("uniform bindings: %w", err)
	}

	if err := m.rebuildBackground(batch, nil); err != nil {
		return err
	}

	for cat := Category(0); cat < categoryCount; cat++ {
		cfg := pipelineTable[cat]
		src, err := m.shaders.Program(cfg.program)
		if err != nil {
			return fmt.Errorf("%s pipeline: %w", cat, err)
		}
		p, err := m.dev.NewPipeline(cfg.descriptor(cat, src))
		if err != nil {
			return fmt.Errorf("%s pipeline: %w", cat, err)
		}
		m.pipelines[cat] = p
	}
	return nil
}

func (m *Manager) newVertexBuffer(s overlay.Stream, size int) (rhi.Buffer, error) {
	buf, err := m.dev.NewBuffer(gputypes.BufferDescriptor{
		Label: s.String(),
		Size:  uint64(size),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%s buffer (%d bytes): %w", s, size, err)
	}
	return buf, nil
}

// Capacity returns the byte capacity of a stream buffer.
func (m *Manager) Capacity(s overlay.Stream) int {
	if m.streams[s] == nil {
		return 0
	}
	return m.streams[s].Size()
}

// Buffer returns the vertex buffer of a stream.
func (m *Manager) Buffer(s overlay.Stream) rhi.Buffer { return m.streams[s] }

// QuadBuffer returns the background quad vertex buffer.
func (m *Manager) QuadBuffer() rhi.Buffer { return m.quad }

// BackgroundTexture returns the current background texture.
func (m *Manager) BackgroundTexture() rhi.Texture { return m.bgTexture }

// EnsureBuffer grows the stream buffer to hold at least required bytes.
// Buffers never shrink; a grown buffer at least doubles.
func (m *Manager) EnsureBuffer(s overlay.Stream, required int) error {
	if !m.Ready() {
		return m.notReady("ensure buffer")
	}
	old := m.streams[s]
	if old.Size() >= required {
		return nil
	}

	size := max(required, 2*old.Size())
	buf, err := m.newVertexBuffer(s, size)
	if err != nil {
		m.latch(err)
		return err
	}
	old.Release()
	m.streams[s] = buf
	logger.Debug("vertex buffer grown",
		zap.Stringer("stream", s),
		zap.Int("bytes", size),
	)
	return nil
}

// Upload queues data for stream s, growing its buffer when needed.
func (m *Manager) Upload(batch *rhi.UpdateBatch, s overlay.Stream, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.EnsureBuffer(s, len(data)); err != nil {
		return err
	}
	batch.UpdateDynamicBuffer(m.streams[s], 0, data)
	return nil
}

// UploadUniform queues the model-view-projection matrix.
func (m *Manager) UploadUniform(batch *rhi.UpdateBatch, mvp math.Mat4) error {
	if !m.Ready() {
		return m.notReady("upload uniform")
	}
	batch.UpdateDynamicBuffer(m.uniform, 0, floatBytes(mvp[:]))
	return nil
}

// Bind sets the pipeline and bindings of a category on cb.
func (m *Manager) Bind(cb rhi.CommandBuffer, cat Category) error {
	if !m.Ready() {
		return m.notReady("bind")
	}
	if cat < 0 || cat >= categoryCount {
		return fmt.Errorf("bind: unknown category %d", cat)
	}
	cb.SetPipeline(m.pipelines[cat])
	if cat == CategoryBackground {
		cb.SetBindings(m.bgBindings)
	} else {
		cb.SetBindings(m.uniformBindings)
	}
	return nil
}

// RebuildBackground replaces the background texture with img. A nil image
// gives a 1x1 opaque black texture.
func (m *Manager) RebuildBackground(batch *rhi.UpdateBatch, img image.Image) error {
	if !m.Ready() {
		return m.notReady("rebuild background")
	}
	if err := m.rebuildBackground(batch, img); err != nil {
		m.latch(err)
		return err
	}
	return nil
}

func (m *Manager) rebuildBackground(batch *rhi.UpdateBatch, img image.Image) error {
	rgba := toRGBA(img)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	tex, err := m.dev.NewTexture(gputypes.TextureDescriptor{
		Label:         "background",
		Size:          gputypes.NewExtent2D(uint32(w), uint32(h)),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("background texture %dx%d: %w", w, h, err)
	}
	bg, err := m.dev.NewBindings(rhi.BindingsDescriptor{
		Label: "background",
		Entries: []rhi.Binding{
			rhi.SampledTextureBinding(BackgroundSlot, shader.BackgroundSampler, gputypes.ShaderStageFragment, tex, m.sampler),
		},
	})
	if err != nil {
		tex.Release()
		return fmt.Errorf("background bindings: %w", err)
	}

	rhi.Release(m.bgBindings, m.bgTexture)
	m.bgTexture, m.bgBindings = tex, bg
	m.bgFallback = img == nil || img.Bounds().Empty()
	batch.UploadTexture(tex, rgba)
	return nil
}

// LiveResources counts the resources the session currently holds.
func (m *Manager) LiveResources() int {
	return len(m.resources())
}

func (m *Manager) resources() []rhi.Resource {
	rs := make([]rhi.Resource, 0, overlay.StreamCount+categoryCount+6)
	for _, b := range m.streams {
		if b != nil {
			rs = append(rs, b)
		}
	}
	for _, p := range m.pipelines {
		if p != nil {
			rs = append(rs, p)
		}
	}
	for _, r := range []rhi.Resource{m.uniform, m.quad, m.sampler, m.bgTexture, m.uniformBindings, m.bgBindings} {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return rs
}

// Release frees the whole session and clears the latched error.
func (m *Manager) Release() {
	m.releaseResources()
	m.dev = nil
	m.err = nil
}

func (m *Manager) releaseResources() {
	rhi.Release(m.resources()...)
	m.streams = [overlay.StreamCount]rhi.Buffer{}
	m.pipelines = [categoryCount]rhi.Pipeline{}
	m.uniform, m.quad = nil, nil
	m.sampler, m.bgTexture = nil, nil
	m.bgFallback = false
	m.uniformBindings, m.bgBindings = nil, nil
	m.ready = false
}

func (m *Manager) latch(err error) {
	if m.err == nil {
		m.err = err
		logger.Error("gpu resource failure", zap.Error(err))
	}
}

func (m *Manager) notReady(op string) error {
	if m.err != nil {
		return fmt.Errorf("%s: %w", op, m.err)
	}
	return fmt.Errorf("%s: %w", op, ErrNotReady)
}

func toRGBA(img image.Image) *image.RGBA {
	if img == nil || img.Bounds().Empty() {
		black := image.NewRGBA(image.Rect(0, 0, 1, 1))
		black.Pix[3] = 0xff
		return black
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func floatBytes(fs []float32) []byte {
	out := make([]byte, len(fs)*4)
	for i, f := range fs {
		binary.NativeEndian.PutUint32(out[i*4:], gomath.Float32bits(f))
	}
	return out
}
