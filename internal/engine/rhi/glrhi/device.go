// Package glrhi implements rhi on OpenGL 4.1 core.
// Every call must happen on the thread that owns the GL context.
package glrhi

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/logger"
	"github.com/Faultbox/fieldview/pkg/math"
)

// Device is an OpenGL rhi.Device bound to the current context.
type Device struct {
	version  string
	renderer string
	closed   bool
}

// New initializes OpenGL function pointers.
// IMPORTANT: Must be called AFTER the OpenGL context is created and made current!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		version:  gl.GoStr(gl.GetString(gl.VERSION)),
		renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	logger.Info("OpenGL initialized",
		zap.String("version", d.version),
		zap.String("renderer", d.renderer),
	)
	return d, nil
}

// Close marks the device as lost. Resources must be released before the
// context is destroyed.
func (d *Device) Close() {
	d.closed = true
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (d *Device) Backend() gputypes.Backend { return gputypes.BackendGL }

func (d *Device) ClipSpaceCorrection() math.Mat4 {
	return rhi.ClipSpaceCorrection(gputypes.BackendGL)
}

func (d *Device) NextUpdateBatch() *rhi.UpdateBatch {
	return rhi.NewUpdateBatch()
}

func (d *Device) check(what, label string) error {
	if d.closed {
		return fmt.Errorf("create %s %q: %w", what, label, rhi.ErrDeviceLost)
	}
	return nil
}

// glError drains the GL error queue and reports the first error.
func glError(what, label string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for gl.GetError() != gl.NO_ERROR {
	}
	return fmt.Errorf("create %s %q: gl error 0x%x: %w", what, label, code, rhi.ErrResourceCreation)
}

// NewBuffer allocates an uninitialized buffer of desc.Size bytes.
func (d *Device) NewBuffer(desc gputypes.BufferDescriptor) (rhi.Buffer, error) {
	if err := d.check("buffer", desc.Label); err != nil {
		return nil, err
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: zero size: %w", desc.Label, rhi.ErrResourceCreation)
	}

	b := &buffer{target: glBufferTarget(desc.Usage), size: int(desc.Size), usage: desc.Usage}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(b.target, b.id)
	gl.BufferData(b.target, b.size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(b.target, 0)

	if err := glError("buffer", desc.Label); err != nil {
		b.Release()
		return nil, err
	}
	logger.Debug("buffer created",
		zap.String("label", desc.Label),
		zap.Int("bytes", b.size),
		zap.Uint32("id", b.id),
	)
	return b, nil
}

// NewTexture allocates an RGBA8 2D texture.
func (d *Device) NewTexture(desc gputypes.TextureDescriptor) (rhi.Texture, error) {
	if err := d.check("texture", desc.Label); err != nil {
		return nil, err
	}
	if desc.Format != gputypes.TextureFormatRGBA8Unorm {
		return nil, fmt.Errorf("create texture %q: unsupported format %s: %w", desc.Label, desc.Format, rhi.ErrResourceCreation)
	}
	w, h := int32(desc.Size.Width), int32(desc.Size.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("create texture %q: empty size: %w", desc.Label, rhi.ErrResourceCreation)
	}

	t := &texture{width: int(w), height: int(h)}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := glError("texture", desc.Label); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// NewSampler creates a sampler object.
func (d *Device) NewSampler(desc gputypes.SamplerDescriptor) (rhi.Sampler, error) {
	if err := d.check("sampler", desc.Label); err != nil {
		return nil, err
	}

	s := &sampler{}
	gl.GenSamplers(1, &s.id)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, glFilter(desc.MinFilter, desc.MipmapFilter))
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, glFilter(desc.MagFilter, gputypes.MipmapFilterModeUndefined))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, glAddressMode(desc.AddressModeU))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, glAddressMode(desc.AddressModeV))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_R, glAddressMode(desc.AddressModeW))

	if err := glError("sampler", desc.Label); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// NewBindings validates the entries. GL has no bind group object; entries
// are applied in SetBindings.
func (d *Device) NewBindings(desc rhi.BindingsDescriptor) (rhi.Bindings, error) {
	if err := d.check("bindings", desc.Label); err != nil {
		return nil, err
	}
	for _, e := range desc.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("create bindings %q: entry %d has no name: %w", desc.Label, e.Index, rhi.ErrResourceCreation)
		}
		if !e.Complete() {
			return nil, fmt.Errorf("create bindings %q: entry %d has no resource: %w", desc.Label, e.Index, rhi.ErrResourceCreation)
		}
	}
	return &bindings{entries: desc.Entries}, nil
}

// NewPipeline compiles the shader program and creates the vertex array object.
func (d *Device) NewPipeline(desc rhi.PipelineDescriptor) (rhi.Pipeline, error) {
	if err := d.check("pipeline", desc.Label); err != nil {
		return nil, err
	}

	program, err := linkProgram(desc.Shader)
	var blocks map[string]uint32
	var samplers map[string]int32
	if err == nil {
		if blocks, samplers, err = resolveBindings(program, desc); err != nil {
			gl.DeleteProgram(program)
		}
	}
	if err != nil {
		logger.Error("shader program failed",
			zap.String("pipeline", desc.Label),
			zap.String("program", desc.Shader.Name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create pipeline %q: %v: %w", desc.Label, err, rhi.ErrResourceCreation)
	}

	p := &pipeline{program: program, desc: desc, mode: glTopology(desc.Primitive.Topology), blocks: blocks, samplers: samplers}
	gl.GenVertexArrays(1, &p.vao)

	if err := glError("pipeline", desc.Label); err != nil {
		p.Release()
		return nil, err
	}
	logger.Debug("pipeline created",
		zap.String("pipeline", desc.Label),
		zap.Uint32("program", program),
		zap.Stringer("topology", desc.Primitive.Topology),
	)
	return p, nil
}
