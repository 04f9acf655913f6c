package glrhi

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
	"go.uber.org/zap"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/logger"
)

// CommandBuffer executes commands immediately against the default framebuffer.
type CommandBuffer struct {
	size func() (int, int)

	pipeline *pipeline
}

// NewCommandBuffer returns a command buffer whose target size is queried
// from size, typically the window's drawable size.
func NewCommandBuffer(size func() (int, int)) *CommandBuffer {
	return &CommandBuffer{size: size}
}

func (cb *CommandBuffer) Target() rhi.RenderTarget {
	w, h := cb.size()
	return rhi.RenderTarget{Width: w, Height: h}
}

func (cb *CommandBuffer) ResourceUpdate(batch *rhi.UpdateBatch) {
	for _, op := range batch.Ops() {
		switch op.Kind {
		case rhi.OpUpdateDynamicBuffer, rhi.OpUploadStaticBuffer:
			b, ok := op.Buffer.(*buffer)
			if !ok || b.id == 0 || len(op.Data) == 0 {
				continue
			}
			if op.Offset+len(op.Data) > b.size {
				logger.Warn("buffer update overflows",
					zap.Int("offset", op.Offset),
					zap.Int("bytes", len(op.Data)),
					zap.Int("size", b.size),
				)
				continue
			}
			gl.BindBuffer(b.target, b.id)
			gl.BufferSubData(b.target, op.Offset, len(op.Data), gl.Ptr(op.Data))
			gl.BindBuffer(b.target, 0)
		case rhi.OpUploadTexture:
			t, ok := op.Texture.(*texture)
			if !ok || t.id == 0 || op.Image == nil {
				continue
			}
			img := op.Image
			w, h := img.Bounds().Dx(), img.Bounds().Dy()
			if w != t.width || h != t.height || w == 0 || h == 0 {
				logger.Warn("texture upload size mismatch",
					zap.Int("width", w), zap.Int("height", h),
					zap.Int("texWidth", t.width), zap.Int("texHeight", t.height),
				)
				continue
			}
			gl.BindTexture(gl.TEXTURE_2D, t.id)
			gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
			gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
			gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
			gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
			gl.BindTexture(gl.TEXTURE_2D, 0)
		}
	}
}

func (cb *CommandBuffer) BeginPass(clear gputypes.Color, depth float32, batch *rhi.UpdateBatch) {
	cb.ResourceUpdate(batch)
	cb.pipeline = nil

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.DepthMask(true)
	gl.ClearColor(float32(clear.R), float32(clear.G), float32(clear.B), float32(clear.A))
	gl.ClearDepth(float64(depth))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (cb *CommandBuffer) SetPipeline(p rhi.Pipeline) {
	pl, ok := p.(*pipeline)
	if !ok || pl.program == 0 {
		cb.pipeline = nil
		return
	}
	cb.pipeline = pl

	gl.UseProgram(pl.program)
	gl.BindVertexArray(pl.vao)

	if ds := pl.desc.DepthStencil; ds != nil {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(glCompare(ds.DepthCompare))
		gl.DepthMask(ds.DepthWriteEnabled)
	} else {
		gl.Disable(gl.DEPTH_TEST)
		gl.DepthMask(false)
	}

	if face, cull := glCullFace(pl.desc.Primitive.CullMode); cull {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(face)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (cb *CommandBuffer) SetViewport(v rhi.Viewport) {
	gl.Viewport(int32(v.X), int32(v.Y), int32(v.Width), int32(v.Height))
	gl.DepthRangef(v.MinDepth, v.MaxDepth)
}

func (cb *CommandBuffer) SetBindings(b rhi.Bindings) {
	bg, ok := b.(*bindings)
	if !ok || cb.pipeline == nil {
		return
	}
	p := cb.pipeline
	for _, e := range bg.entries {
		switch e.Type {
		case rhi.BindingUniformBuffer:
			buf, ok := e.Buffer.(*buffer)
			if !ok {
				continue
			}
			if idx, found := p.blocks[e.Name]; found && idx != gl.INVALID_INDEX {
				gl.UniformBlockBinding(p.program, idx, e.Index)
			}
			gl.BindBufferBase(gl.UNIFORM_BUFFER, e.Index, buf.id)
		case rhi.BindingSampledTexture:
			tex, ok := e.Texture.(*texture)
			if !ok {
				continue
			}
			gl.ActiveTexture(gl.TEXTURE0 + e.Index)
			gl.BindTexture(gl.TEXTURE_2D, tex.id)
			if s, ok := e.Sampler.(*sampler); ok {
				gl.BindSampler(e.Index, s.id)
			}
			if loc, found := p.samplers[e.Name]; found && loc >= 0 {
				gl.Uniform1i(loc, int32(e.Index))
			}
		}
	}
}

func (cb *CommandBuffer) SetVertexInput(buf rhi.Buffer, offset int) {
	b, ok := buf.(*buffer)
	if !ok || cb.pipeline == nil {
		return
	}
	layout := cb.pipeline.desc.Layout
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	for _, a := range layout.Attributes {
		gl.VertexAttribPointer(a.ShaderLocation, glAttribSize(a.Format), gl.FLOAT, false,
			int32(layout.ArrayStride), gl.PtrOffset(offset+int(a.Offset)))
		gl.EnableVertexAttribArray(a.ShaderLocation)
	}
}

func (cb *CommandBuffer) Draw(vertices int) {
	if cb.pipeline == nil || vertices <= 0 {
		return
	}
	gl.DrawArrays(cb.pipeline.mode, 0, int32(vertices))
}

func (cb *CommandBuffer) EndPass() {
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.UseProgram(0)
	cb.pipeline = nil
}
