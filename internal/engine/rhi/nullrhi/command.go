package nullrhi

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
)

// CommandKind identifies a recorded command.
type CommandKind int

const (
	CmdResourceUpdate CommandKind = iota
	CmdBeginPass
	CmdSetPipeline
	CmdSetViewport
	CmdSetBindings
	CmdSetVertexInput
	CmdDraw
	CmdEndPass
)

func (k CommandKind) String() string {
	switch k {
	case CmdResourceUpdate:
		return "resource-update"
	case CmdBeginPass:
		return "begin-pass"
	case CmdSetPipeline:
		return "set-pipeline"
	case CmdSetViewport:
		return "set-viewport"
	case CmdSetBindings:
		return "set-bindings"
	case CmdSetVertexInput:
		return "set-vertex-input"
	case CmdDraw:
		return "draw"
	case CmdEndPass:
		return "end-pass"
	default:
		return "unknown"
	}
}

// Command is one recorded call.
type Command struct {
	Kind CommandKind

	Clear gputypes.Color
	Depth float32
	// Updates is the number of ops applied by BeginPass or ResourceUpdate.
	Updates int

	Pipeline *Pipeline
	Viewport rhi.Viewport
	Bindings *Bindings
	Buffer   *Buffer
	Offset   int
	Vertices int
}

// Draw is the state a draw call was issued with.
type Draw struct {
	Pipeline *Pipeline
	Bindings *Bindings
	Buffer   *Buffer
	Offset   int
	Vertices int
}

// CommandBuffer records commands and applies resource updates immediately.
type CommandBuffer struct {
	target rhi.RenderTarget
	cmds   []Command
	errs   []error

	inPass   bool
	pipeline *Pipeline
	bindings *Bindings
	vbuf     *Buffer
	voff     int
}

// NewCommandBuffer returns a command buffer for a width x height target.
func NewCommandBuffer(width, height int) *CommandBuffer {
	return &CommandBuffer{target: rhi.RenderTarget{Width: width, Height: height}}
}

// Target implements rhi.CommandBuffer.
func (cb *CommandBuffer) Target() rhi.RenderTarget { return cb.target }

// Resize changes the render target size.
func (cb *CommandBuffer) Resize(width, height int) {
	cb.target = rhi.RenderTarget{Width: width, Height: height}
}

// ResourceUpdate implements rhi.CommandBuffer.
func (cb *CommandBuffer) ResourceUpdate(batch *rhi.UpdateBatch) {
	n := cb.apply(batch)
	cb.cmds = append(cb.cmds, Command{Kind: CmdResourceUpdate, Updates: n})
}

// BeginPass implements rhi.CommandBuffer.
func (cb *CommandBuffer) BeginPass(clear gputypes.Color, depth float32, batch *rhi.UpdateBatch) {
	if cb.inPass {
		cb.fail(errors.New("begin pass: pass already open"))
	}
	n := cb.apply(batch)
	cb.inPass = true
	cb.pipeline, cb.bindings, cb.vbuf, cb.voff = nil, nil, nil, 0
	cb.cmds = append(cb.cmds, Command{Kind: CmdBeginPass, Clear: clear, Depth: depth, Updates: n})
}

// SetPipeline implements rhi.CommandBuffer.
func (cb *CommandBuffer) SetPipeline(p rhi.Pipeline) {
	pl, _ := p.(*Pipeline)
	cb.requirePass("set pipeline")
	if pl == nil || pl.released {
		cb.fail(fmt.Errorf("set pipeline: %w", rhi.ErrReleased))
	}
	cb.pipeline = pl
	cb.cmds = append(cb.cmds, Command{Kind: CmdSetPipeline, Pipeline: pl})
}

// SetViewport implements rhi.CommandBuffer.
func (cb *CommandBuffer) SetViewport(v rhi.Viewport) {
	cb.requirePass("set viewport")
	cb.cmds = append(cb.cmds, Command{Kind: CmdSetViewport, Viewport: v})
}

// SetBindings implements rhi.CommandBuffer.
func (cb *CommandBuffer) SetBindings(b rhi.Bindings) {
	bg, _ := b.(*Bindings)
	cb.requirePass("set bindings")
	if bg == nil || bg.released {
		cb.fail(fmt.Errorf("set bindings: %w", rhi.ErrReleased))
	}
	cb.bindings = bg
	cb.cmds = append(cb.cmds, Command{Kind: CmdSetBindings, Bindings: bg})
}

// SetVertexInput implements rhi.CommandBuffer.
func (cb *CommandBuffer) SetVertexInput(buf rhi.Buffer, offset int) {
	vb, _ := buf.(*Buffer)
	cb.requirePass("set vertex input")
	if vb == nil || vb.released {
		cb.fail(fmt.Errorf("set vertex input: %w", rhi.ErrReleased))
	}
	cb.vbuf, cb.voff = vb, offset
	cb.cmds = append(cb.cmds, Command{Kind: CmdSetVertexInput, Buffer: vb, Offset: offset})
}

// Draw implements rhi.CommandBuffer. It validates that the bound vertex
// buffer holds enough data for the pipeline's stride.
func (cb *CommandBuffer) Draw(vertices int) {
	cb.requirePass("draw")
	switch {
	case cb.pipeline == nil:
		cb.fail(errors.New("draw: no pipeline"))
	case cb.vbuf == nil:
		cb.fail(errors.New("draw: no vertex input"))
	default:
		need := cb.voff + vertices*int(cb.pipeline.desc.Layout.ArrayStride)
		if need > cb.vbuf.Size() {
			cb.fail(fmt.Errorf("draw %d vertices: need %d bytes, buffer %q holds %d",
				vertices, need, cb.vbuf.Label(), cb.vbuf.Size()))
		}
	}
	cb.cmds = append(cb.cmds, Command{
		Kind:     CmdDraw,
		Pipeline: cb.pipeline,
		Bindings: cb.bindings,
		Buffer:   cb.vbuf,
		Offset:   cb.voff,
		Vertices: vertices,
	})
}

// EndPass implements rhi.CommandBuffer.
func (cb *CommandBuffer) EndPass() {
	cb.requirePass("end pass")
	cb.inPass = false
	cb.cmds = append(cb.cmds, Command{Kind: CmdEndPass})
}

func (cb *CommandBuffer) apply(batch *rhi.UpdateBatch) int {
	ops := batch.Ops()
	for _, op := range ops {
		switch op.Kind {
		case rhi.OpUpdateDynamicBuffer, rhi.OpUploadStaticBuffer:
			buf, _ := op.Buffer.(*Buffer)
			if buf == nil || buf.released {
				cb.fail(fmt.Errorf("%s: %w", op.Kind, rhi.ErrReleased))
				continue
			}
			if op.Offset < 0 || op.Offset+len(op.Data) > len(buf.data) {
				cb.fail(fmt.Errorf("%s: %d bytes at %d overflow buffer %q of %d",
					op.Kind, len(op.Data), op.Offset, buf.Label(), len(buf.data)))
				continue
			}
			copy(buf.data[op.Offset:], op.Data)
		case rhi.OpUploadTexture:
			tex, _ := op.Texture.(*Texture)
			if tex == nil || tex.released {
				cb.fail(fmt.Errorf("%s: %w", op.Kind, rhi.ErrReleased))
				continue
			}
			w, h := tex.Size()
			if op.Image == nil || op.Image.Bounds().Dx() != w || op.Image.Bounds().Dy() != h {
				cb.fail(fmt.Errorf("%s: image does not match texture %q (%dx%d)", op.Kind, tex.Label(), w, h))
				continue
			}
			tex.img = op.Image
		}
	}
	return len(ops)
}

func (cb *CommandBuffer) requirePass(what string) {
	if !cb.inPass {
		cb.fail(fmt.Errorf("%s: outside of a pass", what))
	}
}

func (cb *CommandBuffer) fail(err error) {
	cb.errs = append(cb.errs, err)
}

// Err returns every validation failure recorded so far, joined.
func (cb *CommandBuffer) Err() error {
	return errors.Join(cb.errs...)
}

// Commands returns the recorded commands.
func (cb *CommandBuffer) Commands() []Command { return cb.cmds }

// Draws returns the draw calls in submission order.
func (cb *CommandBuffer) Draws() []Draw {
	var out []Draw
	for _, c := range cb.cmds {
		if c.Kind == CmdDraw {
			out = append(out, Draw{
				Pipeline: c.Pipeline,
				Bindings: c.Bindings,
				Buffer:   c.Buffer,
				Offset:   c.Offset,
				Vertices: c.Vertices,
			})
		}
	}
	return out
}

// Passes returns the BeginPass commands.
func (cb *CommandBuffer) Passes() []Command {
	var out []Command
	for _, c := range cb.cmds {
		if c.Kind == CmdBeginPass {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recording for the next frame.
func (cb *CommandBuffer) Reset() {
	cb.cmds = cb.cmds[:0]
	cb.errs = nil
	cb.inPass = false
	cb.pipeline, cb.bindings, cb.vbuf, cb.voff = nil, nil, nil, 0
}
