package glrhi

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
)

type buffer struct {
	id     uint32
	target uint32
	size   int
	usage  gputypes.BufferUsage
}

func (b *buffer) Size() int                   { return b.size }
func (b *buffer) Usage() gputypes.BufferUsage { return b.usage }

func (b *buffer) Release() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

type texture struct {
	id            uint32
	width, height int
}

func (t *texture) Size() (int, int) { return t.width, t.height }

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

type sampler struct {
	id uint32
}

func (s *sampler) Release() {
	if s.id != 0 {
		gl.DeleteSamplers(1, &s.id)
		s.id = 0
	}
}

type bindings struct {
	entries []rhi.Binding
}

func (b *bindings) Release() {
	b.entries = nil
}

type pipeline struct {
	program uint32
	vao     uint32
	mode    uint32
	desc    rhi.PipelineDescriptor

	// blocks maps uniform block names to block indices.
	blocks map[string]uint32
	// samplers maps sampler names to uniform locations.
	samplers map[string]int32
}

func (p *pipeline) Topology() gputypes.PrimitiveTopology { return p.desc.Primitive.Topology }

func (p *pipeline) Release() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}
