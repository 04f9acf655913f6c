package gpures

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/internal/engine/overlay"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/engine/shader"
)

// Category selects one of the fixed pipeline configurations.
type Category int

const (
	CategoryBackground Category = iota
	CategoryLines
	CategoryMarkers
)

const categoryCount = 3

func (c Category) String() string {
	switch c {
	case CategoryBackground:
		return "background"
	case CategoryLines:
		return "lines"
	case CategoryMarkers:
		return "markers"
	default:
		return "unknown"
	}
}

// Binding slots shared by the built-in programs.
const (
	UniformSlot    = 0
	BackgroundSlot = 1
)

// quadVertexSize is the stride of the background quad: vec2 position, vec2 uv.
const quadVertexSize = 16

// backgroundQuad is a full-screen quad as two triangles: x, y, u, v.
var backgroundQuad = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	1, 1, 1, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	-1, 1, 0, 0,
}

// QuadVertices is the vertex count of the background quad.
const QuadVertices = 6

var colorVertexLayout = gputypes.VertexBufferLayout{
	ArrayStride: overlay.VertexSize,
	StepMode:    gputypes.VertexStepModeVertex,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
		{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // color
	},
}

var quadVertexLayout = gputypes.VertexBufferLayout{
	ArrayStride: quadVertexSize,
	StepMode:    gputypes.VertexStepModeVertex,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
		{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
	},
}

// pipelineConfig is one row of the fixed configuration table.
type pipelineConfig struct {
	program  string
	topology gputypes.PrimitiveTopology
	layout   gputypes.VertexBufferLayout
	binding  rhi.Binding
}

// None of the categories test depth: the background sits behind everything,
// lines are painted in tier order and markers always overlay the lines.
var pipelineTable = [categoryCount]pipelineConfig{
	CategoryBackground: {
		program:  shader.Background,
		topology: gputypes.PrimitiveTopologyTriangleList,
		layout:   quadVertexLayout,
		binding: rhi.Binding{
			Index:      BackgroundSlot,
			Type:       rhi.BindingSampledTexture,
			Name:       shader.BackgroundSampler,
			Visibility: gputypes.ShaderStageFragment,
		},
	},
	CategoryLines: {
		program:  shader.Walkmesh,
		topology: gputypes.PrimitiveTopologyLineList,
		layout:   colorVertexLayout,
		binding:  uniformLayout,
	},
	CategoryMarkers: {
		program:  shader.Walkmesh,
		topology: gputypes.PrimitiveTopologyTriangleList,
		layout:   colorVertexLayout,
		binding:  uniformLayout,
	},
}

var uniformLayout = rhi.Binding{
	Index:      UniformSlot,
	Type:       rhi.BindingUniformBuffer,
	Name:       shader.UniformBlock,
	Visibility: gputypes.ShaderStageVertex,
}

func (c pipelineConfig) descriptor(cat Category, src rhi.ShaderSource) rhi.PipelineDescriptor {
	return rhi.PipelineDescriptor{
		Label:  cat.String(),
		Shader: src,
		Primitive: gputypes.PrimitiveState{
			Topology:  c.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Layout:   c.layout,
		Bindings: []rhi.Binding{c.binding},
	}
}
