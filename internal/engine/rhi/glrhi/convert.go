package glrhi

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gogpu/gputypes"
)

func glTopology(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func glCompare(f gputypes.CompareFunction) uint32 {
	switch f {
	case gputypes.CompareFunctionNever:
		return gl.NEVER
	case gputypes.CompareFunctionLess:
		return gl.LESS
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL
	case gputypes.CompareFunctionGreater:
		return gl.GREATER
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func glCullFace(m gputypes.CullMode) (uint32, bool) {
	switch m {
	case gputypes.CullModeFront:
		return gl.FRONT, true
	case gputypes.CullModeBack:
		return gl.BACK, true
	default:
		return 0, false
	}
}

// glAttribSize returns the component count of a float vertex format.
func glAttribSize(f gputypes.VertexFormat) int32 {
	switch f {
	case gputypes.VertexFormatFloat32:
		return 1
	case gputypes.VertexFormatFloat32x2:
		return 2
	case gputypes.VertexFormatFloat32x3:
		return 3
	case gputypes.VertexFormatFloat32x4:
		return 4
	default:
		return 0
	}
}

func glFilter(f gputypes.FilterMode, mip gputypes.MipmapFilterMode) int32 {
	linear := f == gputypes.FilterModeLinear
	switch mip {
	case gputypes.MipmapFilterModeNearest:
		if linear {
			return gl.LINEAR_MIPMAP_NEAREST
		}
		return gl.NEAREST_MIPMAP_NEAREST
	case gputypes.MipmapFilterModeLinear:
		if linear {
			return gl.LINEAR_MIPMAP_LINEAR
		}
		return gl.NEAREST_MIPMAP_LINEAR
	}
	if linear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func glAddressMode(m gputypes.AddressMode) int32 {
	switch m {
	case gputypes.AddressModeRepeat:
		return gl.REPEAT
	case gputypes.AddressModeMirrorRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func glBufferTarget(u gputypes.BufferUsage) uint32 {
	if u&gputypes.BufferUsageUniform != 0 {
		return gl.UNIFORM_BUFFER
	}
	return gl.ARRAY_BUFFER
}
