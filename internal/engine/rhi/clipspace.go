package rhi

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/pkg/math"
)

// ClipSpaceCorrection returns the matrix that converts OpenGL-style clip
// coordinates (Y up, depth -1..1) into the clip space of backend.
func ClipSpaceCorrection(backend gputypes.Backend) math.Mat4 {
	m := math.Identity()
	switch backend {
	case gputypes.BackendVulkan:
		// Y points down, depth 0..1.
		m[5] = -1
		m[10] = 0.5
		m[14] = 0.5
	case gputypes.BackendDX12, gputypes.BackendMetal, gputypes.BackendBrowserWebGPU:
		m[10] = 0.5
		m[14] = 0.5
	}
	return m
}
