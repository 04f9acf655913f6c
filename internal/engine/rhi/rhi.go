// Package rhi is a small rendering hardware interface: the device, resource
// and command recording contracts the walkmesh renderer draws through.
//
// Descriptors use the WebGPU vocabulary from gputypes so every backend speaks
// the same enums. Backends live in subpackages (glrhi, nullrhi).
package rhi

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/pkg/math"
)

var (
	// ErrResourceCreation is returned when a backend fails to create a resource.
	ErrResourceCreation = errors.New("rhi: resource creation failed")
	// ErrDeviceLost is returned by a device that can no longer create resources.
	ErrDeviceLost = errors.New("rhi: device lost")
	// ErrReleased is returned when a released resource is used.
	ErrReleased = errors.New("rhi: resource released")
)

// Resource is any GPU object owned by the caller.
type Resource interface {
	// Release frees the native object. Calling it twice is a no-op.
	Release()
}

// Buffer is a GPU buffer.
type Buffer interface {
	Resource
	// Size returns the capacity in bytes.
	Size() int
	Usage() gputypes.BufferUsage
}

// Texture is a 2D texture.
type Texture interface {
	Resource
	Size() (width, height int)
}

// Sampler is a texture sampler.
type Sampler interface {
	Resource
}

// Bindings is a set of shader resource bindings (a bind group).
type Bindings interface {
	Resource
}

// Pipeline is a graphics pipeline state object.
type Pipeline interface {
	Resource
	Topology() gputypes.PrimitiveTopology
}

// Device creates resources for one native graphics context.
//
// Two Device values are the same device iff they compare equal.
type Device interface {
	Backend() gputypes.Backend
	// ClipSpaceCorrection maps OpenGL clip space onto the backend's clip space.
	ClipSpaceCorrection() math.Mat4

	NewBuffer(desc gputypes.BufferDescriptor) (Buffer, error)
	NewTexture(desc gputypes.TextureDescriptor) (Texture, error)
	NewSampler(desc gputypes.SamplerDescriptor) (Sampler, error)
	NewBindings(desc BindingsDescriptor) (Bindings, error)
	NewPipeline(desc PipelineDescriptor) (Pipeline, error)

	// NextUpdateBatch returns an empty batch for resource updates.
	NextUpdateBatch() *UpdateBatch
}

// RenderTarget describes the surface a command buffer renders into.
type RenderTarget struct {
	Width, Height int
}

// Viewport is a pixel rectangle with a depth range.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// FullViewport covers the whole target.
func FullViewport(t RenderTarget) Viewport {
	return Viewport{Width: float32(t.Width), Height: float32(t.Height), MaxDepth: 1}
}

// CommandBuffer records one frame of work.
//
// Updates passed to BeginPass or ResourceUpdate are applied before any draw
// recorded after them.
type CommandBuffer interface {
	Target() RenderTarget
	ResourceUpdate(batch *UpdateBatch)
	BeginPass(clear gputypes.Color, depth float32, batch *UpdateBatch)
	SetPipeline(p Pipeline)
	SetViewport(v Viewport)
	SetBindings(b Bindings)
	SetVertexInput(buf Buffer, offset int)
	Draw(vertices int)
	EndPass()
}

// Release releases every non-nil resource.
func Release(rs ...Resource) {
	for _, r := range rs {
		if r != nil {
			r.Release()
		}
	}
}
