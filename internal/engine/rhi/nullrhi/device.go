// Package nullrhi is a headless rhi backend. It keeps resource contents in
// memory and records every command so renderers can be driven and inspected
// without a GPU.
package nullrhi

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/pkg/math"
)

// Kind is a resource kind, used for fault injection and accounting.
type Kind int

const (
	KindBuffer Kind = iota
	KindTexture
	KindSampler
	KindBindings
	KindPipeline
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindSampler:
		return "sampler"
	case KindBindings:
		return "bindings"
	case KindPipeline:
		return "pipeline"
	default:
		return "unknown"
	}
}

// Device is an in-memory rhi.Device.
type Device struct {
	backend gputypes.Backend

	live    [kindCount]int
	created [kindCount]int

	// failures counts pending injected failures per kind.
	failures [kindCount]int
	lost     bool
}

// New returns a device reporting the OpenGL backend.
func New() *Device {
	return NewWithBackend(gputypes.BackendGL)
}

// NewWithBackend returns a device that reports backend and uses its clip space.
func NewWithBackend(backend gputypes.Backend) *Device {
	return &Device{backend: backend}
}

// Backend implements rhi.Device.
func (d *Device) Backend() gputypes.Backend { return d.backend }

// ClipSpaceCorrection implements rhi.Device.
func (d *Device) ClipSpaceCorrection() math.Mat4 {
	return rhi.ClipSpaceCorrection(d.backend)
}

// NextUpdateBatch implements rhi.Device.
func (d *Device) NextUpdateBatch() *rhi.UpdateBatch {
	return rhi.NewUpdateBatch()
}

// Fail makes the next n creations of kind fail with rhi.ErrResourceCreation.
func (d *Device) Fail(kind Kind, n int) {
	d.failures[kind] += n
}

// Lose marks the device as lost. Every later creation fails with rhi.ErrDeviceLost.
func (d *Device) Lose() {
	d.lost = true
}

// Live returns the number of resources created and not yet released.
func (d *Device) Live() int {
	n := 0
	for _, c := range d.live {
		n += c
	}
	return n
}

// LiveOf returns the live count for one kind.
func (d *Device) LiveOf(kind Kind) int {
	return d.live[kind]
}

// Created returns how many resources of kind were ever created.
func (d *Device) Created(kind Kind) int {
	return d.created[kind]
}

func (d *Device) create(kind Kind, label string) error {
	if d.lost {
		return fmt.Errorf("create %s %q: %w", kind, label, rhi.ErrDeviceLost)
	}
	if d.failures[kind] > 0 {
		d.failures[kind]--
		return fmt.Errorf("create %s %q: %w", kind, label, rhi.ErrResourceCreation)
	}
	d.live[kind]++
	d.created[kind]++
	return nil
}

func (d *Device) release(kind Kind) {
	d.live[kind]--
}

// NewBuffer implements rhi.Device.
func (d *Device) NewBuffer(desc gputypes.BufferDescriptor) (rhi.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: zero size: %w", desc.Label, rhi.ErrResourceCreation)
	}
	if err := d.create(KindBuffer, desc.Label); err != nil {
		return nil, err
	}
	return &Buffer{handle: handle{dev: d, kind: KindBuffer}, desc: desc, data: make([]byte, desc.Size)}, nil
}

// NewTexture implements rhi.Device.
func (d *Device) NewTexture(desc gputypes.TextureDescriptor) (rhi.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("create texture %q: empty size: %w", desc.Label, rhi.ErrResourceCreation)
	}
	if err := d.create(KindTexture, desc.Label); err != nil {
		return nil, err
	}
	return &Texture{handle: handle{dev: d, kind: KindTexture}, desc: desc}, nil
}

// NewSampler implements rhi.Device.
func (d *Device) NewSampler(desc gputypes.SamplerDescriptor) (rhi.Sampler, error) {
	if err := d.create(KindSampler, desc.Label); err != nil {
		return nil, err
	}
	return &Sampler{handle: handle{dev: d, kind: KindSampler}, desc: desc}, nil
}

// NewBindings implements rhi.Device.
func (d *Device) NewBindings(desc rhi.BindingsDescriptor) (rhi.Bindings, error) {
	for _, e := range desc.Entries {
		if !e.Complete() {
			return nil, fmt.Errorf("create bindings %q: entry %d has no resource: %w", desc.Label, e.Index, rhi.ErrResourceCreation)
		}
	}
	if err := d.create(KindBindings, desc.Label); err != nil {
		return nil, err
	}
	return &Bindings{handle: handle{dev: d, kind: KindBindings}, desc: desc}, nil
}

// NewPipeline implements rhi.Device.
func (d *Device) NewPipeline(desc rhi.PipelineDescriptor) (rhi.Pipeline, error) {
	if len(desc.Shader.Vertex) == 0 || len(desc.Shader.Fragment) == 0 {
		return nil, fmt.Errorf("create pipeline %q: missing shader stage: %w", desc.Label, rhi.ErrResourceCreation)
	}
	if err := d.create(KindPipeline, desc.Label); err != nil {
		return nil, err
	}
	return &Pipeline{handle: handle{dev: d, kind: KindPipeline}, desc: desc}, nil
}

type handle struct {
	dev      *Device
	kind     Kind
	released bool
}

func (h *handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.dev.release(h.kind)
}

// Released reports whether Release was called.
func (h *handle) Released() bool { return h.released }

// Buffer keeps its contents in memory.
type Buffer struct {
	handle
	desc gputypes.BufferDescriptor
	data []byte
}

func (b *Buffer) Size() int                   { return len(b.data) }
func (b *Buffer) Usage() gputypes.BufferUsage { return b.desc.Usage }
func (b *Buffer) Label() string               { return b.desc.Label }

// Bytes returns the current contents.
func (b *Buffer) Bytes() []byte { return b.data }

// Texture keeps the last uploaded image.
type Texture struct {
	handle
	desc gputypes.TextureDescriptor
	img  *image.RGBA
}

func (t *Texture) Size() (int, int) {
	return int(t.desc.Size.Width), int(t.desc.Size.Height)
}

func (t *Texture) Label() string { return t.desc.Label }

// Image returns the last uploaded image, or nil.
func (t *Texture) Image() *image.RGBA { return t.img }

// Sampler records its descriptor.
type Sampler struct {
	handle
	desc gputypes.SamplerDescriptor
}

func (s *Sampler) Descriptor() gputypes.SamplerDescriptor { return s.desc }

// Bindings records its descriptor.
type Bindings struct {
	handle
	desc rhi.BindingsDescriptor
}

func (b *Bindings) Label() string                       { return b.desc.Label }
func (b *Bindings) Descriptor() rhi.BindingsDescriptor { return b.desc }

// Pipeline records its descriptor.
type Pipeline struct {
	handle
	desc rhi.PipelineDescriptor
}

func (p *Pipeline) Topology() gputypes.PrimitiveTopology { return p.desc.Primitive.Topology }
func (p *Pipeline) Label() string                        { return p.desc.Label }
func (p *Pipeline) Descriptor() rhi.PipelineDescriptor   { return p.desc }
