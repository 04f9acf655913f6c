package rhi

import "github.com/gogpu/gputypes"

// ShaderSource is a vertex+fragment program pair.
type ShaderSource struct {
	Name     string
	Vertex   []byte
	Fragment []byte
}

// BindingType is the kind of resource a binding slot holds.
type BindingType int

const (
	BindingUniformBuffer BindingType = iota
	BindingSampledTexture
)

// Binding is one entry of a bind group. Uniform buffer entries set Buffer;
// sampled texture entries set Texture and Sampler.
type Binding struct {
	Index uint32
	Type  BindingType
	// Name is the uniform block or sampler name backends without explicit
	// binding slots look the entry up by.
	Name       string
	Visibility gputypes.ShaderStage
	Buffer     Buffer
	Texture    Texture
	Sampler    Sampler
}

// BindingsDescriptor describes a bind group.
type BindingsDescriptor struct {
	Label   string
	Entries []Binding
}

// Complete reports whether the entry carries the resources its type needs.
func (b Binding) Complete() bool {
	if b.Type == BindingSampledTexture {
		return b.Texture != nil && b.Sampler != nil
	}
	return b.Buffer != nil
}

// UniformBinding returns a uniform buffer entry.
func UniformBinding(index uint32, name string, stage gputypes.ShaderStage, buf Buffer) Binding {
	return Binding{Index: index, Type: BindingUniformBuffer, Name: name, Visibility: stage, Buffer: buf}
}

// SampledTextureBinding returns a combined texture+sampler entry.
func SampledTextureBinding(index uint32, name string, stage gputypes.ShaderStage, tex Texture, s Sampler) Binding {
	return Binding{Index: index, Type: BindingSampledTexture, Name: name, Visibility: stage, Texture: tex, Sampler: s}
}

// PipelineDescriptor describes a graphics pipeline.
type PipelineDescriptor struct {
	Label     string
	Shader    ShaderSource
	Primitive gputypes.PrimitiveState
	// DepthStencil is nil when the pipeline neither tests nor writes depth.
	DepthStencil *gputypes.DepthStencilState
	Layout       gputypes.VertexBufferLayout
	// Bindings lists the entries the pipeline expects; resources are ignored.
	Bindings []Binding
}

// DepthTested reports whether the pipeline uses the depth buffer.
func (d PipelineDescriptor) DepthTested() bool {
	return d.DepthStencil != nil && d.DepthStencil.DepthCompare != gputypes.CompareFunctionAlways
}
