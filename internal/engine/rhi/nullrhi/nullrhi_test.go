package nullrhi

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
)

var _ rhi.Device = (*Device)(nil)
var _ rhi.CommandBuffer = (*CommandBuffer)(nil)

func vertexBuffer(t *testing.T, d *Device, size uint64) rhi.Buffer {
	t.Helper()
	buf, err := d.NewBuffer(gputypes.BufferDescriptor{Label: "vb", Size: size, Usage: gputypes.BufferUsageVertex})
	require.NoError(t, err)
	return buf
}

func linePipeline(t *testing.T, d *Device) rhi.Pipeline {
	t.Helper()
	p, err := d.NewPipeline(rhi.PipelineDescriptor{
		Label:     "lines",
		Shader:    rhi.ShaderSource{Name: "walkmesh", Vertex: []byte("v"), Fragment: []byte("f")},
		Primitive: gputypes.PrimitiveState{Topology: gputypes.PrimitiveTopologyLineList},
		Layout:    gputypes.VertexBufferLayout{ArrayStride: 24},
	})
	require.NoError(t, err)
	return p
}

func TestLiveResourceAccounting(t *testing.T) {
	d := New()
	buf := vertexBuffer(t, d, 48)
	p := linePipeline(t, d)
	assert.Equal(t, 2, d.Live())

	buf.Release()
	buf.Release()
	assert.Equal(t, 1, d.Live())
	assert.Equal(t, 0, d.LiveOf(KindBuffer))

	p.Release()
	assert.Equal(t, 0, d.Live())
	assert.Equal(t, 1, d.Created(KindPipeline))
}

func TestFaultInjection(t *testing.T) {
	d := New()
	d.Fail(KindTexture, 1)

	_, err := d.NewTexture(gputypes.TextureDescriptor{Size: gputypes.NewExtent2D(1, 1)})
	assert.ErrorIs(t, err, rhi.ErrResourceCreation)

	tex, err := d.NewTexture(gputypes.TextureDescriptor{Size: gputypes.NewExtent2D(1, 1)})
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	d.Lose()
	_, err = d.NewSampler(gputypes.LinearSamplerDescriptor())
	assert.ErrorIs(t, err, rhi.ErrDeviceLost)
	assert.Equal(t, 1, d.Live())
}

func TestInvalidDescriptors(t *testing.T) {
	d := New()

	_, err := d.NewBuffer(gputypes.BufferDescriptor{})
	assert.ErrorIs(t, err, rhi.ErrResourceCreation)

	_, err = d.NewPipeline(rhi.PipelineDescriptor{Label: "broken"})
	assert.ErrorIs(t, err, rhi.ErrResourceCreation)

	_, err = d.NewBindings(rhi.BindingsDescriptor{Entries: []rhi.Binding{{Index: 0}}})
	assert.ErrorIs(t, err, rhi.ErrResourceCreation)

	assert.Equal(t, 0, d.Live())
}

func TestPassAppliesUpdatesBeforeDraws(t *testing.T) {
	d := New()
	buf := vertexBuffer(t, d, 48)
	p := linePipeline(t, d)

	batch := d.NextUpdateBatch()
	batch.UpdateDynamicBuffer(buf, 24, []byte{1, 2, 3})

	cb := NewCommandBuffer(640, 480)
	cb.BeginPass(gputypes.ColorBlack, 1, batch)
	cb.SetPipeline(p)
	cb.SetViewport(rhi.FullViewport(cb.Target()))
	cb.SetVertexInput(buf, 0)
	cb.Draw(2)
	cb.EndPass()

	require.NoError(t, cb.Err())
	assert.Equal(t, []byte{1, 2, 3}, buf.(*Buffer).Bytes()[24:27])

	passes := cb.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, 1, passes[0].Updates)
	assert.Equal(t, gputypes.ColorBlack, passes[0].Clear)

	draws := cb.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "lines", draws[0].Pipeline.Label())
	assert.Equal(t, 2, draws[0].Vertices)
}

func TestDrawValidation(t *testing.T) {
	d := New()
	buf := vertexBuffer(t, d, 24)
	p := linePipeline(t, d)

	cb := NewCommandBuffer(1, 1)
	cb.Draw(1)
	assert.Error(t, cb.Err())

	cb.Reset()
	cb.BeginPass(gputypes.ColorBlack, 1, nil)
	cb.SetPipeline(p)
	cb.SetVertexInput(buf, 0)
	cb.Draw(2)
	cb.EndPass()
	assert.ErrorContains(t, cb.Err(), "need 48 bytes")
}

func TestUpdateOverflowIsRecorded(t *testing.T) {
	d := New()
	buf := vertexBuffer(t, d, 4)

	batch := d.NextUpdateBatch()
	batch.UpdateDynamicBuffer(buf, 2, []byte{1, 2, 3})

	cb := NewCommandBuffer(1, 1)
	cb.ResourceUpdate(batch)
	assert.ErrorContains(t, cb.Err(), "overflow")
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.(*Buffer).Bytes())
}

func TestReleasedResourceUse(t *testing.T) {
	d := New()
	buf := vertexBuffer(t, d, 24)
	buf.Release()

	cb := NewCommandBuffer(1, 1)
	cb.BeginPass(gputypes.ColorBlack, 1, nil)
	cb.SetVertexInput(buf, 0)
	cb.EndPass()
	assert.ErrorIs(t, cb.Err(), rhi.ErrReleased)
}

func TestTextureUpload(t *testing.T) {
	d := New()
	tex, err := d.NewTexture(gputypes.TextureDescriptor{Label: "bg", Size: gputypes.NewExtent2D(2, 2)})
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	batch := d.NextUpdateBatch()
	batch.UploadTexture(tex, img)

	cb := NewCommandBuffer(1, 1)
	cb.ResourceUpdate(batch)
	require.NoError(t, cb.Err())
	assert.Same(t, img, tex.(*Texture).Image())

	batch = d.NextUpdateBatch()
	batch.UploadTexture(tex, image.NewRGBA(image.Rect(0, 0, 3, 3)))
	cb.ResourceUpdate(batch)
	assert.Error(t, cb.Err())
}

func TestBackendClipSpace(t *testing.T) {
	assert.Equal(t, gputypes.BackendGL, New().Backend())

	d := NewWithBackend(gputypes.BackendVulkan)
	assert.Equal(t, gputypes.BackendVulkan, d.Backend())
	assert.Equal(t, float32(-1), d.ClipSpaceCorrection()[5])
}
