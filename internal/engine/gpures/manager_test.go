package gpures

import (
	"image"
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fieldview/internal/engine/overlay"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/engine/rhi/nullrhi"
	"github.com/Faultbox/fieldview/internal/engine/shader"
	"github.com/Faultbox/fieldview/pkg/math"
)

// sessionSize is the resource count of a full session: five stream buffers,
// three pipelines, uniform and quad buffers, sampler, background texture and
// two binding sets.
const sessionSize = 14

func initialized(t *testing.T, dev *nullrhi.Device) (*Manager, *rhi.UpdateBatch) {
	t.Helper()
	m := New(shader.Builtin())
	batch := dev.NextUpdateBatch()
	require.NoError(t, m.Initialize(dev, batch, Hints{Triangles: 2}))
	return m, batch
}

func TestInitialize(t *testing.T) {
	dev := nullrhi.New()
	m, batch := initialized(t, dev)

	assert.True(t, m.Ready())
	assert.NoError(t, m.Err())
	assert.Equal(t, sessionSize, m.LiveResources())
	assert.Equal(t, sessionSize, dev.Live())

	assert.Equal(t, 2*6*overlay.VertexSize, m.Capacity(overlay.StreamWire))
	assert.Equal(t, 1024*2*overlay.VertexSize, m.Capacity(overlay.StreamExits))
	assert.Equal(t, 1024*2*overlay.VertexSize, m.Capacity(overlay.StreamDoors))
	assert.Equal(t, overlay.MarkerVertices*overlay.VertexSize, m.Capacity(overlay.StreamMarkers))

	// Quad data and the fallback texture ride the initial batch.
	require.Equal(t, 2, batch.Len())
	assert.Equal(t, rhi.OpUploadStaticBuffer, batch.Ops()[0].Kind)
	assert.Equal(t, rhi.OpUploadTexture, batch.Ops()[1].Kind)
}

func TestInitializeWithoutTriangleHint(t *testing.T) {
	dev := nullrhi.New()
	m := New(shader.Builtin())
	require.NoError(t, m.Initialize(dev, dev.NextUpdateBatch(), Hints{}))

	assert.Equal(t, 6*overlay.VertexSize, m.Capacity(overlay.StreamWire))
}

func TestInitializeIsIdempotent(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)

	require.NoError(t, m.Initialize(dev, dev.NextUpdateBatch(), Hints{Triangles: 500}))
	assert.Equal(t, sessionSize, dev.Created(nullrhi.KindBuffer)+dev.Created(nullrhi.KindPipeline)+
		dev.Created(nullrhi.KindSampler)+dev.Created(nullrhi.KindTexture)+dev.Created(nullrhi.KindBindings))
	assert.Equal(t, sessionSize, dev.Live())
}

func TestDeviceChangeRebuilds(t *testing.T) {
	first := nullrhi.New()
	m, _ := initialized(t, first)

	second := nullrhi.NewWithBackend(gputypes.BackendVulkan)
	require.NoError(t, m.Initialize(second, second.NextUpdateBatch(), Hints{}))

	assert.Equal(t, 0, first.Live(), "old session must be released")
	assert.Equal(t, sessionSize, second.Live())
	assert.Equal(t, rhi.Device(second), m.Device())
	assert.True(t, m.Ready())
}

func TestInitializeFailureIsAllOrNothing(t *testing.T) {
	dev := nullrhi.New()
	dev.Fail(nullrhi.KindPipeline, 1)

	m := New(shader.Builtin())
	batch := dev.NextUpdateBatch()
	err := m.Initialize(dev, batch, Hints{})
	require.ErrorIs(t, err, rhi.ErrResourceCreation)
	assert.Zero(t, batch.Len(), "no uploads for released resources")

	assert.False(t, m.Ready())
	assert.ErrorIs(t, m.Err(), rhi.ErrResourceCreation)
	assert.Equal(t, 0, dev.Live())
	assert.Equal(t, 0, m.LiveResources())

	// Same device: the failure stays latched.
	created := dev.Created(nullrhi.KindBuffer)
	assert.ErrorIs(t, m.Initialize(dev, dev.NextUpdateBatch(), Hints{}), rhi.ErrResourceCreation)
	assert.Equal(t, created, dev.Created(nullrhi.KindBuffer))

	// Releasing clears the latch.
	m.Release()
	assert.NoError(t, m.Err())
	require.NoError(t, m.Initialize(dev, dev.NextUpdateBatch(), Hints{}))
	assert.Equal(t, sessionSize, dev.Live())
}

func TestMissingProgram(t *testing.T) {
	dev := nullrhi.New()
	m := New(shader.New(fstest.MapFS{}, "."))

	err := m.Initialize(dev, dev.NextUpdateBatch(), Hints{})
	assert.ErrorIs(t, err, shader.ErrProgramNotFound)
	assert.ErrorIs(t, m.Err(), shader.ErrProgramNotFound)
	assert.Equal(t, 0, dev.Live())
}

func TestEnsureBufferGrowsOnly(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)
	initial := m.Capacity(overlay.StreamWire)

	tests := []struct {
		required int
		want     int
	}{
		{initial - 1, initial},
		{initial, initial},
		{initial + 1, 2 * initial},
		{10, 2 * initial},
		{10 * initial, 10 * initial},
		{0, 10 * initial},
	}
	for _, tt := range tests {
		require.NoError(t, m.EnsureBuffer(overlay.StreamWire, tt.required))
		assert.Equal(t, tt.want, m.Capacity(overlay.StreamWire), "required %d", tt.required)
		assert.GreaterOrEqual(t, m.Capacity(overlay.StreamWire), tt.required)
	}
	assert.Equal(t, sessionSize, dev.Live(), "grown buffers replace the old ones")
}

func TestGrowthFailureLatches(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)

	dev.Fail(nullrhi.KindBuffer, 1)
	err := m.EnsureBuffer(overlay.StreamMarkers, 1<<20)
	require.ErrorIs(t, err, rhi.ErrResourceCreation)

	assert.False(t, m.Ready())
	assert.Error(t, m.Err())
	assert.Error(t, m.Bind(nullrhi.NewCommandBuffer(1, 1), CategoryLines))
	assert.Error(t, m.UploadUniform(dev.NextUpdateBatch(), math.Identity()))
}

func TestNotReady(t *testing.T) {
	m := New(shader.Builtin())

	assert.ErrorIs(t, m.EnsureBuffer(overlay.StreamWire, 1), ErrNotReady)
	assert.ErrorIs(t, m.RebuildBackground(rhi.NewUpdateBatch(), nil), ErrNotReady)
	assert.ErrorIs(t, m.Initialize(nil, nil, Hints{}), ErrNotReady)
}

func TestUpload(t *testing.T) {
	dev := nullrhi.New()
	m, batch := initialized(t, dev)

	data := make([]byte, 5*m.Capacity(overlay.StreamExits))
	data[len(data)-1] = 7
	require.NoError(t, m.Upload(batch, overlay.StreamExits, data))
	require.NoError(t, m.Upload(batch, overlay.StreamDoors, nil))
	require.NoError(t, m.UploadUniform(batch, math.Translate(1, 2, 3)))

	cb := nullrhi.NewCommandBuffer(1, 1)
	cb.ResourceUpdate(batch)
	require.NoError(t, cb.Err())

	exits := m.Buffer(overlay.StreamExits).(*nullrhi.Buffer)
	assert.Equal(t, len(data), exits.Size())
	assert.Equal(t, byte(7), exits.Bytes()[len(data)-1])

	ops := batch.Ops()
	last := ops[len(ops)-1]
	mvp := math.Translate(1, 2, 3)
	assert.Len(t, last.Data, UniformSize)
	assert.Equal(t, floatBytes(mvp[:]), last.Data)
}

func TestFallbackBackground(t *testing.T) {
	dev := nullrhi.New()
	m, batch := initialized(t, dev)

	cb := nullrhi.NewCommandBuffer(1, 1)
	cb.ResourceUpdate(batch)
	require.NoError(t, cb.Err())

	tex := m.BackgroundTexture().(*nullrhi.Texture)
	w, h := tex.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	require.NotNil(t, tex.Image())
	assert.Equal(t, []byte{0, 0, 0, 0xff}, tex.Image().Pix)
}

func TestFallbackBackgroundFlag(t *testing.T) {
	dev := nullrhi.New()
	m := New(shader.Builtin())
	assert.False(t, m.FallbackBackground(), "no session yet")

	m, _ = initialized(t, dev)
	assert.True(t, m.FallbackBackground())

	require.NoError(t, m.RebuildBackground(dev.NextUpdateBatch(), image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assert.False(t, m.FallbackBackground())

	require.NoError(t, m.RebuildBackground(dev.NextUpdateBatch(), nil))
	assert.True(t, m.FallbackBackground())

	m.Release()
	assert.False(t, m.FallbackBackground())
}

func TestRebuildBackground(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)

	src := image.NewNRGBA(image.Rect(10, 10, 14, 13))
	src.Set(10, 10, color.NRGBA{R: 200, A: 255})

	batch := dev.NextUpdateBatch()
	require.NoError(t, m.RebuildBackground(batch, src))
	assert.Equal(t, 1, dev.LiveOf(nullrhi.KindTexture), "old texture released")
	assert.Equal(t, sessionSize, dev.Live())

	cb := nullrhi.NewCommandBuffer(1, 1)
	cb.ResourceUpdate(batch)
	require.NoError(t, cb.Err())

	tex := m.BackgroundTexture().(*nullrhi.Texture)
	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
	assert.Equal(t, color.RGBA{R: 200, A: 255}, tex.Image().RGBAAt(0, 0))

	// Back to the fallback.
	require.NoError(t, m.RebuildBackground(dev.NextUpdateBatch(), nil))
	w, h = m.BackgroundTexture().Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestRebuildBackgroundFailure(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)
	old := m.BackgroundTexture()

	dev.Fail(nullrhi.KindBindings, 1)
	err := m.RebuildBackground(dev.NextUpdateBatch(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.ErrorIs(t, err, rhi.ErrResourceCreation)

	assert.Same(t, old, m.BackgroundTexture())
	assert.Equal(t, sessionSize, dev.Live(), "half-built texture released")
	assert.False(t, m.Ready())
}

func TestBindCategories(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)

	tests := []struct {
		cat      Category
		topology gputypes.PrimitiveTopology
		stride   uint64
		bindings string
	}{
		{CategoryBackground, gputypes.PrimitiveTopologyTriangleList, 16, "background"},
		{CategoryLines, gputypes.PrimitiveTopologyLineList, 24, "uniforms"},
		{CategoryMarkers, gputypes.PrimitiveTopologyTriangleList, 24, "uniforms"},
	}
	for _, tt := range tests {
		t.Run(tt.cat.String(), func(t *testing.T) {
			cb := nullrhi.NewCommandBuffer(1, 1)
			cb.BeginPass(gputypes.ColorBlack, 1, nil)
			require.NoError(t, m.Bind(cb, tt.cat))
			cb.EndPass()
			require.NoError(t, cb.Err())

			cmds := cb.Commands()
			require.Len(t, cmds, 4)
			p := cmds[1].Pipeline
			assert.Equal(t, tt.cat.String(), p.Label())
			assert.Equal(t, tt.topology, p.Topology())
			assert.Equal(t, tt.stride, p.Descriptor().Layout.ArrayStride)
			assert.Nil(t, p.Descriptor().DepthStencil)
			assert.Equal(t, tt.bindings, cmds[2].Bindings.Label())
		})
	}

	assert.Error(t, m.Bind(nullrhi.NewCommandBuffer(1, 1), Category(9)))
}

func TestReleaseFreesEverything(t *testing.T) {
	dev := nullrhi.New()
	m, _ := initialized(t, dev)

	m.Release()
	assert.Equal(t, 0, dev.Live())
	assert.Equal(t, 0, m.LiveResources())
	assert.False(t, m.Ready())
	assert.Nil(t, m.Device())

	m.Release()
	assert.Equal(t, 0, dev.Live())
}
