package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
	assert.InDelta(t, want.Z, got.Z, eps, "z")
}

func lookingDown() *field.Camera {
	return &field.Camera{
		Position: field.Vertex{Z: 100},
		Axes: [3]field.Vertex{
			{X: 1},
			{Y: 1},
			{Z: -1},
		},
		Zoom: 120,
	}
}

func TestFieldOfView(t *testing.T) {
	tests := []struct {
		name string
		cam  *field.Camera
		want float32
	}{
		{"no camera", nil, DefaultFOV},
		{"zero zoom", &field.Camera{}, DefaultFOV},
		{"negative zoom", &field.Camera{Zoom: -5}, DefaultFOV},
		{"nan zoom", &field.Camera{Zoom: math32.NaN()}, DefaultFOV},
		{"inf zoom", &field.Camera{Zoom: math32.Inf(1)}, DefaultFOV},
		{"zoom equals half sensor", &field.Camera{Zoom: 120}, 90},
		{"long lens", &field.Camera{Zoom: 240}, 2 * math.Degrees(math32.Atan(0.5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FieldOfView(tt.cam), eps)
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := map[float32]float32{
		0:    0,
		45:   45,
		360:  0,
		720:  0,
		-90:  270,
		-450: 270,
		365:  5,
	}
	for in, want := range tests {
		assert.InDelta(t, want, NormalizeAngle(in), eps, "angle %v", in)
	}
	assert.Equal(t, float32(0), NormalizeAngle(math32.NaN()))
}

func TestRigSetters(t *testing.T) {
	r := NewRig()
	r.SetRotationX(-10)
	r.SetRotationY(370)
	r.SetRotationZ(180)
	assert.InDelta(t, 350, r.RotationX, eps)
	assert.InDelta(t, 10, r.RotationY, eps)
	assert.InDelta(t, 180, r.RotationZ, eps)

	r.Rotate(20, -20, 180)
	assert.InDelta(t, 10, r.RotationX, eps)
	assert.InDelta(t, 350, r.RotationY, eps)
	assert.InDelta(t, 0, r.RotationZ, eps)

	r.Pan(10, -10)
	r.Pan(10, 0)
	assert.Equal(t, float32(20), r.PanX)
	assert.Equal(t, float32(-10), r.PanY)

	r.Distance = 50
	r.Reset()
	assert.Equal(t, Rig{}, *r)
}

func TestModelMatrixFlipsXY(t *testing.T) {
	r := NewRig()
	assertVec(t, math.Vec3{X: -1, Y: -2, Z: 3}, r.ModelMatrix().TransformPoint(math.Vec3{X: 1, Y: 2, Z: 3}))

	// RotX is applied first, then the flip.
	r.SetRotationX(90)
	assertVec(t, math.Vec3{Z: 1}, r.ModelMatrix().TransformPoint(math.Vec3{Y: 1}))

	r.Reset()
	r.SetRotationZ(90)
	assertVec(t, math.Vec3{Y: -1}, r.ModelMatrix().TransformPoint(math.Vec3{X: 1}))
}

func TestDefaultView(t *testing.T) {
	r := NewRig()
	view := r.ViewMatrix(nil)

	// The origin sits DefaultEyeDistance in front of the eye.
	assertVec(t, math.Vec3{Z: -DefaultEyeDistance}, view.TransformPoint(math.Vec3{}))

	r.Pan(30, -20)
	view = r.ViewMatrix(nil)
	assertVec(t, math.Vec3{Z: -DefaultEyeDistance}, view.TransformPoint(math.Vec3{X: 30, Y: -20}))

	r.Distance = 100
	view = r.ViewMatrix(nil)
	assertVec(t, math.Vec3{Z: -DefaultEyeDistance - 100}, view.TransformPoint(math.Vec3{X: 30, Y: -20}))
}

func TestFieldCameraView(t *testing.T) {
	cam := lookingDown()
	r := NewRig()

	view := r.ViewMatrix(cam)
	assertVec(t, math.Vec3{Z: -100}, view.TransformPoint(math.Vec3{}))
	assertVec(t, math.Vec3{X: 5, Y: 7, Z: -100}, view.TransformPoint(math.Vec3{X: 5, Y: 7}))

	// Panning moves the eye along the camera's right and up axes.
	r.Pan(5, 7)
	view = r.ViewMatrix(cam)
	assertVec(t, math.Vec3{Z: -100}, view.TransformPoint(math.Vec3{X: 5, Y: 7}))

	r.Distance = 50
	view = r.ViewMatrix(cam)
	assertVec(t, math.Vec3{Z: -150}, view.TransformPoint(math.Vec3{X: 5, Y: 7}))
}

func TestDegenerateFieldCameraFallsBack(t *testing.T) {
	cam := &field.Camera{Position: field.Vertex{X: 9}, Zoom: 120}
	r := NewRig()

	assert.Equal(t, r.ViewMatrix(nil), r.ViewMatrix(cam))

	cam.Axes[2] = field.Vertex{Z: -1}
	cam.Axes[1] = field.Vertex{Y: math32.NaN()}
	assert.True(t, r.ViewMatrix(cam).IsFinite())
}

func TestProjection(t *testing.T) {
	gl := Projection(rhi.ClipSpaceCorrection(gputypes.BackendGL), 90, 800, 400)

	near := gl.TransformPoint(math.Vec3{Z: -Near})
	far := gl.TransformPoint(math.Vec3{Z: -Far})
	assert.InDelta(t, -1, near.Z, eps)
	assert.InDelta(t, 1, far.Z, 1e-3)

	// aspect 2: x is squeezed by half relative to y.
	p := gl.TransformPoint(math.Vec3{X: 1, Y: 1, Z: -1})
	assert.InDelta(t, 0.5, p.X, eps)
	assert.InDelta(t, 1, p.Y, eps)

	vk := Projection(rhi.ClipSpaceCorrection(gputypes.BackendVulkan), 90, 800, 400)
	near = vk.TransformPoint(math.Vec3{Z: -Near})
	assert.InDelta(t, 0, near.Z, eps)
	p = vk.TransformPoint(math.Vec3{X: 1, Y: 1, Z: -1})
	assert.InDelta(t, -1, p.Y, eps)
}

func TestProjectionZeroHeight(t *testing.T) {
	corr := math.Identity()
	assert.Equal(t, Projection(corr, 70, 100, 100), Projection(corr, 70, 100, 0))
	assert.True(t, Projection(corr, 70, 0, 0).IsFinite())
}

func TestMVP(t *testing.T) {
	r := NewRig()
	corr := math.Identity()
	mvp := r.MVP(corr, nil, 640, 480)

	// The origin projects to the screen center.
	p := mvp.TransformPoint(math.Vec3{})
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 0, p.Y, eps)
	assert.True(t, p.Z > -1 && p.Z < 1)

	want := Projection(corr, DefaultFOV, 640, 480).Mul(r.ViewMatrix(nil)).Mul(r.ModelMatrix())
	assert.Equal(t, want, mvp)
}

func TestBasis(t *testing.T) {
	right, up := Basis(nil)
	assert.Equal(t, math.Vec3{X: 1}, right)
	assert.Equal(t, math.Vec3{Y: 1}, up)

	cam := lookingDown()
	cam.Axes[0] = field.Vertex{Y: 2}
	right, up = Basis(cam)
	assert.Equal(t, math.Vec3{Y: 2}, right)
	assert.Equal(t, math.Vec3{Y: 1}, up)
}
