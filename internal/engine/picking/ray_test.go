package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

func TestIntersectTriangle(t *testing.T) {
	a, b, c := math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1}
	down := math.Vec3{Z: -1}

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"inside", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: 5}, Direction: down}, true, 5},
		{"back face", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: -2}, Direction: math.Vec3{Z: 1}}, true, 2},
		{"outside", Ray{Origin: math.Vec3{X: 0.75, Y: 0.75, Z: 5}, Direction: down}, false, 0},
		{"behind origin", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: -1}, Direction: down}, false, 0},
		{"parallel", Ray{Origin: math.Vec3{X: 0.25, Y: 0.25, Z: 1}, Direction: math.Vec3{X: 1}}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectTriangle(a, b, c)
			assert.Equal(t, tt.hit, hit)
			if tt.hit {
				assert.InDelta(t, tt.wantT, got, 1e-5)
			}
		})
	}
}

func TestPickTriangleNearest(t *testing.T) {
	tris := []field.Triangle{
		{Vertices: [3]field.Vertex{{X: -5, Y: -5}, {X: 5, Y: -5}, {Y: 5}}},
		{Vertices: [3]field.Vertex{{X: -5, Y: -5, Z: 2}, {X: 5, Y: -5, Z: 2}, {Y: 5, Z: 2}}},
		{Vertices: [3]field.Vertex{{X: 10}, {X: 11}, {X: 10, Y: 1}}},
	}
	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	assert.Equal(t, 1, PickTriangle(r, tris))

	miss := Ray{Origin: math.Vec3{X: 50, Z: 10}, Direction: math.Vec3{Z: -1}}
	assert.Equal(t, -1, PickTriangle(miss, tris))
	assert.Equal(t, -1, PickTriangle(r, nil))
}

func TestPickTriangleNearestFirst(t *testing.T) {
	near := field.Triangle{Vertices: [3]field.Vertex{{X: -5, Y: -5, Z: 2}, {X: 5, Y: -5, Z: 2}, {Y: 5, Z: 2}}}
	far := field.Triangle{Vertices: [3]field.Vertex{{X: -5, Y: -5}, {X: 5, Y: -5}, {Y: 5}}}
	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}

	assert.Equal(t, 0, PickTriangle(r, []field.Triangle{near, far}))
	assert.Equal(t, 1, PickTriangle(r, []field.Triangle{far, near}))
	assert.Equal(t, 0, PickTriangle(r, []field.Triangle{far}))
}

func TestScreenToRayCenter(t *testing.T) {
	eye := math.Vec3{Z: 10}
	view := math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(math.Radians(60), 1, 1, 100)
	mvp := proj.Mul(view)

	r, ok := ScreenToRay(50, 50, 100, 100, mvp, true)
	require.True(t, ok)
	assert.InDelta(t, 0, r.Direction.X, 1e-4)
	assert.InDelta(t, 0, r.Direction.Y, 1e-4)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)

	// Upper half of the screen looks up.
	up, ok := ScreenToRay(50, 10, 100, 100, mvp, true)
	require.True(t, ok)
	assert.Greater(t, up.Direction.Y, float32(0))

	flipped, ok := ScreenToRay(50, 10, 100, 100, mvp, false)
	require.True(t, ok)
	assert.Less(t, flipped.Direction.Y, float32(0))
}

func TestScreenToRayRejectsBadInput(t *testing.T) {
	_, ok := ScreenToRay(1, 1, 0, 100, math.Identity(), true)
	assert.False(t, ok)

	_, ok = ScreenToRay(1, 1, 100, 100, math.Mat4{}, true)
	assert.False(t, ok)
}
