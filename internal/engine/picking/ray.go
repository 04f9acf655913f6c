// Package picking casts screen rays into the walkmesh.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

// epsilon rejects rays parallel to a triangle.
const epsilon = 1e-7

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// ScreenToRay converts pixel coordinates to a ray in the space that mvp
// projects from. Pixel y grows downward. yUp is false for backends whose
// clip space Y already points down (Vulkan).
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, mvp math.Mat4, yUp bool) (Ray, bool) {
	if viewportW <= 0 || viewportH <= 0 {
		return Ray{}, false
	}
	inv, ok := mvp.Inverse()
	if !ok {
		return Ray{}, false
	}

	ndcX := 2*screenX/viewportW - 1
	ndcY := 2*screenY/viewportH - 1
	if yUp {
		ndcY = -ndcY
	}

	// Depth 0 lies inside both the GL and the zero-to-one clip ranges.
	near := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 0})
	far := inv.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	dir := far.Sub(near).Normalize()
	if dir.IsZero() || !dir.IsFinite() || !near.IsFinite() {
		return Ray{}, false
	}
	return Ray{Origin: near, Direction: dir}, true
}

// IntersectTriangle returns the ray parameter of the hit with a-b-c.
// Both faces count; hits behind the origin do not.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float32, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < epsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PickTriangle returns the index of the nearest triangle the ray hits, or -1.
func PickTriangle(r Ray, tris []field.Triangle) int {
	best := -1
	bestT := float32(math32.MaxFloat32)
	for i, tri := range tris {
		t, ok := r.IntersectTriangle(tri.Vertices[0].Vec3(), tri.Vertices[1].Vec3(), tri.Vertices[2].Vec3())
		if ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
