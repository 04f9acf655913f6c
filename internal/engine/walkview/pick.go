package walkview

import (
	"github.com/Faultbox/fieldview/internal/engine/picking"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

// TriangleAt returns the triangle under pixel (x, y) of a target, or
// NoSelection. It uses the same transform the last frame was drawn with.
func (v *View) TriangleAt(x, y float32, target rhi.RenderTarget) int {
	tris := v.triangles()
	if len(tris) == 0 {
		return NoSelection
	}

	corr := math.Identity()
	if v.dev != nil {
		corr = v.dev.ClipSpaceCorrection()
	}
	cam := field.CameraAt(v.src, v.cameraID)
	mvp := v.rig.MVP(corr, cam, target.Width, target.Height)

	// A negative Y scale means clip space already points down.
	ray, ok := picking.ScreenToRay(x, y, float32(target.Width), float32(target.Height), mvp, corr[5] >= 0)
	if !ok {
		return NoSelection
	}
	return picking.PickTriangle(ray, tris)
}

// SelectTriangleAt selects the triangle under pixel (x, y) and returns it.
// Clicking empty space clears the selection.
func (v *View) SelectTriangleAt(x, y float32, target rhi.RenderTarget) int {
	i := v.TriangleAt(x, y, target)
	v.SetSelectedTriangle(i)
	return i
}
