package walkview

import (
	"github.com/Faultbox/fieldview/pkg/field"
)

// Fill replaces the field data. The outer rim and the background are rebuilt
// on the next frame.
func (v *View) Fill(src field.Source) {
	v.src = src
	v.classifier.Invalidate()
	v.bgDirty = true
}

// Clear drops the field data.
func (v *View) Clear() {
	v.Fill(nil)
}

func (v *View) SetXRotation(deg float32) { v.rig.SetRotationX(deg) }
func (v *View) SetYRotation(deg float32) { v.rig.SetRotationY(deg) }
func (v *View) SetZRotation(deg float32) { v.rig.SetRotationZ(deg) }

// Rotate adds deltas in degrees to the user rotation.
func (v *View) Rotate(dx, dy, dz float32) { v.rig.Rotate(dx, dy, dz) }

// Pan moves the view by dx, dy.
func (v *View) Pan(dx, dy float32) { v.rig.Pan(dx, dy) }

// SetPan sets the absolute pan offsets.
func (v *View) SetPan(x, y float32) {
	v.rig.PanX, v.rig.PanY = x, y
}

// SetDistance sets how far the eye is pulled back along the view direction.
func (v *View) SetDistance(d float32) { v.rig.Distance = d }

// ResetCamera clears rotations, pan and distance.
func (v *View) ResetCamera() { v.rig.Reset() }

// SetCurrentFieldCamera selects the field camera to look through.
// An index without a camera falls back to the default view.
func (v *View) SetCurrentFieldCamera(id int) { v.cameraID = id }

func (v *View) SetBackgroundVisible(visible bool) { v.backgroundVisible = visible }

func (v *View) SetCurrentTab(tab Tab) { v.sel.Tab = tab }

// SetSelectedTriangle selects a triangle; NoSelection clears it.
func (v *View) SetSelectedTriangle(i int) { v.sel.Triangle = normalizeIndex(i) }

// SetSelectedDoor selects a trigger; NoSelection clears it.
func (v *View) SetSelectedDoor(i int) { v.sel.Door = normalizeIndex(i) }

// SetSelectedGate selects a gateway; NoSelection clears it.
func (v *View) SetSelectedGate(i int) { v.sel.Gate = normalizeIndex(i) }

// SetLineToDraw shows a standalone guide line from a to b.
func (v *View) SetLineToDraw(a, b field.Vertex) {
	v.guide = &[2]field.Vertex{a, b}
}

// ClearLineToDraw hides the guide line.
func (v *View) ClearLineToDraw() { v.guide = nil }

func normalizeIndex(i int) int {
	if i < 0 {
		return NoSelection
	}
	return i
}
