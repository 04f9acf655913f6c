package walkview

// Action is a discrete user command the host maps from keys or buttons.
type Action int

const (
	ActionNone Action = iota
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionRotateXNeg
	ActionRotateXPos
	ActionRotateYNeg
	ActionRotateYPos
	ActionRotateZNeg
	ActionRotateZPos
	ActionCloser
	ActionFarther
	ActionToggleBackground
	ActionNextTab
	ActionNextCamera
	ActionNextTriangle
	ActionPrevTriangle
	ActionResetCamera
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionPanLeft:          "pan-left",
	ActionPanRight:         "pan-right",
	ActionPanUp:            "pan-up",
	ActionPanDown:          "pan-down",
	ActionRotateXNeg:       "rotate-x-",
	ActionRotateXPos:       "rotate-x+",
	ActionRotateYNeg:       "rotate-y-",
	ActionRotateYPos:       "rotate-y+",
	ActionRotateZNeg:       "rotate-z-",
	ActionRotateZPos:       "rotate-z+",
	ActionCloser:           "closer",
	ActionFarther:          "farther",
	ActionToggleBackground: "toggle-background",
	ActionNextTab:          "next-tab",
	ActionNextCamera:       "next-camera",
	ActionNextTriangle:     "next-triangle",
	ActionPrevTriangle:     "prev-triangle",
	ActionResetCamera:      "reset-camera",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Steps are the increments applied per action.
type Steps struct {
	Pan      float32
	Rotate   float32 // degrees
	Distance float32
	// Drag is the pan per pixel of mouse drag.
	Drag float32
}

// DefaultSteps returns the stock increments.
func DefaultSteps() Steps {
	return Steps{Pan: 10, Rotate: 5, Distance: 50, Drag: 1}
}

// Apply performs a. It reports false for actions the view does not handle.
func (v *View) Apply(a Action, s Steps) bool {
	switch a {
	case ActionPanLeft:
		v.Pan(-s.Pan, 0)
	case ActionPanRight:
		v.Pan(s.Pan, 0)
	case ActionPanUp:
		v.Pan(0, s.Pan)
	case ActionPanDown:
		v.Pan(0, -s.Pan)
	case ActionRotateXNeg:
		v.Rotate(-s.Rotate, 0, 0)
	case ActionRotateXPos:
		v.Rotate(s.Rotate, 0, 0)
	case ActionRotateYNeg:
		v.Rotate(0, -s.Rotate, 0)
	case ActionRotateYPos:
		v.Rotate(0, s.Rotate, 0)
	case ActionRotateZNeg:
		v.Rotate(0, 0, -s.Rotate)
	case ActionRotateZPos:
		v.Rotate(0, 0, s.Rotate)
	case ActionCloser:
		v.SetDistance(v.rig.Distance - s.Distance)
	case ActionFarther:
		v.SetDistance(v.rig.Distance + s.Distance)
	case ActionToggleBackground:
		v.SetBackgroundVisible(!v.backgroundVisible)
	case ActionNextTab:
		v.SetCurrentTab((v.sel.Tab + 1) % TabCount)
	case ActionNextCamera:
		v.SetCurrentFieldCamera(cycle(v.cameraID, len(v.cameras()), 1))
	case ActionNextTriangle:
		v.SetSelectedTriangle(cycle(v.sel.Triangle, len(v.triangles()), 1))
	case ActionPrevTriangle:
		v.SetSelectedTriangle(cycle(v.sel.Triangle, len(v.triangles()), -1))
	case ActionResetCamera:
		v.ResetCamera()
	default:
		return false
	}
	return true
}

// Wheel moves the camera closer by s.Distance per positive notch and
// farther for negative ones.
func (v *View) Wheel(notches float32, s Steps) {
	if notches == 0 {
		return
	}
	v.SetDistance(v.rig.Distance - notches*s.Distance)
}

// Drag pans by a mouse movement of (dx, dy) window pixels. Window y grows
// downwards, so dragging down moves the view down.
func (v *View) Drag(dx, dy float32, s Steps) {
	if dx == 0 && dy == 0 {
		return
	}
	v.Pan(dx*s.Drag, -dy*s.Drag)
}

// cycle steps through NoSelection, 0 .. n-1 and back to NoSelection.
func cycle(cur, n, dir int) int {
	if n <= 0 {
		return NoSelection
	}
	if cur < NoSelection || cur >= n {
		cur = NoSelection
	}
	// Shift so NoSelection maps to 0.
	next := (cur + 1 + dir) % (n + 1)
	if next < 0 {
		next += n + 1
	}
	return next - 1
}
