package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

// Rig is the user transform layered on top of the field camera.
type Rig struct {
	// Rotations in degrees, kept in [0, 360).
	RotationX, RotationY, RotationZ float32

	// Pan offsets along the camera right and up axes.
	PanX, PanY float32

	// Distance pulls the eye back along the view direction.
	Distance float32
}

// NewRig returns a rig with no user transform.
func NewRig() *Rig {
	return &Rig{}
}

// NormalizeAngle wraps deg into [0, 360).
func NormalizeAngle(deg float32) float32 {
	if math32.IsNaN(deg) || math32.IsInf(deg, 0) {
		return 0
	}
	deg = math32.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

func (r *Rig) SetRotationX(deg float32) { r.RotationX = NormalizeAngle(deg) }
func (r *Rig) SetRotationY(deg float32) { r.RotationY = NormalizeAngle(deg) }
func (r *Rig) SetRotationZ(deg float32) { r.RotationZ = NormalizeAngle(deg) }

// Rotate adds deltas in degrees to each rotation.
func (r *Rig) Rotate(dx, dy, dz float32) {
	r.SetRotationX(r.RotationX + dx)
	r.SetRotationY(r.RotationY + dy)
	r.SetRotationZ(r.RotationZ + dz)
}

// Pan moves the view by dx, dy.
func (r *Rig) Pan(dx, dy float32) {
	r.PanX += dx
	r.PanY += dy
}

// Reset clears the user transform.
func (r *Rig) Reset() {
	*r = Rig{}
}

// ModelMatrix returns Scale(-1,-1,1) * RotZ * RotY * RotX.
// The flip maps field coordinates (Y down) into the view's right-handed space.
func (r *Rig) ModelMatrix() math.Mat4 {
	m := math.Scale(-1, -1, 1)
	m = m.Mul(math.RotateZ(math.Radians(r.RotationZ)))
	m = m.Mul(math.RotateY(math.Radians(r.RotationY)))
	return m.Mul(math.RotateX(math.Radians(r.RotationX)))
}

// ViewMatrix looks through cam, or down the Z axis from DefaultEyeDistance
// when there is no usable camera.
func (r *Rig) ViewMatrix(cam *field.Camera) math.Mat4 {
	if cam != nil {
		if right, up, forward, ok := axes(cam); ok {
			eye := cam.Position.Vec3().
				Add(right.Scale(r.PanX)).
				Add(up.Scale(r.PanY)).
				Sub(forward.Normalize().Scale(r.Distance))
			return math.LookAt(eye, eye.Add(forward), up)
		}
	}
	eye := math.Vec3{X: r.PanX, Y: r.PanY, Z: DefaultEyeDistance + r.Distance}
	center := math.Vec3{X: r.PanX, Y: r.PanY}
	return math.LookAt(eye, center, worldUp)
}

// MVP returns projection * view * model for a target of width x height.
func (r *Rig) MVP(corr math.Mat4, cam *field.Camera, width, height int) math.Mat4 {
	proj := Projection(corr, FieldOfView(cam), width, height)
	return proj.Mul(r.ViewMatrix(cam)).Mul(r.ModelMatrix())
}
