// Package camera builds the view, model and projection matrices of the
// walkmesh view from an optional field camera and the user's rig.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

const (
	// HalfSensorHeight is half the virtual sensor height the field camera zoom is relative to.
	HalfSensorHeight = 120
	// DefaultFOV is the vertical field of view in degrees without a usable field camera.
	DefaultFOV = 70
	// Near and Far are the clip plane distances.
	Near = 1
	Far  = 10000
	// DefaultEyeDistance is the eye height above the ground plane without a field camera.
	DefaultEyeDistance = 500
)

var (
	worldRight = math.Vec3{X: 1}
	worldUp    = math.Vec3{Y: 1}
	worldFront = math.Vec3{Z: -1}
)

// FieldOfView returns the vertical field of view in degrees for cam.
func FieldOfView(cam *field.Camera) float32 {
	if cam == nil || !(cam.Zoom > 0) || math32.IsInf(cam.Zoom, 0) {
		return DefaultFOV
	}
	fov := math.Degrees(2 * math32.Atan(HalfSensorHeight/cam.Zoom))
	if math32.IsNaN(fov) || fov <= 0 {
		return DefaultFOV
	}
	return fov
}

// Projection returns corr * perspective(fov, width/height, Near, Far).
// A zero height gives an aspect of 1.
func Projection(corr math.Mat4, fovDeg float32, width, height int) math.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return corr.Mul(math.Perspective(math.Radians(fovDeg), aspect, Near, Far))
}

// Basis returns the screen-aligned right and up axes used to orient
// selection markers: the field camera axes, or world X and Y.
func Basis(cam *field.Camera) (right, up math.Vec3) {
	if cam == nil {
		return worldRight, worldUp
	}
	return cam.Right(), cam.Up()
}

// axes returns usable right, up and forward vectors of cam.
func axes(cam *field.Camera) (right, up, forward math.Vec3, ok bool) {
	right, up, forward = cam.Right(), cam.Up(), cam.Forward()
	if !forward.IsFinite() || forward.LengthSquared() == 0 {
		return worldRight, worldUp, worldFront, false
	}
	if !right.IsFinite() {
		right = math.Vec3{}
	}
	if !up.IsFinite() || up.LengthSquared() == 0 || up.Cross(forward).LengthSquared() == 0 {
		up = worldUp
		if up.Cross(forward).LengthSquared() == 0 {
			up = math.Vec3{Z: 1}
		}
	}
	return right, up, forward, true
}
