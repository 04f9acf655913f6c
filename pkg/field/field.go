// Package field exposes a read-only view of the field data the walkmesh view draws:
// walkmesh triangles, scene cameras, gateways, triggers and the background image.
package field

import (
	"image"

	"github.com/Faultbox/fieldview/pkg/math"
)

// FixedPointScale is the divisor that turns fixed-point coordinates into world units.
const FixedPointScale = 4096

// Sentinels marking unused gateway and trigger slots.
const (
	GatewayInactive uint16 = 0x7FFF
	TriggerInactive uint8  = 0xFF
)

// Vertex is a position in field/world units.
type Vertex struct {
	X, Y, Z float32
}

// Vec3 returns the vertex as a math vector.
func (v Vertex) Vec3() math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// FixedVertex is a vertex as stored by the game files.
type FixedVertex struct {
	X, Y, Z int16
}

// ToVertex converts without scaling; walkmesh coordinates are already in world units.
func (v FixedVertex) ToVertex() Vertex {
	return Vertex{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Scaled divides every component by scale. A zero scale returns the raw values.
func (v FixedVertex) Scaled(scale float32) Vertex {
	if scale == 0 {
		return v.ToVertex()
	}
	return Vertex{X: float32(v.X) / scale, Y: float32(v.Y) / scale, Z: float32(v.Z) / scale}
}

// Triangle is one walkmesh face. Its index in Source.Triangles is its selection identity.
type Triangle struct {
	Vertices [3]Vertex
}

// Gateway is an exit line leading to another field.
type Gateway struct {
	Line    [2]Vertex
	FieldID uint16
}

// Active reports whether the gateway slot is in use.
func (g Gateway) Active() bool {
	return g.FieldID != GatewayInactive
}

// Trigger is a door activation line.
type Trigger struct {
	Line   [2]Vertex
	DoorID uint8
}

// Active reports whether the trigger slot is in use.
func (t Trigger) Active() bool {
	return t.DoorID != TriggerInactive
}

// Camera is a scene camera record.
type Camera struct {
	Position Vertex
	// Axes holds the right, up and forward vectors.
	Axes [3]Vertex
	Zoom float32
}

// Right returns the camera's right axis.
func (c Camera) Right() math.Vec3 { return c.Axes[0].Vec3() }

// Up returns the camera's up axis.
func (c Camera) Up() math.Vec3 { return c.Axes[1].Vec3() }

// Forward returns the camera's viewing direction.
func (c Camera) Forward() math.Vec3 { return c.Axes[2].Vec3() }

// Source is the externally owned field data consumed by the renderer.
// Implementations must not be mutated while a frame is being built.
type Source interface {
	Triangles() []Triangle
	Cameras() []Camera
	Gateways() []Gateway
	Triggers() []Trigger
	// Background returns the background raster, or nil when the field has none.
	Background() image.Image
}

// CameraAt returns the camera at index id, or nil when src is nil or id is out of range.
func CameraAt(src Source, id int) *Camera {
	if src == nil || id < 0 {
		return nil
	}
	cams := src.Cameras()
	if id >= len(cams) {
		return nil
	}
	return &cams[id]
}

// Data is an in-memory Source.
type Data struct {
	Mesh  []Triangle
	Views []Camera
	Exits []Gateway
	Doors []Trigger
	Image image.Image
}

// Triangles implements Source.
func (d *Data) Triangles() []Triangle {
	if d == nil {
		return nil
	}
	return d.Mesh
}

// Cameras implements Source.
func (d *Data) Cameras() []Camera {
	if d == nil {
		return nil
	}
	return d.Views
}

// Gateways implements Source.
func (d *Data) Gateways() []Gateway {
	if d == nil {
		return nil
	}
	return d.Exits
}

// Triggers implements Source.
func (d *Data) Triggers() []Trigger {
	if d == nil {
		return nil
	}
	return d.Doors
}

// Background implements Source.
func (d *Data) Background() image.Image {
	if d == nil {
		return nil
	}
	return d.Image
}
