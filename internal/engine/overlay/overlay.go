// Package overlay builds the CPU-side vertex streams drawn over the walkmesh view.
//
// Every stream holds interleaved position+color vertices, six float32 each:
// [x, y, z, r, g, b]. Streams are rebuilt every frame and handed straight to
// the GPU upload step.
package overlay

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/fieldview/internal/engine/edges"
	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

const (
	// FloatsPerVertex is the number of float32 values per vertex.
	FloatsPerVertex = 6
	// VertexSize is the byte stride of one vertex.
	VertexSize = FloatsPerVertex * 4
	// MarkerHalfSize is the default half extent of selection squares in world units.
	MarkerHalfSize = 10
	// MarkerVertices is the vertex count of one selection square (two triangles).
	MarkerVertices = 6
)

// Color is an RGB color.
type Color [3]float32

// Fixed colors per overlay category.
var (
	ColorInterior  = Color{1, 1, 1}
	ColorOuter     = Color{0, 1, 1}
	ColorHighlight = Color{1, 0.5, 0}
	ColorExit      = Color{1, 0, 0}
	ColorDoor      = Color{0, 1, 0}
	ColorGuide     = Color{1, 0, 1}
)

// TierColor returns the wireframe color of an edge tier.
func TierColor(t edges.Tier) Color {
	switch t {
	case edges.TierHighlight:
		return ColorHighlight
	case edges.TierOuter:
		return ColorOuter
	default:
		return ColorInterior
	}
}

// Stream identifies one vertex stream.
type Stream int

const (
	StreamWire Stream = iota
	StreamExits
	StreamDoors
	StreamGuide
	StreamMarkers
)

// StreamCount is the number of streams.
const StreamCount = 5

func (s Stream) String() string {
	switch s {
	case StreamWire:
		return "wire"
	case StreamExits:
		return "exits"
	case StreamDoors:
		return "doors"
	case StreamGuide:
		return "guide"
	case StreamMarkers:
		return "markers"
	default:
		return "unknown"
	}
}

// Buffer is one packed vertex stream.
type Buffer struct {
	Data     []byte
	Vertices int
}

// Empty reports whether the stream has nothing to draw.
func (b Buffer) Empty() bool {
	return b.Vertices == 0
}

// Vertex is a decoded stream vertex.
type Vertex struct {
	X, Y, Z float32
	R, G, B float32
}

// Position returns the vertex position.
func (v Vertex) Position() math.Vec3 {
	return math.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Color returns the vertex color.
func (v Vertex) Color() Color {
	return Color{v.R, v.G, v.B}
}

// At decodes vertex i.
func (b Buffer) At(i int) Vertex {
	off := i * VertexSize
	f := func(n int) float32 {
		return gomath.Float32frombits(binary.NativeEndian.Uint32(b.Data[off+n*4:]))
	}
	return Vertex{X: f(0), Y: f(1), Z: f(2), R: f(3), G: f(4), B: f(5)}
}

// Frame holds all streams for one frame.
type Frame struct {
	Streams [StreamCount]Buffer
	// TierVertices counts wireframe vertices per edge tier.
	TierVertices [edges.TierCount]int
}

// Stream returns the buffer for s.
func (f Frame) Stream(s Stream) Buffer {
	return f.Streams[s]
}

// writer packs vertices into a preallocated byte slice.
type writer struct {
	buf []byte
	off int
}

func newWriter(vertices int) *writer {
	return &writer{buf: make([]byte, vertices*VertexSize)}
}

func (w *writer) putFloat(f float32) {
	binary.NativeEndian.PutUint32(w.buf[w.off:], gomath.Float32bits(f))
	w.off += 4
}

func (w *writer) put(p math.Vec3, c Color) {
	w.putFloat(p.X)
	w.putFloat(p.Y)
	w.putFloat(p.Z)
	w.putFloat(c[0])
	w.putFloat(c[1])
	w.putFloat(c[2])
}

func (w *writer) line(a, b field.Vertex, c Color) {
	w.put(a.Vec3(), c)
	w.put(b.Vec3(), c)
}

func (w *writer) buffer() Buffer {
	return Buffer{Data: w.buf, Vertices: len(w.buf) / VertexSize}
}
