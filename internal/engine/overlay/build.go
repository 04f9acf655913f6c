package overlay

import (
	"github.com/Faultbox/fieldview/internal/engine/edges"
	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

// Tierer assigns a display tier to an edge.
type Tierer interface {
	Tier(e edges.Edge) edges.Tier
}

// Selection is the selection state that produces markers.
// Indices are -1 when nothing is selected.
type Selection struct {
	Triangle int
	Gate     int
	Door     int
	// ShowGate and ShowDoor gate the gateway and trigger markers on the active tab.
	ShowGate bool
	ShowDoor bool
}

// NoSelection returns a Selection with nothing selected.
func NoSelection() Selection {
	return Selection{Triangle: -1, Gate: -1, Door: -1}
}

// Input is everything Build needs for one frame.
type Input struct {
	Edges     *edges.Set
	Tiers     Tierer
	Triangles []field.Triangle
	Gateways  []field.Gateway
	Triggers  []field.Trigger
	Selection Selection

	// Right and Up orient the selection squares towards the camera.
	Right, Up math.Vec3

	// Guide is an optional standalone line.
	Guide *[2]field.Vertex

	// MarkerHalfSize overrides the default square half extent when > 0.
	MarkerHalfSize float32
}

// Build produces every stream for one frame.
func Build(in Input) Frame {
	var f Frame
	f.Streams[StreamWire], f.TierVertices = buildWire(in.Edges, in.Tiers)
	f.Streams[StreamExits] = buildExits(in.Gateways)
	f.Streams[StreamDoors] = buildDoors(in.Triggers)
	f.Streams[StreamGuide] = buildGuide(in.Guide)
	f.Streams[StreamMarkers] = buildMarkers(in)
	return f
}

// buildWire writes the edges tier by tier, lowest first, so the selected
// triangle paints over the rim and the rim over interior edges.
func buildWire(set *edges.Set, tiers Tierer) (Buffer, [edges.TierCount]int) {
	var counts [edges.TierCount]int
	if set.Len() == 0 {
		return Buffer{}, counts
	}

	all := set.Edges()
	tierOf := make([]edges.Tier, len(all))
	for i, e := range all {
		t := edges.TierInterior
		if tiers != nil {
			t = tiers.Tier(e)
		} else if e.Highlight {
			t = edges.TierHighlight
		}
		tierOf[i] = t
		counts[t] += 2
	}

	w := newWriter(len(all) * 2)
	for t := edges.Tier(0); t < edges.TierCount; t++ {
		c := TierColor(t)
		for i, e := range all {
			if tierOf[i] == t {
				w.line(e.A, e.B, c)
			}
		}
	}
	return w.buffer(), counts
}

func buildExits(gates []field.Gateway) Buffer {
	n := 0
	for _, g := range gates {
		if g.Active() {
			n++
		}
	}
	if n == 0 {
		return Buffer{}
	}
	w := newWriter(n * 2)
	for _, g := range gates {
		if g.Active() {
			w.line(g.Line[0], g.Line[1], ColorExit)
		}
	}
	return w.buffer()
}

func buildDoors(trigs []field.Trigger) Buffer {
	n := 0
	for _, t := range trigs {
		if t.Active() {
			n++
		}
	}
	if n == 0 {
		return Buffer{}
	}
	w := newWriter(n * 2)
	for _, t := range trigs {
		if t.Active() {
			w.line(t.Line[0], t.Line[1], ColorDoor)
		}
	}
	return w.buffer()
}

func buildGuide(guide *[2]field.Vertex) Buffer {
	if guide == nil {
		return Buffer{}
	}
	w := newWriter(2)
	w.line(guide[0], guide[1], ColorGuide)
	return w.buffer()
}
