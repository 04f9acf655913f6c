package overlay

import (
	"github.com/Faultbox/fieldview/pkg/field"
	"github.com/Faultbox/fieldview/pkg/math"
)

// basisEpsilon is the squared length below which an axis counts as degenerate.
const basisEpsilon = 1e-12

var (
	worldRight = math.Vec3{X: 1}
	worldUp    = math.Vec3{Y: 1}
)

// SanitizeBasis normalizes the camera axes used for selection squares.
// A non-finite or near-zero axis is replaced by the matching world axis.
func SanitizeBasis(right, up math.Vec3) (math.Vec3, math.Vec3) {
	return sanitizeAxis(right, worldRight), sanitizeAxis(up, worldUp)
}

func sanitizeAxis(v, fallback math.Vec3) math.Vec3 {
	if !v.IsFinite() || v.LengthSquared() < basisEpsilon {
		return fallback
	}
	n := v.Normalize()
	if !n.IsFinite() || n.IsZero() {
		return fallback
	}
	return n
}

type marker struct {
	at    math.Vec3
	color Color
}

// selectedPoints lists the marker centers for the current selection:
// triangle corners first, then gateway endpoints, then trigger endpoints.
func selectedPoints(in Input) []marker {
	var pts []marker
	sel := in.Selection

	if sel.Triangle >= 0 && sel.Triangle < len(in.Triangles) {
		for _, v := range in.Triangles[sel.Triangle].Vertices {
			pts = append(pts, marker{v.Vec3(), ColorHighlight})
		}
	}
	if sel.ShowGate && sel.Gate >= 0 && sel.Gate < len(in.Gateways) {
		if g := in.Gateways[sel.Gate]; g.Active() {
			pts = append(pts, lineMarkers(g.Line, ColorExit)...)
		}
	}
	if sel.ShowDoor && sel.Door >= 0 && sel.Door < len(in.Triggers) {
		if t := in.Triggers[sel.Door]; t.Active() {
			pts = append(pts, lineMarkers(t.Line, ColorDoor)...)
		}
	}
	return pts
}

func lineMarkers(line [2]field.Vertex, c Color) []marker {
	return []marker{{line[0].Vec3(), c}, {line[1].Vec3(), c}}
}

// buildMarkers emits one camera-facing square per selected point.
func buildMarkers(in Input) Buffer {
	pts := selectedPoints(in)
	if len(pts) == 0 {
		return Buffer{}
	}

	s := in.MarkerHalfSize
	if s <= 0 {
		s = MarkerHalfSize
	}
	right, up := SanitizeBasis(in.Right, in.Up)
	r, u := right.Scale(s), up.Scale(s)

	w := newWriter(len(pts) * MarkerVertices)
	for _, p := range pts {
		a := p.at.Sub(r).Sub(u)
		b := p.at.Add(r).Sub(u)
		d := p.at.Add(r).Add(u)
		e := p.at.Sub(r).Add(u)
		w.put(a, p.color)
		w.put(b, p.color)
		w.put(d, p.color)
		w.put(a, p.color)
		w.put(d, p.color)
		w.put(e, p.color)
	}
	return w.buffer()
}
