// Package edges deduplicates walkmesh triangle edges and classifies them for
// wireframe display.
//
// Edges are identified by their endpoint coordinates rather than by vertex
// indices, so triangles that repeat a position without sharing an index still
// collapse onto one edge.
package edges

import (
	"strconv"

	"github.com/Faultbox/fieldview/pkg/field"
)

// KeyPrecision is the number of fractional digits used when formatting
// endpoint coordinates into a key. Coordinates that differ only past this
// digit are treated as the same point.
const KeyPrecision = 6

// Key is the canonical, order independent identity of an edge.
type Key string

// Edge is one deduplicated mesh edge.
type Edge struct {
	Key  Key
	A, B field.Vertex
	// Count is the number of triangles referencing the edge.
	Count int
	// Highlight is set when any owning triangle is the selected one.
	Highlight bool
}

// Set is an insertion-ordered collection of edges keyed by Key.
type Set struct {
	edges []Edge
	index map[Key]int
}

// NewSet returns an empty set sized for the given number of triangles.
func NewSet(triangles int) *Set {
	return &Set{
		edges: make([]Edge, 0, triangles*3),
		index: make(map[Key]int, triangles*3),
	}
}

// Add records the edge p-q for a triangle.
func (s *Set) Add(p, q field.Vertex, selected bool) {
	k := EdgeKey(p, q)
	if i, ok := s.index[k]; ok {
		s.edges[i].Count++
		if selected {
			s.edges[i].Highlight = true
		}
		return
	}
	s.index[k] = len(s.edges)
	s.edges = append(s.edges, Edge{Key: k, A: p, B: q, Count: 1, Highlight: selected})
}

// Len returns the number of unique edges.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.edges)
}

// Edges returns the edges in first-seen order. The slice must not be modified.
func (s *Set) Edges() []Edge {
	if s == nil {
		return nil
	}
	return s.edges
}

// Lookup returns the edge stored under k.
func (s *Set) Lookup(k Key) (Edge, bool) {
	if s == nil {
		return Edge{}, false
	}
	i, ok := s.index[k]
	if !ok {
		return Edge{}, false
	}
	return s.edges[i], true
}

// Build decomposes every triangle into its edges 0-1, 1-2 and 2-0 and
// deduplicates them. selected is the index of the selected triangle, or -1.
func Build(tris []field.Triangle, selected int) *Set {
	s := NewSet(len(tris))
	for i, tri := range tris {
		sel := i == selected
		v := tri.Vertices
		s.Add(v[0], v[1], sel)
		s.Add(v[1], v[2], sel)
		s.Add(v[2], v[0], sel)
	}
	return s
}

// PointKey formats a vertex with KeyPrecision fractional digits.
func PointKey(v field.Vertex) string {
	buf := make([]byte, 0, 48)
	return string(appendPoint(buf, v))
}

// EdgeKey returns the canonical key of the edge p-q. EdgeKey(p, q) == EdgeKey(q, p).
func EdgeKey(p, q field.Vertex) Key {
	kp, kq := PointKey(p), PointKey(q)
	if kq < kp {
		kp, kq = kq, kp
	}
	return Key(kp + "|" + kq)
}

func appendPoint(buf []byte, v field.Vertex) []byte {
	buf = strconv.AppendFloat(buf, float64(v.X), 'f', KeyPrecision, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, float64(v.Y), 'f', KeyPrecision, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, float64(v.Z), 'f', KeyPrecision, 64)
	return buf
}
