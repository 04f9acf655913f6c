package edges

import "github.com/Faultbox/fieldview/pkg/field"

// Tier is the display class of an edge. Tiers are drawn in ascending order so
// higher tiers paint over lower ones.
type Tier int

const (
	TierInterior Tier = iota
	TierOuter
	TierHighlight
)

// TierCount is the number of tiers.
const TierCount = 3

func (t Tier) String() string {
	switch t {
	case TierInterior:
		return "interior"
	case TierOuter:
		return "outer"
	case TierHighlight:
		return "highlight"
	default:
		return "unknown"
	}
}

// Classifier builds edge sets every frame and keeps the outer rim of the mesh
// as a snapshot tied to a data generation.
//
// The rim is taken from the first non-empty set built after Invalidate and is
// not recomputed until the next Invalidate, whatever the selection does.
type Classifier struct {
	generation uint64
	// frozenAt is generation+1 of the snapshot; 0 means no snapshot.
	frozenAt uint64
	outer    map[Key]struct{}
}

// NewClassifier returns a classifier with no snapshot.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Invalidate drops the outer rim snapshot. Call it whenever new field data is
// loaded or the data is cleared.
func (c *Classifier) Invalidate() {
	c.generation++
	c.frozenAt = 0
	c.outer = nil
}

// Generation returns the current data generation.
func (c *Classifier) Generation() uint64 {
	return c.generation
}

// Frozen reports whether the outer rim snapshot exists for the current generation.
func (c *Classifier) Frozen() bool {
	return c.frozenAt == c.generation+1
}

// Classify builds the edge set for tris and freezes the outer rim if needed.
func (c *Classifier) Classify(tris []field.Triangle, selected int) *Set {
	s := Build(tris, selected)
	if !c.Frozen() && s.Len() > 0 {
		c.outer = make(map[Key]struct{}, s.Len()/2)
		for _, e := range s.edges {
			if e.Count == 1 {
				c.outer[e.Key] = struct{}{}
			}
		}
		c.frozenAt = c.generation + 1
	}
	return s
}

// IsOuter reports whether k belonged to the outer rim when the snapshot was taken.
func (c *Classifier) IsOuter(k Key) bool {
	_, ok := c.outer[k]
	return ok
}

// OuterCount returns the number of edges in the snapshot.
func (c *Classifier) OuterCount() int {
	return len(c.outer)
}

// Tier classifies e: highlight wins over the frozen outer rim, which wins over interior.
func (c *Classifier) Tier(e Edge) Tier {
	switch {
	case e.Highlight:
		return TierHighlight
	case c.IsOuter(e.Key):
		return TierOuter
	default:
		return TierInterior
	}
}
