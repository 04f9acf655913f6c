// Package walkview renders the walkmesh debug view of a field: the
// triangulated walkable area, gateways, triggers, selection markers and the
// background image, all in one pass through an rhi device.
//
// View is driven from a single thread. UI code calls the setters between
// frames; the host calls Initialize and Render once per frame.
package walkview

import (
	"github.com/gogpu/gputypes"

	"github.com/Faultbox/fieldview/internal/engine/camera"
	"github.com/Faultbox/fieldview/internal/engine/edges"
	"github.com/Faultbox/fieldview/internal/engine/gpures"
	"github.com/Faultbox/fieldview/internal/engine/overlay"
	"github.com/Faultbox/fieldview/internal/engine/rhi"
	"github.com/Faultbox/fieldview/internal/engine/shader"
	"github.com/Faultbox/fieldview/pkg/field"
)

// Tab is the editor tab the view is shown in. Gateway and trigger markers
// are only drawn on their own tabs.
type Tab int

const (
	TabNone     Tab = -1
	TabCameras  Tab = 0
	TabWalkmesh Tab = 1
	TabGateways Tab = 2
	TabDoors    Tab = 3
)

// TabCount is the number of real tabs.
const TabCount = 4

func (t Tab) String() string {
	switch t {
	case TabCameras:
		return "cameras"
	case TabWalkmesh:
		return "walkmesh"
	case TabGateways:
		return "gateways"
	case TabDoors:
		return "doors"
	case TabNone:
		return "none"
	default:
		return "unknown"
	}
}

// NoSelection is the index meaning nothing is selected.
const NoSelection = -1

// Selection is the current selection state.
type Selection struct {
	Triangle int
	Door     int
	Gate     int
	Tab      Tab
}

// Options configure a View.
type Options struct {
	// MarkerHalfSize is the half extent of selection squares in world units.
	MarkerHalfSize float32
	// ClearWithBackground is the clear color while the background is shown.
	ClearWithBackground gputypes.Color
	// ClearWithoutBackground is the clear color while the background is hidden.
	ClearWithoutBackground gputypes.Color
	// Shaders resolves the pipeline programs. Nil uses the built-in GLSL.
	Shaders *shader.Library
}

// DefaultOptions returns the stock view settings.
func DefaultOptions() Options {
	return Options{
		MarkerHalfSize:         overlay.MarkerHalfSize,
		ClearWithBackground:    gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		ClearWithoutBackground: gputypes.Color{R: 0.2, G: 0.2, B: 0.2, A: 1},
	}
}

// Stats describes the last rendered frame.
type Stats struct {
	Frame     uint64
	Vertices  [overlay.StreamCount]int
	DrawCalls int
	// Background is true when the background quad was drawn.
	Background bool
	// ClearOnly is true when the frame only cleared the target.
	ClearOnly bool
}

// View is the walkmesh view.
type View struct {
	opts Options

	src        field.Source
	classifier *edges.Classifier
	resources  *gpures.Manager
	rig        *camera.Rig

	dev rhi.Device

	cameraID          int
	backgroundVisible bool
	bgDirty           bool
	sel               Selection
	guide             *[2]field.Vertex

	frame    uint64
	stats    Stats
	degraded bool
}

// New returns a view with no data and no device.
func New(opts Options) *View {
	if opts.Shaders == nil {
		opts.Shaders = shader.Builtin()
	}
	if opts.MarkerHalfSize <= 0 {
		opts.MarkerHalfSize = overlay.MarkerHalfSize
	}
	return &View{
		opts:              opts,
		classifier:        edges.NewClassifier(),
		resources:         gpures.New(opts.Shaders),
		rig:               camera.NewRig(),
		backgroundVisible: true,
		bgDirty:           true,
		sel: Selection{
			Triangle: NoSelection,
			Door:     NoSelection,
			Gate:     NoSelection,
			Tab:      TabNone,
		},
	}
}

// Source returns the current field data, or nil.
func (v *View) Source() field.Source { return v.src }

// Rig returns the user camera transform.
func (v *View) Rig() *camera.Rig { return v.rig }

// Selection returns the selection state.
func (v *View) Selection() Selection { return v.sel }

// CurrentFieldCamera returns the selected field camera index.
func (v *View) CurrentFieldCamera() int { return v.cameraID }

// BackgroundVisible reports whether the background image is drawn.
func (v *View) BackgroundVisible() bool { return v.backgroundVisible }

// Stats returns statistics of the last frame.
func (v *View) Stats() Stats { return v.stats }

// Ready reports whether GPU resources are available.
func (v *View) Ready() bool { return v.resources.Ready() }

// Err returns the latched GPU resource failure, if any.
func (v *View) Err() error { return v.resources.Err() }

// LiveResources returns the number of GPU resources the view holds.
func (v *View) LiveResources() int { return v.resources.LiveResources() }
