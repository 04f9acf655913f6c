// Package input turns SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/fieldview/internal/engine/walkview"
)

// EventType classifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseDown
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Keycode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Host-level commands that the view does not handle.
const (
	KeyQuit       = sdl.K_ESCAPE
	KeyScreenshot = sdl.K_F12
	KeyFullscreen = sdl.K_F11
)

// Bindings maps keys to view actions.
type Bindings map[sdl.Keycode]walkview.Action

// DefaultBindings returns the stock key map.
func DefaultBindings() Bindings {
	return Bindings{
		sdl.K_LEFT:     walkview.ActionPanLeft,
		sdl.K_RIGHT:    walkview.ActionPanRight,
		sdl.K_UP:       walkview.ActionPanUp,
		sdl.K_DOWN:     walkview.ActionPanDown,
		sdl.K_w:        walkview.ActionRotateXNeg,
		sdl.K_s:        walkview.ActionRotateXPos,
		sdl.K_a:        walkview.ActionRotateYNeg,
		sdl.K_d:        walkview.ActionRotateYPos,
		sdl.K_q:        walkview.ActionRotateZNeg,
		sdl.K_e:        walkview.ActionRotateZPos,
		sdl.K_PAGEUP:   walkview.ActionCloser,
		sdl.K_PAGEDOWN: walkview.ActionFarther,
		sdl.K_b:        walkview.ActionToggleBackground,
		sdl.K_TAB:      walkview.ActionNextTab,
		sdl.K_c:        walkview.ActionNextCamera,
		sdl.K_n:        walkview.ActionNextTriangle,
		sdl.K_p:        walkview.ActionPrevTriangle,
		sdl.K_r:        walkview.ActionResetCamera,
	}
}

// Input handles all input processing.
type Input struct {
	events   []Event
	bindings Bindings

	// Left button state carries across frames; motion and wheel are per frame.
	leftHeld     bool
	dragX, dragY float32
	dragged      bool
	wheel        float32
}

// New creates an input handler using b, or DefaultBindings when b is nil.
func New(b Bindings) *Input {
	if b == nil {
		b = DefaultBindings()
	}
	return &Input{
		events:   make([]Event, 0, 16),
		bindings: b,
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.dragX, i.dragY, i.dragged = 0, 0, false
	i.wheel = 0
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			quit = true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			i.events = append(i.events, Event{
				Type:   EventKeyDown,
				Key:    e.Keysym.Sym,
				Repeat: e.Repeat != 0,
			})
			if e.Keysym.Sym == KeyQuit {
				quit = true
			}

		case *sdl.MouseButtonEvent:
			pressed := e.Type == sdl.MOUSEBUTTONDOWN
			if e.Button == sdl.BUTTON_LEFT {
				i.leftHeld = pressed
			}
			if pressed {
				i.events = append(i.events, Event{
					Type:   EventMouseDown,
					MouseX: int(e.X),
					MouseY: int(e.Y),
					Button: e.Button,
				})
			}

		case *sdl.MouseMotionEvent:
			if i.leftHeld {
				i.dragX += float32(e.XRel)
				i.dragY += float32(e.YRel)
				i.dragged = true
			}

		case *sdl.MouseWheelEvent:
			y := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				y = -y
			}
			i.wheel += y
		}
	}

	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Actions returns the bound view actions of this frame's key presses, in order.
func (i *Input) Actions() []walkview.Action {
	var out []walkview.Action
	for _, e := range i.events {
		if e.Type != EventKeyDown {
			continue
		}
		if a, ok := i.bindings[e.Key]; ok {
			out = append(out, a)
		}
	}
	return out
}

// IsKeyPressed checks if a key was pressed this frame. Auto-repeat is ignored.
func (i *Input) IsKeyPressed(key sdl.Keycode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key && !e.Repeat {
			return true
		}
	}
	return false
}

// Resized returns the last new window size of this frame.
func (i *Input) Resized() (w, h int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			w, h, ok = e.Width, e.Height, true
		}
	}
	return w, h, ok
}

// Clicked returns the window coordinates of the last left click of this frame.
func (i *Input) Clicked() (x, y int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventMouseDown && e.Button == sdl.BUTTON_LEFT {
			x, y, ok = e.MouseX, e.MouseY, true
		}
	}
	return x, y, ok
}

// Drag returns the mouse movement in pixels while the left button was held
// this frame.
func (i *Input) Drag() (dx, dy float32, ok bool) {
	return i.dragX, i.dragY, i.dragged
}

// Wheel returns this frame's vertical wheel notches, positive away from the user.
func (i *Input) Wheel() float32 {
	return i.wheel
}
