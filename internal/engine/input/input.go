// Package input polls SDL2 events and converts them into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseDrag
	EventMouseWheel
	EventMouseClick
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	// DragX/DragY are relative motion while a button is held.
	DragX int
	DragY int
	// WheelY is positive when scrolling away from the user.
	WheelY float32
	Button uint8
}

// Input tracks button state across polls so drags can be reported as
// relative motion.
type Input struct {
	events []Event

	leftDown  bool
	dragMoved bool
	downX     int
	downY     int
}

// New creates an input handler.
func New() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// clickSlop is the max cursor travel, in pixels, for a press+release
// to still count as a click.
const clickSlop = 4

// Update polls pending SDL events. Returns true when the application
// should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}

		case *sdl.MouseMotionEvent:
			if i.leftDown {
				if abs(int(e.X)-i.downX) > clickSlop || abs(int(e.Y)-i.downY) > clickSlop {
					i.dragMoved = true
				}
				i.events = append(i.events, Event{
					Type:   EventMouseDrag,
					MouseX: int(e.X),
					MouseY: int(e.Y),
					DragX:  int(e.XRel),
					DragY:  int(e.YRel),
				})
			}

		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.leftDown = true
				i.dragMoved = false
				i.downX = int(e.X)
				i.downY = int(e.Y)
			} else if e.Type == sdl.MOUSEBUTTONUP {
				if i.leftDown && !i.dragMoved {
					i.events = append(i.events, Event{
						Type:   EventMouseClick,
						MouseX: int(e.X),
						MouseY: int(e.Y),
						Button: e.Button,
					})
				}
				i.leftDown = false
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				WheelY: float32(e.Y),
			})
		}
	}

	return false
}

// Events returns the events gathered by the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether the key went down this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
