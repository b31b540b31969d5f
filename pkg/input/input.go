// Package input normalizes platform key and pointer events into a key-state
// table and a set of signals that behaviours subscribe to.
package input

import (
	"sync"

	"glscene/pkg/signal"
)

// ButtonEvent is delivered by MouseButton and Keyboard.
type ButtonEvent struct {
	Code  KeyCode
	State KeyState
}

// CursorEvent is delivered by MouseMove.
type CursorEvent struct {
	X, Y float64
}

// ScrollEvent is delivered by Scroll.
type ScrollEvent struct {
	DX, DY float64
}

// SizeEvent is delivered by FramebufferResize.
type SizeEvent struct {
	Width, Height int
}

// Input holds the current key state and the input signals.
//
// Platform callbacks may arrive on a different thread than the frame loop in
// some windowing backends, so the state table has its own lock.
type Input struct {
	// GUIWantCaptureMouse is set by an overlay that consumes pointer input.
	GUIWantCaptureMouse bool

	FramebufferResize signal.Event[SizeEvent]
	MouseButton       signal.Event[ButtonEvent]
	MouseMove         signal.Event[CursorEvent]
	Scroll            signal.Event[ScrollEvent]
	Keyboard          signal.Event[ButtonEvent]

	mu            sync.RWMutex
	current       [NumKeys]KeyState
	previous      [NumKeys]KeyState
	cursor        CursorEvent
	prevCursor    CursorEvent
	scrollDelta   ScrollEvent
	width, height int
}

// New returns an input hub with every key released.
func New() *Input {
	return &Input{}
}

func (in *Input) setState(code KeyCode, state KeyState) {
	if code < 0 || code >= NumKeys {
		return
	}
	in.mu.Lock()
	in.current[code] = state
	in.mu.Unlock()
}

// State returns the current state of code.
func (in *Input) State(code KeyCode) KeyState {
	if code < 0 || code >= NumKeys {
		return Release
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.current[code]
}

// IsDown reports whether code is held.
func (in *Input) IsDown(code KeyCode) bool {
	return in.State(code) == Press
}

// IsPressed reports whether code went down since the last EndFrame.
func (in *Input) IsPressed(code KeyCode) bool {
	if code < 0 || code >= NumKeys {
		return false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.current[code] == Press && in.previous[code] == Release
}

// IsReleased reports whether code went up since the last EndFrame.
func (in *Input) IsReleased(code KeyCode) bool {
	if code < 0 || code >= NumKeys {
		return false
	}
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.current[code] == Release && in.previous[code] == Press
}

// Cursor returns the last reported cursor position.
func (in *Input) Cursor() CursorEvent {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.cursor
}

// CursorDelta returns the cursor motion since the last EndFrame.
func (in *Input) CursorDelta() CursorEvent {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return CursorEvent{X: in.cursor.X - in.prevCursor.X, Y: in.cursor.Y - in.prevCursor.Y}
}

// ScrollDelta returns the scroll accumulated since the last EndFrame.
func (in *Input) ScrollDelta() ScrollEvent {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.scrollDelta
}

// FramebufferSize returns the last reported framebuffer size.
func (in *Input) FramebufferSize() (int, int) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.width, in.height
}

// EndFrame snapshots the state used by the edge queries.
func (in *Input) EndFrame() {
	in.mu.Lock()
	in.previous = in.current
	in.prevCursor = in.cursor
	in.scrollDelta = ScrollEvent{}
	in.mu.Unlock()
}

// OnKeyboard records a key transition and fires Keyboard. Codes outside the
// table are still delivered so listeners can see unknown keys.
func (in *Input) OnKeyboard(code KeyCode, state KeyState) {
	in.setState(code, state)
	in.Keyboard.Fire(ButtonEvent{Code: code, State: state})
}

// OnMouseButton records a button transition and fires MouseButton.
func (in *Input) OnMouseButton(code KeyCode, state KeyState) {
	in.setState(code, state)
	in.MouseButton.Fire(ButtonEvent{Code: code, State: state})
}

// OnMouseMove records the cursor and fires MouseMove.
func (in *Input) OnMouseMove(x, y float64) {
	in.mu.Lock()
	in.cursor = CursorEvent{X: x, Y: y}
	in.mu.Unlock()
	in.MouseMove.Fire(CursorEvent{X: x, Y: y})
}

// OnScroll accumulates the offset and fires Scroll.
func (in *Input) OnScroll(dx, dy float64) {
	in.mu.Lock()
	in.scrollDelta.DX += dx
	in.scrollDelta.DY += dy
	in.mu.Unlock()
	in.Scroll.Fire(ScrollEvent{DX: dx, DY: dy})
}

// OnFramebufferResize records the size and fires FramebufferResize.
func (in *Input) OnFramebufferResize(width, height int) {
	in.mu.Lock()
	in.width, in.height = width, height
	in.mu.Unlock()
	in.FramebufferResize.Fire(SizeEvent{Width: width, Height: height})
}
