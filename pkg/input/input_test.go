package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeDetection(t *testing.T) {
	in := New()

	in.OnKeyboard(KeyW, Press)
	assert.True(t, in.IsDown(KeyW))
	assert.True(t, in.IsPressed(KeyW))
	assert.False(t, in.IsReleased(KeyW))

	in.EndFrame()
	assert.True(t, in.IsDown(KeyW))
	assert.False(t, in.IsPressed(KeyW))

	in.OnKeyboard(KeyW, Release)
	assert.True(t, in.IsReleased(KeyW))
	in.EndFrame()
	assert.False(t, in.IsReleased(KeyW))
}

func TestOutOfRangeCodesAreIgnored(t *testing.T) {
	in := New()
	var got []ButtonEvent
	in.Keyboard.Connect(func(e ButtonEvent) { got = append(got, e) })

	assert.NotPanics(t, func() { in.OnKeyboard(KeyUnknown, Press) })
	assert.NotPanics(t, func() { in.OnKeyboard(NumKeys+3, Press) })
	assert.Equal(t, Release, in.State(KeyUnknown))
	assert.False(t, in.IsPressed(NumKeys))
	assert.Len(t, got, 2)
}

func TestHandlersUpdateStateBeforeFiring(t *testing.T) {
	in := New()

	var seenDown bool
	in.MouseButton.Connect(func(e ButtonEvent) {
		seenDown = in.IsDown(e.Code)
	})
	in.OnMouseButton(MouseButtonLeft, Press)
	assert.True(t, seenDown)

	var size SizeEvent
	in.FramebufferResize.Connect(func(e SizeEvent) {
		w, h := in.FramebufferSize()
		size = SizeEvent{Width: w, Height: h}
	})
	in.OnFramebufferResize(800, 600)
	assert.Equal(t, SizeEvent{Width: 800, Height: 600}, size)
}

func TestCursorAndScrollDeltas(t *testing.T) {
	in := New()
	in.OnMouseMove(10, 20)
	in.EndFrame()
	in.OnMouseMove(15, 18)
	assert.Equal(t, CursorEvent{X: 5, Y: -2}, in.CursorDelta())
	assert.Equal(t, CursorEvent{X: 15, Y: 18}, in.Cursor())

	var scrolls []ScrollEvent
	in.Scroll.Connect(func(e ScrollEvent) { scrolls = append(scrolls, e) })
	in.OnScroll(0, 1)
	in.OnScroll(0, 2)
	require.Len(t, scrolls, 2)
	assert.Equal(t, ScrollEvent{DY: 3}, in.ScrollDelta())

	in.EndFrame()
	assert.Equal(t, ScrollEvent{}, in.ScrollDelta())
}

func TestKeyStateString(t *testing.T) {
	assert.Equal(t, "press", Press.String())
	assert.Equal(t, "release", Release.String())
}
