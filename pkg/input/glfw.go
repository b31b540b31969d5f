package input

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// FromGLFWKey переводит код клавиши GLFW в KeyCode
func FromGLFWKey(key glfw.Key) KeyCode {
	if code, ok := glfwKeys[key]; ok {
		return code
	}
	return KeyUnknown
}

// FromGLFWMouseButton переводит кнопку мыши GLFW в KeyCode
func FromGLFWMouseButton(button glfw.MouseButton) KeyCode {
	switch button {
	case glfw.MouseButtonLeft:
		return MouseButtonLeft
	case glfw.MouseButtonRight:
		return MouseButtonRight
	case glfw.MouseButtonMiddle:
		return MouseButtonMiddle
	default:
		return KeyUnknown
	}
}

func fromGLFWAction(action glfw.Action) (KeyState, bool) {
	switch action {
	case glfw.Press, glfw.Repeat:
		return Press, action == glfw.Press
	default:
		return Release, true
	}
}

// AttachGLFW устанавливает обработчики окна, которые пишут в in
func AttachGLFW(window *glfw.Window, in *Input) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		state, edge := fromGLFWAction(action)
		// повтор клавиши не меняет состояния
		if !edge {
			return
		}
		in.OnKeyboard(FromGLFWKey(key), state)
	})

	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		state, _ := fromGLFWAction(action)
		in.OnMouseButton(FromGLFWMouseButton(button), state)
	})

	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		in.OnMouseMove(x, y)
	})

	window.SetScrollCallback(func(_ *glfw.Window, xoffset, yoffset float64) {
		in.OnScroll(xoffset, yoffset)
	})

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		in.OnFramebufferResize(width, height)
	})

	// Начальный размер буфера кадра
	w, h := window.GetFramebufferSize()
	in.OnFramebufferResize(w, h)
}
