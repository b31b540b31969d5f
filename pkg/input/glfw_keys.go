package input

import "github.com/go-gl/glfw/v3.3/glfw"

// glfwKeys maps GLFW key tokens onto KeyCodes.
var glfwKeys = map[glfw.Key]KeyCode{
	glfw.KeySpace:        KeySpace,
	glfw.KeyApostrophe:   KeyApostrophe,
	glfw.KeyComma:        KeyComma,
	glfw.KeyMinus:        KeyMinus,
	glfw.KeyPeriod:       KeyPeriod,
	glfw.KeySlash:        KeySlash,
	glfw.Key0:            Key0,
	glfw.Key1:            Key1,
	glfw.Key2:            Key2,
	glfw.Key3:            Key3,
	glfw.Key4:            Key4,
	glfw.Key5:            Key5,
	glfw.Key6:            Key6,
	glfw.Key7:            Key7,
	glfw.Key8:            Key8,
	glfw.Key9:            Key9,
	glfw.KeySemicolon:    KeySemicolon,
	glfw.KeyEqual:        KeyEqual,
	glfw.KeyA:            KeyA,
	glfw.KeyB:            KeyB,
	glfw.KeyC:            KeyC,
	glfw.KeyD:            KeyD,
	glfw.KeyE:            KeyE,
	glfw.KeyF:            KeyF,
	glfw.KeyG:            KeyG,
	glfw.KeyH:            KeyH,
	glfw.KeyI:            KeyI,
	glfw.KeyJ:            KeyJ,
	glfw.KeyK:            KeyK,
	glfw.KeyL:            KeyL,
	glfw.KeyM:            KeyM,
	glfw.KeyN:            KeyN,
	glfw.KeyO:            KeyO,
	glfw.KeyP:            KeyP,
	glfw.KeyQ:            KeyQ,
	glfw.KeyR:            KeyR,
	glfw.KeyS:            KeyS,
	glfw.KeyT:            KeyT,
	glfw.KeyU:            KeyU,
	glfw.KeyV:            KeyV,
	glfw.KeyW:            KeyW,
	glfw.KeyX:            KeyX,
	glfw.KeyY:            KeyY,
	glfw.KeyZ:            KeyZ,
	glfw.KeyLeftBracket:  KeyLeftBracket,
	glfw.KeyBackslash:    KeyBackslash,
	glfw.KeyRightBracket: KeyRightBracket,
	glfw.KeyGraveAccent:  KeyGraveAccent,
	glfw.KeyWorld1:       KeyWorld1,
	glfw.KeyWorld2:       KeyWorld2,
	glfw.KeyEscape:       KeyEscape,
	glfw.KeyEnter:        KeyEnter,
	glfw.KeyTab:          KeyTab,
	glfw.KeyBackspace:    KeyBackspace,
	glfw.KeyInsert:       KeyInsert,
	glfw.KeyDelete:       KeyDelete,
	glfw.KeyRight:        KeyRight,
	glfw.KeyLeft:         KeyLeft,
	glfw.KeyDown:         KeyDown,
	glfw.KeyUp:           KeyUp,
	glfw.KeyPageUp:       KeyPageUp,
	glfw.KeyPageDown:     KeyPageDown,
	glfw.KeyHome:         KeyHome,
	glfw.KeyEnd:          KeyEnd,
	glfw.KeyCapsLock:     KeyCapsLock,
	glfw.KeyScrollLock:   KeyScrollLock,
	glfw.KeyNumLock:      KeyNumLock,
	glfw.KeyPrintScreen:  KeyPrintScreen,
	glfw.KeyPause:        KeyPause,
	glfw.KeyF1:           KeyF1,
	glfw.KeyF2:           KeyF2,
	glfw.KeyF3:           KeyF3,
	glfw.KeyF4:           KeyF4,
	glfw.KeyF5:           KeyF5,
	glfw.KeyF6:           KeyF6,
	glfw.KeyF7:           KeyF7,
	glfw.KeyF8:           KeyF8,
	glfw.KeyF9:           KeyF9,
	glfw.KeyF10:          KeyF10,
	glfw.KeyF11:          KeyF11,
	glfw.KeyF12:          KeyF12,
	glfw.KeyF13:          KeyF13,
	glfw.KeyF14:          KeyF14,
	glfw.KeyF15:          KeyF15,
	glfw.KeyF16:          KeyF16,
	glfw.KeyF17:          KeyF17,
	glfw.KeyF18:          KeyF18,
	glfw.KeyF19:          KeyF19,
	glfw.KeyF20:          KeyF20,
	glfw.KeyF21:          KeyF21,
	glfw.KeyF22:          KeyF22,
	glfw.KeyF23:          KeyF23,
	glfw.KeyF24:          KeyF24,
	glfw.KeyF25:          KeyF25,
	glfw.KeyKP0:          KeyKP0,
	glfw.KeyKP1:          KeyKP1,
	glfw.KeyKP2:          KeyKP2,
	glfw.KeyKP3:          KeyKP3,
	glfw.KeyKP4:          KeyKP4,
	glfw.KeyKP5:          KeyKP5,
	glfw.KeyKP6:          KeyKP6,
	glfw.KeyKP7:          KeyKP7,
	glfw.KeyKP8:          KeyKP8,
	glfw.KeyKP9:          KeyKP9,
	glfw.KeyKPDecimal:    KeyKPDecimal,
	glfw.KeyKPDivide:     KeyKPDivide,
	glfw.KeyKPMultiply:   KeyKPMultiply,
	glfw.KeyKPSubtract:   KeyKPSubtract,
	glfw.KeyKPAdd:        KeyKPAdd,
	glfw.KeyKPEnter:      KeyKPEnter,
	glfw.KeyKPEqual:      KeyKPEqual,
	glfw.KeyLeftShift:    KeyLeftShift,
	glfw.KeyLeftControl:  KeyLeftControl,
	glfw.KeyLeftAlt:      KeyLeftAlt,
	glfw.KeyLeftSuper:    KeyLeftSuper,
	glfw.KeyRightShift:   KeyRightShift,
	glfw.KeyRightControl: KeyRightControl,
	glfw.KeyRightAlt:     KeyRightAlt,
	glfw.KeyRightSuper:   KeyRightSuper,
	glfw.KeyMenu:         KeyMenu,
}
