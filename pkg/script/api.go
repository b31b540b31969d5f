package script

import (
	"glscene/pkg/input"
	"glscene/pkg/scene"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
)

var keyNames = map[string]input.KeyCode{
	"space":        input.KeySpace,
	"escape":       input.KeyEscape,
	"enter":        input.KeyEnter,
	"up":           input.KeyUp,
	"down":         input.KeyDown,
	"left":         input.KeyLeft,
	"right":        input.KeyRight,
	"shift":        input.KeyLeftShift,
	"ctrl":         input.KeyLeftControl,
	"alt":          input.KeyLeftAlt,
	"mouse_left":   input.MouseButtonLeft,
	"mouse_right":  input.MouseButtonRight,
	"mouse_middle": input.MouseButtonMiddle,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		keyNames[string(c)] = input.KeyA + input.KeyCode(c-'a')
	}
	for c := '0'; c <= '9'; c++ {
		keyNames[string(c)] = input.Key0 + input.KeyCode(c-'0')
	}
}

// KeyByName resolves the names scripts use for keys: letters, digits,
// arrows, "space", "escape", "enter", "shift", "ctrl", "alt" and the
// "mouse_left", "mouse_right", "mouse_middle" buttons.
func KeyByName(name string) (input.KeyCode, bool) {
	code, ok := keyNames[name]
	return code, ok
}

// KeyName is the inverse of KeyByName, "unknown" for unnamed codes.
func KeyName(code input.KeyCode) string {
	for name, c := range keyNames {
		if c == code {
			return name
		}
	}
	return "unknown"
}

func parseSpace(L *lua.LState, n int, def scene.Space) scene.Space {
	switch L.OptString(n, "") {
	case "":
		return def
	case "local":
		return scene.SpaceLocal
	case "parent":
		return scene.SpaceParent
	case "world":
		return scene.SpaceWorld
	}
	L.ArgError(n, "space must be local, parent or world")
	return def
}

func checkVec3(L *lua.LState, first int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(first)),
		float32(L.CheckNumber(first + 1)),
		float32(L.CheckNumber(first + 2)),
	}
}

func pushVec3(L *lua.LState, v mgl32.Vec3) int {
	L.Push(lua.LNumber(v.X()))
	L.Push(lua.LNumber(v.Y()))
	L.Push(lua.LNumber(v.Z()))
	return 3
}

func (b *Behaviour) transform(L *lua.LState) *scene.Transform {
	t, ok := scene.GetComponent[*scene.Transform](b.Node())
	if !ok {
		L.RaiseError("node %s has no transform", b.Node().Name())
	}
	return t
}

// openNode installs the node table. Angles are in degrees.
func (b *Behaviour) openNode() {
	tbl := b.vm.NewTable()
	b.vm.SetFuncs(tbl, map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(b.Node().Name()))
			return 1
		},
		"position": func(L *lua.LState) int {
			return pushVec3(L, b.transform(L).GlobalPosition())
		},
		"local_position": func(L *lua.LState) int {
			return pushVec3(L, b.transform(L).LocalTranslation())
		},
		"set_position": func(L *lua.LState) int {
			b.transform(L).SetLocalTranslation(checkVec3(L, 1))
			return 0
		},
		"set_scale": func(L *lua.LState) int {
			b.transform(L).SetLocalScale(checkVec3(L, 1))
			return 0
		},
		"translate": func(L *lua.LState) int {
			b.transform(L).Translate(checkVec3(L, 1), parseSpace(L, 4, scene.SpaceParent))
			return 0
		},
		"rotate": func(L *lua.LState) int {
			axis := checkVec3(L, 1)
			if axis.Len() == 0 {
				L.ArgError(1, "zero rotation axis")
			}
			deg := float32(L.CheckNumber(4))
			b.transform(L).RotateAxis(axis, mgl32.DegToRad(deg), parseSpace(L, 5, scene.SpaceLocal))
			return 0
		},
		"reset": func(L *lua.LState) int {
			b.transform(L).Reset()
			return 0
		},
	})
	b.vm.SetGlobal("node", tbl)
}

func (b *Behaviour) openInput() {
	tbl := b.vm.NewTable()
	b.vm.SetFuncs(tbl, map[string]lua.LGFunction{
		"is_down": func(L *lua.LState) int {
			code, ok := KeyByName(L.CheckString(1))
			L.Push(lua.LBool(ok && b.Input != nil && b.Input.IsDown(code)))
			return 1
		},
		"is_pressed": func(L *lua.LState) int {
			code, ok := KeyByName(L.CheckString(1))
			L.Push(lua.LBool(ok && b.Input != nil && b.Input.IsPressed(code)))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			var c input.CursorEvent
			if b.Input != nil {
				c = b.Input.Cursor()
			}
			L.Push(lua.LNumber(c.X))
			L.Push(lua.LNumber(c.Y))
			return 2
		},
	})
	b.vm.SetGlobal("input", tbl)
}
