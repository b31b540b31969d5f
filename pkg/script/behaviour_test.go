package script

import (
	"os"
	"path/filepath"
	"testing"

	"glscene/internal/logger"
	"glscene/pkg/input"
	"glscene/pkg/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func scripted(t *testing.T, in *input.Input, src string) (*scene.Node, *scene.Transform, *Behaviour) {
	t.Helper()
	n := scene.NewNode("scripted")
	tr, err := scene.AddComponent(n, scene.NewTransform(nil))
	require.NoError(t, err)
	b, err := scene.AddComponent(n, New(in, "test", src, logger.Nop()))
	require.NoError(t, err)
	return n, tr, b
}

func TestUpdateHookMovesNode(t *testing.T) {
	n, tr, b := scripted(t, nil, `
function update(dt)
  node.translate(dt, 0, 0)
end`)
	b.UpdatePerFrame(0.5)
	b.UpdatePerFrame(0.5)
	n.Update()
	assert.True(t, mgl32.Vec3{1, 0, 0}.ApproxEqual(tr.GlobalPosition()))
}

func TestInputHooksAndQueries(t *testing.T) {
	in := input.New()
	n, tr, b := scripted(t, in, `
scrolls = 0
function on_scroll(dx, dy)
  scrolls = scrolls + 1
  node.translate(0, dy, 0, "local")
end
function on_mouse_button(key, pressed)
  last_button = key
  last_pressed = pressed
end
function update(dt)
  if input.is_down("w") then
    node.translate(0, 0, -dt)
  end
end`)

	in.OnScroll(0, 2)
	in.OnMouseButton(input.MouseButtonRight, input.Press)
	in.OnKeyboard(input.KeyW, input.Press)
	b.UpdatePerFrame(1)
	n.Update()

	assert.Equal(t, lua.LNumber(1), b.Global("scrolls"))
	assert.Equal(t, lua.LString("mouse_right"), b.Global("last_button"))
	assert.Equal(t, lua.LTrue, b.Global("last_pressed"))
	assert.True(t, mgl32.Vec3{0, 2, -1}.ApproxEqual(tr.LocalTranslation()))

	n.Destroy()
	assert.Equal(t, 0, in.Scroll.ConnectionNum())
	assert.Equal(t, 0, in.MouseButton.ConnectionNum())
}

func TestPrepareAndDestroyHooks(t *testing.T) {
	n, tr, b := scripted(t, nil, `
function prepare()
  node.set_position(1, 2, 3)
  node.rotate(0, 1, 0, 90)
end`)
	require.NoError(t, b.Prepare())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.LocalTranslation())
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, want.ApproxEqualThreshold(tr.LocalRotation(), 1e-5))
	n.Destroy()
}

func TestDestroyedScriptIgnoresHooks(t *testing.T) {
	n, _, b := scripted(t, nil, `
count = 0
function update(dt)
  count = count + 1
end`)
	b.UpdatePerFrame(0.1)
	assert.Equal(t, lua.LNumber(1), b.Global("count"))

	n.Destroy()
	assert.NotPanics(t, func() {
		b.UpdatePerFrame(0.1)
		b.OnScroll(input.ScrollEvent{DY: 1})
		b.Destroy()
	})
	assert.Equal(t, lua.LNil, b.Global("count"))
}

func TestScriptErrors(t *testing.T) {
	n := scene.NewNode("broken")
	_, err := scene.AddComponent(n, New(nil, "syntax", "function (", logger.Nop()))
	assert.Error(t, err)
	assert.Empty(t, n.Components())

	_, _, b := scripted(t, nil, `
function prepare() error("boom") end
function update(dt) error("every frame") end`)
	err = b.Prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NotPanics(t, func() { b.UpdatePerFrame(0.1) })

	// no transform on the node
	bare := scene.NewNode("bare")
	nb, err := scene.AddComponent(bare, New(nil, "bare", `function prepare() node.translate(1, 0, 0) end`, logger.Nop()))
	require.NoError(t, err)
	assert.Error(t, nb.Prepare())

	_, _, bad := scripted(t, nil, `function prepare() node.translate(1, 0, 0, "sideways") end`)
	assert.Error(t, bad.Prepare())
}

func TestKeyNames(t *testing.T) {
	code, ok := KeyByName("a")
	require.True(t, ok)
	assert.Equal(t, input.KeyA, code)
	code, ok = KeyByName("7")
	require.True(t, ok)
	assert.Equal(t, input.Key7, code)
	_, ok = KeyByName("hyper")
	assert.False(t, ok)

	assert.Equal(t, "z", KeyName(input.KeyZ))
	assert.Equal(t, "unknown", KeyName(input.KeyF24))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spin.lua"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	sources, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"spin": "x = 1"}, sources)

	sources, err = LoadDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, sources)

	n := scene.NewNode("file")
	b, err := scene.AddComponent(n, NewFromFile(nil, filepath.Join(dir, "spin.lua"), logger.Nop()))
	require.NoError(t, err)
	assert.Equal(t, "spin", b.Name())
	assert.Equal(t, lua.LNumber(1), b.Global("x"))
}
