// Package script attaches Lua programs to scene nodes as behaviours.
//
// A script defines any of the global hooks
//
//	prepare()
//	update(dt)
//	on_mouse_button(key, pressed)
//	on_mouse_move(x, y)
//	on_scroll(dx, dy)
//	destroy()
//
// and drives its node through the node, input and log globals.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"glscene/internal/logger"
	"glscene/internal/util"
	"glscene/pkg/input"
	"glscene/pkg/scene"

	lua "github.com/yuin/gopher-lua"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

const (
	hookPrepare     = "prepare"
	hookUpdate      = "update"
	hookMouseButton = "on_mouse_button"
	hookMouseMove   = "on_mouse_move"
	hookScroll      = "on_scroll"
	hookDestroy     = "destroy"
)

// Behaviour runs one Lua VM bound to its node. Access is single goroutine
// (the frame loop).
type Behaviour struct {
	scene.BaseBehaviour

	vm     *lua.LState
	log    *logger.Logger
	closed bool
}

// New returns a constructor for a behaviour running src. name labels the
// script in errors and logs.
func New(in *input.Input, name, src string, log *logger.Logger) func(*scene.Node) (*Behaviour, error) {
	return func(n *scene.Node) (*Behaviour, error) {
		if log == nil {
			log = logger.Default()
		}
		b := &Behaviour{
			BaseBehaviour: scene.NewBaseBehaviour(n, name, in),
			vm:            lua.NewState(lua.Options{SkipOpenLibs: false}),
			log:           log,
		}
		b.vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
		b.openNode()
		b.openInput()
		b.vm.SetGlobal("log", b.vm.NewFunction(b.luaLog))

		if err := b.vm.DoString(src); err != nil {
			b.vm.Close()
			return nil, fmt.Errorf("load script %s: %w", name, err)
		}
		b.Listen(b)
		return b, nil
	}
}

// NewFromFile is New with the source read from path. The script is named
// after the file.
func NewFromFile(in *input.Input, path string, log *logger.Logger) func(*scene.Node) (*Behaviour, error) {
	return func(n *scene.Node) (*Behaviour, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		return New(in, util.FileNameWithoutExt(path), string(src), log)(n)
	}
}

// LoadDir reads every .lua file in dir, keyed by file name without the
// extension. A missing directory yields an empty map.
func LoadDir(dir string) (map[string]string, error) {
	sources := make(map[string]string)
	if !util.DirExists(dir) {
		return sources, nil
	}
	files, err := util.ListFilesWithExt(dir, ".lua")
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		sources[util.FileNameWithoutExt(path)] = string(src)
	}
	return sources, nil
}

// Global returns a global of the script, LNil when unset or once the
// behaviour is destroyed.
func (b *Behaviour) Global(name string) lua.LValue {
	if b.closed {
		return lua.LNil
	}
	return b.vm.GetGlobal(name)
}

// call invokes a hook if the script defines it.
func (b *Behaviour) call(hook string, args ...lua.LValue) error {
	if b.closed {
		return nil
	}
	fn, ok := b.vm.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	return b.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

// callLogged runs a per-frame or input hook. Errors are logged so a broken
// script cannot stop the frame.
func (b *Behaviour) callLogged(hook string, args ...lua.LValue) {
	if err := b.call(hook, args...); err != nil {
		b.log.Warnf("script %s: %s: %v", b.Name(), hook, err)
	}
}

func (b *Behaviour) Prepare() error {
	if err := b.call(hookPrepare); err != nil {
		return fmt.Errorf("script %s: %w", b.Name(), err)
	}
	return nil
}

func (b *Behaviour) UpdatePerFrame(dt float32) {
	b.callLogged(hookUpdate, lua.LNumber(dt))
}

func (b *Behaviour) OnMouseButton(e input.ButtonEvent) {
	b.callLogged(hookMouseButton, lua.LString(KeyName(e.Code)), lua.LBool(e.State == input.Press))
}

func (b *Behaviour) OnMouseMove(e input.CursorEvent) {
	b.callLogged(hookMouseMove, lua.LNumber(e.X), lua.LNumber(e.Y))
}

func (b *Behaviour) OnScroll(e input.ScrollEvent) {
	b.callLogged(hookScroll, lua.LNumber(e.DX), lua.LNumber(e.DY))
}

func (b *Behaviour) Destroy() {
	if b.closed {
		return
	}
	b.callLogged(hookDestroy)
	b.BaseBehaviour.Destroy()
	b.closed = true
	b.vm.Close()
}

func (b *Behaviour) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.Get(i).String())
	}
	b.log.Infof("[%s] %s", b.Name(), strings.Join(parts, " "))
	return 0
}
