package scene

import (
	"glscene/pkg/input"
	"glscene/pkg/signal"
)

// Behaviour is a component driven by input events and the per-frame tick.
type Behaviour interface {
	Component
	UpdatePerFrame(dt float32)
	OnMouseButton(e input.ButtonEvent)
	OnMouseMove(e input.CursorEvent)
	OnScroll(e input.ScrollEvent)
}

// BaseBehaviour implements the Behaviour hooks as no-ops and manages the
// input subscriptions. Embed it, then call Listen with the outer value from
// the constructor so the overridden hooks receive the events.
type BaseBehaviour struct {
	BaseComponent
	Input *input.Input

	life  *signal.Lifetime
	conns signal.Connections
}

// NewBaseBehaviour binds a behaviour base to n reading from in. A nil in
// yields a behaviour that never receives input events.
func NewBaseBehaviour(n *Node, name string, in *input.Input) BaseBehaviour {
	return BaseBehaviour{
		BaseComponent: NewBaseComponent(n, name),
		Input:         in,
		life:          signal.NewLifetime(),
	}
}

// Listen subscribes self to the mouse button, mouse move and scroll signals.
// The subscriptions track the behaviour's lifetime and go quiet once the
// behaviour is destroyed.
func (b *BaseBehaviour) Listen(self Behaviour) {
	if b.Input == nil {
		return
	}
	track := signal.Track(b.life)
	b.conns = append(b.conns,
		b.Input.MouseButton.Connect(func(e input.ButtonEvent) { self.OnMouseButton(e) }, track),
		b.Input.MouseMove.Connect(func(e input.CursorEvent) { self.OnMouseMove(e) }, track),
		b.Input.Scroll.Connect(func(e input.ScrollEvent) { self.OnScroll(e) }, track),
	)
}

// Lifetime expires when the behaviour is destroyed. Extra subscriptions made
// by a behaviour should track it.
func (b *BaseBehaviour) Lifetime() *signal.Lifetime { return b.life }

func (b *BaseBehaviour) UpdatePerFrame(float32)          {}
func (b *BaseBehaviour) OnMouseButton(input.ButtonEvent) {}
func (b *BaseBehaviour) OnMouseMove(input.CursorEvent)   {}
func (b *BaseBehaviour) OnScroll(input.ScrollEvent)      {}

// Destroy ends the lifetime and drops the subscriptions.
func (b *BaseBehaviour) Destroy() {
	b.life.End()
	b.conns.DisconnectAll()
}

// keyDown reports whether code is held, false without input.
func (b *BaseBehaviour) keyDown(code input.KeyCode) bool {
	return b.Input != nil && b.Input.IsDown(code)
}
