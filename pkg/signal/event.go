package signal

import "weak"

// Event is a signal whose slots return nothing. The zero value is ready to use.
type Event[A any] struct {
	core core[A, Void]
}

// NewEvent returns an empty event.
func NewEvent[A any]() *Event[A] {
	return &Event[A]{}
}

// Connect registers fn.
func (e *Event[A]) Connect(fn func(A), opts ...Option) Connection {
	wrapped := func(a A) Void {
		fn(a)
		return Void{}
	}
	return e.core.connect(wrapped, funcTarget(fn), nil, opts)
}

// Disconnect removes the first subscription whose function is fn. Closures
// built from the same literal share one target, so remove those through the
// Connection returned by Connect.
func (e *Event[A]) Disconnect(fn func(A)) bool {
	return e.core.disconnect(funcTarget(fn), nil)
}

// Contains reports whether fn is subscribed.
func (e *Event[A]) Contains(fn func(A)) bool {
	return e.core.find(funcTarget(fn), nil) != nil
}

// Fire invokes every live slot with arg.
func (e *Event[A]) Fire(arg A) {
	for range e.core.results(e.core.snapshot(), arg) {
	}
}

// ConnectionNum returns the number of registered subscriptions, including
// expired ones not yet pruned by a Fire.
func (e *Event[A]) ConnectionNum() int { return e.core.count() }

// Empty reports whether no subscription is registered.
func (e *Event[A]) Empty() bool { return e.core.count() == 0 }

// DisconnectAll removes every subscription.
func (e *Event[A]) DisconnectAll() { e.core.clear() }

// Lifetime returns a probe that expires when the event is closed.
func (e *Event[A]) Lifetime() Tracked { return e.core.lifetime() }

// Close expires the event's lifetime and removes every subscription.
func (e *Event[A]) Close() {
	e.core.lifetime().End()
	e.core.clear()
}

// Bind subscribes method bound to owner, holding the owner weakly.
func Bind[T, A any](e *Event[A], owner *T, method func(*T, A), opts ...Option) Connection {
	ref := weak.Make(owner)
	fn := func(a A) Void {
		if o := ref.Value(); o != nil {
			method(o, a)
		}
		return Void{}
	}
	opts = append(opts, Track(pointerTracker[T]{ref: ref}))
	return e.core.connect(fn, funcTarget(method), ref, opts)
}

// Unbind removes the subscription of method bound to owner.
func Unbind[T, A any](e *Event[A], owner *T, method func(*T, A)) bool {
	return e.core.disconnect(funcTarget(method), weak.Make(owner))
}
