// Package signal implements typed publish/subscribe channels.
//
// A Signal delivers one argument value to every connected slot in ascending
// group order and folds the slot results through a combiner. Slots may track
// liveness probes; a slot with an expired probe is never called and is
// removed the next time the signal fires.
//
// The subscriber list is guarded by a per-signal mutex that is released before
// any slot runs, so slots may connect or disconnect re-entrantly.
package signal

import (
	"iter"
	"reflect"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"weak"
)

// Option configures a connection.
type Option func(*connectConfig)

type connectConfig struct {
	group   int
	tracked trackedSet
}

// Group places the slot in group g. Lower groups fire first; order inside a
// group is not part of the contract.
func Group(g int) Option {
	return func(c *connectConfig) { c.group = g }
}

// Track ties the slot to the given probes.
func Track(ts ...Tracked) Option {
	return func(c *connectConfig) {
		for _, t := range ts {
			if t != nil {
				c.tracked = append(c.tracked, t)
			}
		}
	}
}

type slot[A, R any] struct {
	fn      func(A) R
	target  uintptr
	owner   any
	tracked trackedSet
}

func (s *slot[A, R]) expired() bool {
	return s.tracked.expired()
}

type body[A, R any] struct {
	group int
	slot  atomic.Pointer[slot[A, R]]
	state *connState
}

func (b *body[A, R]) live() (*slot[A, R], bool) {
	s := b.slot.Load()
	if s == nil || !b.state.connected.Load() {
		return nil, false
	}
	if s.expired() {
		b.state.connected.Store(false)
		return nil, false
	}
	return s, true
}

// core is the subscriber registry shared by Signal and Event.
type core[A, R any] struct {
	mu     sync.Mutex
	bodies []*body[A, R]

	lifeOnce sync.Once
	life     *Lifetime
}

func funcTarget(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

func (c *core[A, R]) connect(fn func(A) R, target uintptr, owner any, opts []Option) Connection {
	cfg := connectConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	b := &body[A, R]{group: cfg.group}
	sl := &slot[A, R]{fn: fn, target: target, owner: owner, tracked: cfg.tracked}
	b.slot.Store(sl)
	b.state = &connState{
		expired: func() bool {
			s := b.slot.Load()
			return s == nil || s.expired()
		},
		release: func() { c.remove(b) },
	}
	b.state.connected.Store(true)

	c.mu.Lock()
	// upper bound keeps insertion order inside a group
	i := sort.Search(len(c.bodies), func(i int) bool { return c.bodies[i].group > cfg.group })
	c.bodies = slices.Insert(c.bodies, i, b)
	c.mu.Unlock()

	return Connection{state: weak.Make(b.state)}
}

func (c *core[A, R]) remove(b *body[A, R]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b.slot.Store(nil)
	if i := slices.Index(c.bodies, b); i >= 0 {
		c.bodies = slices.Delete(c.bodies, i, i+1)
	}
}

func (c *core[A, R]) find(target uintptr, owner any) *body[A, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.bodies {
		s := b.slot.Load()
		if s != nil && s.target == target && s.owner == owner {
			return b
		}
	}
	return nil
}

func (c *core[A, R]) disconnect(target uintptr, owner any) bool {
	b := c.find(target, owner)
	if b == nil {
		return false
	}
	b.state.disconnect()
	return true
}

// pruneLocked drops released or expired bodies. Callers hold mu.
func (c *core[A, R]) pruneLocked() {
	c.bodies = slices.DeleteFunc(c.bodies, func(b *body[A, R]) bool {
		s := b.slot.Load()
		if s == nil || !b.state.connected.Load() || s.expired() {
			b.state.connected.Store(false)
			b.slot.Store(nil)
			return true
		}
		return false
	})
}

// snapshot prunes and returns the bodies to invoke for one fire.
func (c *core[A, R]) snapshot() []*body[A, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	return slices.Clone(c.bodies)
}

func (c *core[A, R]) results(bodies []*body[A, R], arg A) iter.Seq[R] {
	return func(yield func(R) bool) {
		for _, b := range bodies {
			s, ok := b.live()
			if !ok {
				continue
			}
			if !yield(s.fn(arg)) {
				return
			}
		}
	}
}

func (c *core[A, R]) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func (c *core[A, R]) clear() {
	c.mu.Lock()
	bodies := c.bodies
	c.bodies = nil
	c.mu.Unlock()
	for _, b := range bodies {
		b.state.connected.Store(false)
		b.slot.Store(nil)
	}
}

func (c *core[A, R]) lifetime() *Lifetime {
	c.lifeOnce.Do(func() { c.life = NewLifetime() })
	return c.life
}

// Signal is a multi-subscriber channel whose slots take an A and return an R;
// Fire folds the results into a C.
type Signal[A, R, C any] struct {
	core    core[A, R]
	combine func(iter.Seq[R]) C
}

// New returns a signal folding slot results with combine.
func New[A, R, C any](combine func(iter.Seq[R]) C) *Signal[A, R, C] {
	return &Signal[A, R, C]{combine: combine}
}

// NewLastValue returns a signal whose Fire yields the last slot's result.
func NewLastValue[A, R any]() *Signal[A, R, Optional[R]] {
	return New[A](LastValue[R])
}

// NewAllValues returns a signal whose Fire yields every slot's result.
func NewAllValues[A, R any]() *Signal[A, R, []R] {
	return New[A](AllValues[R])
}

// Connect registers fn.
func (s *Signal[A, R, C]) Connect(fn func(A) R, opts ...Option) Connection {
	return s.core.connect(fn, funcTarget(fn), nil, opts)
}

// Disconnect removes the first subscription whose function is fn. Closures
// built from the same literal share one target, so remove those through the
// Connection returned by Connect.
func (s *Signal[A, R, C]) Disconnect(fn func(A) R) bool {
	return s.core.disconnect(funcTarget(fn), nil)
}

// Contains reports whether fn is subscribed.
func (s *Signal[A, R, C]) Contains(fn func(A) R) bool {
	return s.core.find(funcTarget(fn), nil) != nil
}

// Fire invokes every live slot with arg and returns the combined result.
// With no slots the combiner sees an empty sequence.
func (s *Signal[A, R, C]) Fire(arg A) C {
	seq := s.core.results(s.core.snapshot(), arg)
	if s.combine == nil {
		var zero C
		Drain(seq)
		return zero
	}
	return s.combine(seq)
}

// ConnectionNum returns the number of registered subscriptions, including
// expired ones not yet pruned by a Fire.
func (s *Signal[A, R, C]) ConnectionNum() int { return s.core.count() }

// Empty reports whether no subscription is registered.
func (s *Signal[A, R, C]) Empty() bool { return s.core.count() == 0 }

// DisconnectAll removes every subscription.
func (s *Signal[A, R, C]) DisconnectAll() { s.core.clear() }

// Lifetime returns a probe that expires when the signal is closed. Slots on
// other signals can track it.
func (s *Signal[A, R, C]) Lifetime() Tracked { return s.core.lifetime() }

// Close expires the signal's lifetime and removes every subscription.
func (s *Signal[A, R, C]) Close() {
	s.core.lifetime().End()
	s.core.clear()
}

// ConnectMethod subscribes method bound to owner. The owner is held weakly:
// once it has been garbage collected the slot expires.
func ConnectMethod[T, A, R, C any](s *Signal[A, R, C], owner *T, method func(*T, A) R, opts ...Option) Connection {
	ref := weak.Make(owner)
	fn := func(a A) R {
		o := ref.Value()
		if o == nil {
			var zero R
			return zero
		}
		return method(o, a)
	}
	opts = append(opts, Track(pointerTracker[T]{ref: ref}))
	return s.core.connect(fn, funcTarget(method), ref, opts)
}

// DisconnectMethod removes the subscription of method bound to owner.
func DisconnectMethod[T, A, R, C any](s *Signal[A, R, C], owner *T, method func(*T, A) R) bool {
	return s.core.disconnect(funcTarget(method), weak.Make(owner))
}
