package signal

import (
	"sync/atomic"
	"weak"
)

// Tracked is a liveness probe attached to a slot. Once any tracked value of a
// slot reports Expired, the slot is never invoked again and is pruned on the
// next Fire.
type Tracked interface {
	Expired() bool
}

// Lifetime is an explicitly ended liveness token. Components end theirs when
// they are destroyed.
type Lifetime struct {
	ended atomic.Bool
}

// NewLifetime returns a live token.
func NewLifetime() *Lifetime {
	return &Lifetime{}
}

// End marks the token expired. Ending twice is harmless.
func (l *Lifetime) End() {
	l.ended.Store(true)
}

// Expired reports whether End was called. A nil Lifetime never expires.
func (l *Lifetime) Expired() bool {
	return l != nil && l.ended.Load()
}

type pointerTracker[T any] struct {
	ref weak.Pointer[T]
}

func (t pointerTracker[T]) Expired() bool {
	return t.ref.Value() == nil
}

// TrackPointer tracks p without keeping it alive: the probe expires once the
// garbage collector has reclaimed *p.
func TrackPointer[T any](p *T) Tracked {
	return pointerTracker[T]{ref: weak.Make(p)}
}

type trackedSet []Tracked

func (ts trackedSet) expired() bool {
	for _, t := range ts {
		if t.Expired() {
			return true
		}
	}
	return false
}
