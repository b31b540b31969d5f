package signal

import (
	"sync/atomic"
	"weak"
)

// connState is the non-generic part of a subscription record. Connection
// handles only ever point at it weakly.
type connState struct {
	connected atomic.Bool
	expired   func() bool
	release   func()
}

func (cs *connState) disconnect() {
	if cs.connected.CompareAndSwap(true, false) {
		cs.release()
	}
}

func (cs *connState) isConnected() bool {
	if !cs.connected.Load() {
		return false
	}
	if cs.expired() {
		cs.connected.Store(false)
		return false
	}
	return true
}

// Connection is a handle to one subscription. It does not keep the
// subscription alive; a zero Connection reports not connected.
type Connection struct {
	state weak.Pointer[connState]
}

// Connected reports whether the subscription is still registered and none of
// its tracked objects has expired.
func (c Connection) Connected() bool {
	cs := c.state.Value()
	return cs != nil && cs.isConnected()
}

// Disconnect removes the subscription. Calling it on a dead handle is a no-op.
func (c Connection) Disconnect() {
	if cs := c.state.Value(); cs != nil {
		cs.disconnect()
	}
}

// Connections is a set of handles released together.
type Connections []Connection

// DisconnectAll disconnects every handle and empties the set.
func (cs *Connections) DisconnectAll() {
	for _, c := range *cs {
		c.Disconnect()
	}
	*cs = nil
}
