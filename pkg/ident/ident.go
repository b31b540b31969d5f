// Package ident issues process-unique identifiers for long-lived engine
// objects (nodes, components, scenes, materials, models).
package ident

import "sync/atomic"

// ID identifies an engine object. IDs are never reused within a process.
type ID uint64

// Invalid is the ID carried by an object whose identity was moved away.
const Invalid ID = 0

var counter atomic.Uint64

// Next returns a fresh ID.
func Next() ID {
	return ID(counter.Add(1))
}

// Object carries an identity. Embed it by value in engine types.
//
// Assigning an Object copies the bits, so use Copy when a duplicate needs its
// own identity and Move when the identity is handed over.
type Object struct {
	id ID
}

// New returns an Object with a fresh ID.
func New() Object {
	return Object{id: Next()}
}

// ID returns the identifier.
func (o Object) ID() ID {
	return o.id
}

// Valid reports whether the object still owns an identity.
func (o Object) Valid() bool {
	return o.id != Invalid
}

// Copy returns a new identity; the copy never aliases the original.
func (o Object) Copy() Object {
	return New()
}

// Move transfers the identity out of o, leaving o invalid.
func (o *Object) Move() Object {
	moved := Object{id: o.id}
	o.id = Invalid
	return moved
}
