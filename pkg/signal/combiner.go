package signal

import "iter"

// Void is the result type of slots that return nothing.
type Void = struct{}

// Optional holds the result of LastValue; Valid is false when no slot ran.
type Optional[R any] struct {
	Value R
	Valid bool
}

// Get returns the value and whether it is present.
func (o Optional[R]) Get() (R, bool) {
	return o.Value, o.Valid
}

// LastValue keeps only the result of the last slot invoked.
func LastValue[R any](results iter.Seq[R]) Optional[R] {
	var out Optional[R]
	for r := range results {
		out = Optional[R]{Value: r, Valid: true}
	}
	return out
}

// AllValues collects every slot result in invocation order. With no slots it
// returns an empty, non-nil slice.
func AllValues[R any](results iter.Seq[R]) []R {
	out := []R{}
	for r := range results {
		out = append(out, r)
	}
	return out
}

// Drain invokes every slot and discards the results.
func Drain[R any](results iter.Seq[R]) Void {
	for range results {
	}
	return Void{}
}
