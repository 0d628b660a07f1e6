// Package witness reads and writes the binary .wtns witness container,
// applies named signal overrides onto a loaded witness vector, and tracks
// which witness file (original or modified) is current for a circuit
// instance. Overriding is the mechanism used to build deliberately invalid
// witnesses for negative testing of a circuit's constraints.
package witness

import (
	"errors"
	"math/big"
)

var (
	// ErrWitnessNotFound is returned when the current witness is queried
	// before any witness has been calculated for the circuit instance.
	ErrWitnessNotFound = errors.New("witness not found, calculate it from inputs first")

	// ErrMalformedWitnessFile is returned when a witness container's magic,
	// version or section markers do not match the expected format.
	ErrMalformedWitnessFile = errors.New("malformed witness file")
)

// Vector is an ordered witness assignment: one field element per signal
// slot, position 0 holding the constant 1. Length and field are fixed by
// the witness calculation that produced it.
type Vector []*big.Int

// Clone returns a deep copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for i, e := range v {
		out[i] = new(big.Int).Set(e)
	}
	return out
}

// Equal reports whether both vectors hold the same values in the same order.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i].Cmp(other[i]) != 0 {
			return false
		}
	}
	return true
}
