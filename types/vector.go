package types

import "math/big"

// Vector is a read-only view over a sequence of integers. It owns its
// elements: NewVector copies them in and At copies them out, so no caller
// can reach the backing storage.
type Vector struct {
	elems []*big.Int
}

// NewVector returns a vector holding copies of elems.
func NewVector(elems []*big.Int) Vector {
	v := Vector{elems: make([]*big.Int, len(elems))}
	for i, x := range elems {
		v.elems[i] = copyInt(x)
	}
	return v
}

// Len returns the number of elements.
func (v Vector) Len() int {
	return len(v.elems)
}

// At returns a copy of the i-th element.
func (v Vector) At(i int) *big.Int {
	return copyInt(v.elems[i])
}

// Slice returns a copy of all elements.
func (v Vector) Slice() []*big.Int {
	out := make([]*big.Int, len(v.elems))
	for i, x := range v.elems {
		out[i] = copyInt(x)
	}
	return out
}

// Equal compares two vectors element-wise.
func (v Vector) Equal(other Vector) bool {
	if len(v.elems) != len(other.elems) {
		return false
	}
	for i := range v.elems {
		if !intEqual(v.elems[i], other.elems[i]) {
			return false
		}
	}
	return true
}
