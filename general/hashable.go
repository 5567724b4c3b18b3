package general

import (
	"encoding/binary"
	"math/big"

	"go.dedis.ch/mixnet/types"
)

// kind tags every hashable value so that two different structures can never
// produce the same encoding.
type kind byte

const (
	kindInt kind = iota + 1
	kindBytes
	kindString
	kindList
)

// Hashable is a typed value fed to the Fiat-Shamir transcript: an integer, a
// byte string, a text string or an ordered list of hashables. The set of
// kinds is closed; values are built with the constructors below.
type Hashable struct {
	kind  kind
	raw   []byte
	items []Hashable
}

// Int wraps a non-negative integer. A nil integer encodes like zero.
func Int(x *big.Int) Hashable {
	if x == nil {
		return Hashable{kind: kindInt}
	}
	return Hashable{kind: kindInt, raw: x.Bytes()}
}

// Ints wraps a sequence of integers as a list.
func Ints(xs []*big.Int) Hashable {
	items := make([]Hashable, len(xs))
	for i, x := range xs {
		items[i] = Int(x)
	}
	return Hashable{kind: kindList, items: items}
}

// Bytes wraps a byte string.
func Bytes(b []byte) Hashable {
	return Hashable{kind: kindBytes, raw: append([]byte(nil), b...)}
}

// String wraps a text string.
func String(s string) Hashable {
	return Hashable{kind: kindString, raw: []byte(s)}
}

// List groups hashables into an ordered tuple.
func List(items ...Hashable) Hashable {
	return Hashable{kind: kindList, items: append([]Hashable(nil), items...)}
}

// Encryptions wraps ciphertexts as a list of (a, b) pairs.
func Encryptions(es []types.Encryption) Hashable {
	items := make([]Hashable, len(es))
	for i, e := range es {
		items[i] = List(Int(e.A), Int(e.B))
	}
	return Hashable{kind: kindList, items: items}
}

// Encode returns the canonical encoding: the kind byte, a little-endian
// 32-bit length, then the payload. The length of a list is its number of
// items and its payload the concatenated encodings of the items.
func (h Hashable) Encode() []byte {
	return h.appendTo(nil)
}

func (h Hashable) appendTo(buf []byte) []byte {
	size := make([]byte, 4)

	if h.kind == kindList {
		binary.LittleEndian.PutUint32(size, uint32(len(h.items)))
		buf = append(buf, byte(kindList))
		buf = append(buf, size...)
		for _, item := range h.items {
			buf = item.appendTo(buf)
		}
		return buf
	}

	binary.LittleEndian.PutUint32(size, uint32(len(h.raw)))
	buf = append(buf, byte(h.kind))
	buf = append(buf, size...)
	return append(buf, h.raw...)
}
