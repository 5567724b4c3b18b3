// Package random provides the secure random source of the authorities.
package random

import (
	"crypto/cipher"
	"io"
	"math/big"
	"sync"

	kyberrand "go.dedis.ch/kyber/v3/util/random"
	"golang.org/x/xerrors"
)

// Generator draws randomness from a kyber stream mixing one or more readers
// through BLAKE2Xb. Every call draws fresh bytes; nothing is cached.
type Generator struct {
	mu     sync.Mutex
	stream cipher.Stream
}

// New returns a generator reading from crypto/rand.
func New() *Generator {
	return &Generator{stream: kyberrand.New()}
}

// NewFromReaders returns a generator mixing the given readers. Tests use it
// with deterministic readers.
func NewFromReaders(readers ...io.Reader) *Generator {
	return &Generator{stream: kyberrand.New(readers...)}
}

// RandomInZq returns a uniform integer in [0, q).
func (g *Generator) RandomInZq(q *big.Int) (x *big.Int, err error) {
	if q == nil || q.Cmp(big.NewInt(2)) < 0 {
		return nil, xerrors.Errorf("random in Z_q: modulus must be at least 2")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	defer recoverStream(&err)

	return kyberrand.Int(q, g.stream), nil
}

// Bytes returns n random bytes.
func (g *Generator) Bytes(n int) (buf []byte, err error) {
	if n < 0 {
		return nil, xerrors.Errorf("random bytes: negative length %d", n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	defer recoverStream(&err)

	out := make([]byte, n)
	g.stream.XORKeyStream(out, out)
	return out, nil
}

// recoverStream turns a panic of the underlying stream, raised when none of
// its readers could deliver, into an error.
func recoverStream(err *error) {
	r := recover()
	if r != nil {
		*err = xerrors.Errorf("random source failed: %v", r)
	}
}
