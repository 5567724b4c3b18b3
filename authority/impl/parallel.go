package impl

import (
	"math/big"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// span is the half-open index range [lo, hi).
type span struct {
	lo, hi int
}

// splitRange cuts [0, n) into at most parts contiguous spans of nearly
// equal size, in increasing order. It returns no span for n = 0.
func splitRange(n, parts int) []span {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	size := (n + parts - 1) / parts
	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		spans = append(spans, span{lo: lo, hi: hi})
	}
	return spans
}

// forSpans runs f on every span of [0, n) with at most a.workers goroutines
// and waits for all of them.
func (a *DecryptionAuthority) forSpans(n int, f func(k int, s span)) {
	var g errgroup.Group
	g.SetLimit(a.workers)

	for k, s := range splitRange(n, a.workers) {
		k, s := k, s
		g.Go(func() error {
			f(k, s)
			return nil
		})
	}

	_ = g.Wait()
}

// productMod returns prod_{i<n} f(i) mod m. Each span folds its factors in
// index order and the partial products are combined in span order, so the
// result never depends on scheduling. The empty product is 1.
func (a *DecryptionAuthority) productMod(n int, m *big.Int, f func(i int) *big.Int) *big.Int {
	partial := make([]*big.Int, len(splitRange(n, a.workers)))

	a.forSpans(n, func(k int, s span) {
		acc := big.NewInt(1)
		for i := s.lo; i < s.hi; i++ {
			acc.Mul(acc, f(i))
			acc.Mod(acc, m)
		}
		partial[k] = acc
	})

	result := big.NewInt(1)
	for _, p := range partial {
		result.Mul(result, p)
		result.Mod(result, m)
	}
	return result
}

// mapIndices returns [f(0), ..., f(n-1)].
func (a *DecryptionAuthority) mapIndices(n int, f func(i int) *big.Int) []*big.Int {
	out := make([]*big.Int, n)

	a.forSpans(n, func(_ int, s span) {
		for i := s.lo; i < s.hi; i++ {
			out[i] = f(i)
		}
	})

	return out
}

// allIndices tells if pred holds for every i in [0, n). Spans stop early
// once any of them found a counterexample. It is true for n = 0.
func (a *DecryptionAuthority) allIndices(n int, pred func(i int) bool) bool {
	var failed int32

	a.forSpans(n, func(_ int, s span) {
		for i := s.lo; i < s.hi; i++ {
			if atomic.LoadInt32(&failed) != 0 {
				return
			}
			if !pred(i) {
				atomic.StoreInt32(&failed, 1)
				return
			}
		}
	})

	return atomic.LoadInt32(&failed) == 0
}
