// Package general implements the algebraic helpers shared by every
// authority: membership tests for G_q and Z_q, derivation of independent
// generators and Fiat-Shamir challenges.
package general

import (
	"math/big"
	"sync"

	"go.dedis.ch/mixnet/types"
)

const (
	generatorsLabel = "mixnet-generators"
	challengeLabel  = "mixnet-nizkp-challenge"
	challengesLabel = "mixnet-nizkp-challenges"
)

var one = big.NewInt(1)

// Algorithms is bound to one encryption group. It is safe for concurrent
// use.
type Algorithms struct {
	group    *types.EncryptionGroup
	// cofactor is (p-1)/q, raising any unit of Z_p to it lands in G_q.
	cofactor *big.Int

	mu         sync.Mutex
	generators []*big.Int
}

// New returns the helpers for the given group.
func New(group *types.EncryptionGroup) *Algorithms {
	cofactor := new(big.Int).Sub(group.P, one)
	cofactor.Quo(cofactor, group.Q)

	return &Algorithms{
		group:    group,
		cofactor: cofactor,
	}
}

// IsMember tells if 1 <= x < p and x^q = 1 mod p.
func (a *Algorithms) IsMember(x *big.Int) bool {
	if x == nil || x.Sign() < 1 || x.Cmp(a.group.P) >= 0 {
		return false
	}
	return new(big.Int).Exp(x, a.group.Q, a.group.P).Cmp(one) == 0
}

// IsInZq tells if 0 <= x < q.
func (a *Algorithms) IsInZq(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(a.group.Q) < 0
}

// GetGenerators returns n elements of G_q \ {1} whose discrete logarithms
// relative to each other and to g and h are unknown. The i-th element
// only depends on the group and on i, so the result for n is a prefix of
// the result for any larger n.
func (a *Algorithms) GetGenerators(n int) []*big.Int {
	a.mu.Lock()
	for i := len(a.generators); i < n; i++ {
		a.generators = append(a.generators, a.deriveGenerator(i))
	}
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int).Set(a.generators[i])
	}
	a.mu.Unlock()

	return out
}

// deriveGenerator hashes (group, i, x) into Z_p for x = 0, 1, ... and maps
// the result to G_q until it is neither 0 nor 1.
func (a *Algorithms) deriveGenerator(i int) *big.Int {
	tr := a.groupTranscript(generatorsLabel)
	tr.AppendUint64([]byte("i"), uint64(i))

	// 16 extra bytes make the reduction mod p statistically close to uniform.
	size := (a.group.P.BitLen()+7)/8 + 16

	for x := uint64(0); ; x++ {
		fork := tr.Clone()
		fork.AppendUint64([]byte("x"), x)

		h := new(big.Int).SetBytes(fork.GetChallengeBytes([]byte("h"), size))
		h.Mod(h, a.group.P)
		h.Exp(h, a.cofactor, a.group.P)
		if h.Sign() != 0 && h.Cmp(one) != 0 {
			return h
		}
	}
}

// GetNIZKPChallenge derives the challenge of a non-interactive proof from
// the public inputs y and the commitments t. The result is a tau-bit
// integer reduced into Z_q.
func (a *Algorithms) GetNIZKPChallenge(y, t Hashable, tau int) *big.Int {
	tr := a.groupTranscript(challengeLabel)
	tr.AppendMessage([]byte("y"), y.Encode())
	tr.AppendMessage([]byte("t"), t.Encode())

	return a.squeeze(tr, []byte("c"), tau)
}

// GetNIZKPChallenges derives n challenges from the public inputs y. The
// i-th challenge is squeezed from a fork of the transcript that absorbed i,
// so each one can be recomputed independently of the others.
func (a *Algorithms) GetNIZKPChallenges(n int, y Hashable, tau int) []*big.Int {
	tr := a.groupTranscript(challengesLabel)
	tr.AppendUint64([]byte("n"), uint64(n))
	tr.AppendMessage([]byte("y"), y.Encode())

	out := make([]*big.Int, n)
	for i := range out {
		fork := tr.Clone()
		fork.AppendUint64([]byte("i"), uint64(i))
		out[i] = a.squeeze(fork, []byte("u"), tau)
	}

	return out
}

// groupTranscript starts a transcript bound to the group parameters.
func (a *Algorithms) groupTranscript(label string) *Transcript {
	tr := NewTranscript(label)
	tr.AppendMessage([]byte("group"), List(
		Int(a.group.P), Int(a.group.Q), Int(a.group.G), Int(a.group.H),
	).Encode())
	return tr
}

func (a *Algorithms) squeeze(tr *Transcript, label []byte, tau int) *big.Int {
	size := (tau + 7) / 8
	if size < 1 {
		size = 1
	}

	x := new(big.Int).SetBytes(tr.GetChallengeBytes(label, size))
	if tau > 0 {
		x.Mod(x, new(big.Int).Lsh(one, uint(tau)))
	}
	return x.Mod(x, a.group.Q)
}
