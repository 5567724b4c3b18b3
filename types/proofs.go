package types

import (
	"math/big"

	"golang.org/x/xerrors"
)

// ShuffleProofT holds the commitments t_1, t_2, t_3, t_4 = (t_41, t_42) and
// t_hat of a shuffle proof.
type ShuffleProofT struct {
	t1   *big.Int
	t2   *big.Int
	t3   *big.Int
	t4   Vector
	tHat Vector
}

// NewShuffleProofT copies its arguments into a new commitment tuple.
func NewShuffleProofT(t1, t2, t3 *big.Int, t4, tHat []*big.Int) ShuffleProofT {
	return ShuffleProofT{
		t1:   copyInt(t1),
		t2:   copyInt(t2),
		t3:   copyInt(t3),
		t4:   NewVector(t4),
		tHat: NewVector(tHat),
	}
}

func (t ShuffleProofT) T1() *big.Int { return copyInt(t.t1) }
func (t ShuffleProofT) T2() *big.Int { return copyInt(t.t2) }
func (t ShuffleProofT) T3() *big.Int { return copyInt(t.t3) }
func (t ShuffleProofT) T4() Vector { return t.t4 }
func (t ShuffleProofT) THat() Vector { return t.tHat }

// ShuffleProofS holds the responses s_1..s_4, s_hat and s_prime of a shuffle
// proof.
type ShuffleProofS struct {
	s1     *big.Int
	s2     *big.Int
	s3     *big.Int
	s4     *big.Int
	sHat   Vector
	sPrime Vector
}

// NewShuffleProofS copies its arguments into a new response tuple.
func NewShuffleProofS(s1, s2, s3, s4 *big.Int, sHat, sPrime []*big.Int) ShuffleProofS {
	return ShuffleProofS{
		s1:     copyInt(s1),
		s2:     copyInt(s2),
		s3:     copyInt(s3),
		s4:     copyInt(s4),
		sHat:   NewVector(sHat),
		sPrime: NewVector(sPrime),
	}
}

func (s ShuffleProofS) S1() *big.Int { return copyInt(s.s1) }
func (s ShuffleProofS) S2() *big.Int { return copyInt(s.s2) }
func (s ShuffleProofS) S3() *big.Int { return copyInt(s.s3) }
func (s ShuffleProofS) S4() *big.Int { return copyInt(s.s4) }
func (s ShuffleProofS) SHat() Vector { return s.sHat }
func (s ShuffleProofS) SPrime() Vector { return s.sPrime }

// ShuffleProof is the non-interactive proof that a list of ciphertexts is a
// permuted re-encryption of another one. bold_c is the commitment to the
// permutation and bold_c_hat the commitment chain.
type ShuffleProof struct {
	t    ShuffleProofT
	s    ShuffleProofS
	c    Vector
	cHat Vector
}

// NewShuffleProof assembles a shuffle proof. The lengths are not checked here:
// a malformed proof is reported by the verifier.
func NewShuffleProof(t ShuffleProofT, s ShuffleProofS, c, cHat []*big.Int) *ShuffleProof {
	return &ShuffleProof{
		t:    t,
		s:    s,
		c:    NewVector(c),
		cHat: NewVector(cHat),
	}
}

func (p *ShuffleProof) T() ShuffleProofT { return p.t }
func (p *ShuffleProof) S() ShuffleProofS { return p.s }
func (p *ShuffleProof) C() Vector { return p.c }
func (p *ShuffleProof) CHat() Vector { return p.cHat }

// DecryptionProof proves that a list of partial decryptions was computed
// with the secret key matching a public key. T has one element more than
// there are ciphertexts: t_0 = g^w and t_i = b_i^w.
type DecryptionProof struct {
	t Vector
	s *big.Int
}

// NewDecryptionProof copies t and s into a new proof.
func NewDecryptionProof(t []*big.Int, s *big.Int) *DecryptionProof {
	return &DecryptionProof{t: NewVector(t), s: copyInt(s)}
}

func (p *DecryptionProof) T() Vector { return p.t }
func (p *DecryptionProof) S() *big.Int { return copyInt(p.s) }

// CommitmentChain pairs a sequence of commitments with their openings.
type CommitmentChain struct {
	c Vector
	r Vector
}

// NewCommitmentChain returns a chain owning copies of c and r, which must
// have the same length.
func NewCommitmentChain(c, r []*big.Int) (*CommitmentChain, error) {
	if len(c) != len(r) {
		return nil, xerrors.Errorf("commitment chain: %d commitments for %d openings", len(c), len(r))
	}

	return &CommitmentChain{c: NewVector(c), r: NewVector(r)}, nil
}

func (cc *CommitmentChain) C() Vector { return cc.c }
func (cc *CommitmentChain) R() Vector { return cc.r }
