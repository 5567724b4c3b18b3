package impl

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mixnet/general"
	"go.dedis.ch/mixnet/random"
	"go.dedis.ch/mixnet/types"
)

// oakleyP is the 1024-bit safe prime of the second Oakley group (RFC 2409).
const oakleyP = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74" +
	"020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F1437" +
	"4FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381FFFFFFFFFFFFFFFF"

// oakleyGroup has g = 2 and h = 9, both quadratic residues mod p.
func oakleyGroup() *types.EncryptionGroup {
	p, _ := new(big.Int).SetString(oakleyP, 16)
	q := new(big.Int).Rsh(p, 1)
	return types.NewEncryptionGroup(p, q, big.NewInt(2), big.NewInt(9))
}

// toyGroup is a 64-bit safe-prime group with g = 4 and h = 9.
func toyGroup() *types.EncryptionGroup {
	p, _ := new(big.Int).SetString("a4e4e25a2bf9133f", 16)
	q, _ := new(big.Int).SetString("5272712d15fc899f", 16)
	return types.NewEncryptionGroup(p, q, big.NewInt(4), big.NewInt(9))
}

func newAuthority(eg *types.EncryptionGroup, tau, s int, opts ...Option) *DecryptionAuthority {
	params := &types.PublicParameters{
		Group:       eg,
		Security:    types.SecurityParameters{Tau: tau},
		Authorities: s,
	}
	return NewDecryptionAuthority(params, general.New(eg), random.New(), opts...)
}

func randomZq(t *testing.T, a *DecryptionAuthority) *big.Int {
	x, err := a.random.RandomInZq(a.params.Group.Q)
	require.NoError(t, err)
	return x
}

func genKeyPair(t *testing.T, a *DecryptionAuthority) types.KeyPair {
	kp, err := a.GenerateKeyPair(a.params.Group)
	require.NoError(t, err)
	return kp
}

// encryptRandom returns n encryptions of random group elements together
// with the plaintexts.
func encryptRandom(t *testing.T, a *DecryptionAuthority, pk types.EncryptionPublicKey,
	n int) ([]types.Encryption, []*big.Int) {

	eg := a.params.Group
	e := make([]types.Encryption, n)
	m := make([]*big.Int, n)
	for i := range e {
		m[i] = a.exp(eg.G, randomZq(t, a))
		r := randomZq(t, a)
		e[i] = types.Encryption{
			A: a.mul(m[i], a.exp(pk.PublicKey, r)),
			B: a.exp(eg.G, r),
		}
	}
	return e, m
}

// reEncryptShuffle returns ePrime with ePrime_i a re-encryption of
// e_{psi(i)} under randomness rPrime_i.
func reEncryptShuffle(a *DecryptionAuthority, e []types.Encryption, pk types.EncryptionPublicKey,
	psi []int, rPrime []*big.Int) []types.Encryption {

	eg := a.params.Group
	ePrime := make([]types.Encryption, len(e))
	for i := range ePrime {
		src := e[psi[i]]
		ePrime[i] = types.Encryption{
			A: a.mul(src.A, a.exp(pk.PublicKey, rPrime[i])),
			B: a.mul(src.B, a.exp(eg.G, rPrime[i])),
		}
	}
	return ePrime
}

// shuffle mixes e with a random permutation and random re-encryptions, and
// proves it.
func shuffle(t *testing.T, a *DecryptionAuthority, e []types.Encryption,
	pk types.EncryptionPublicKey) ([]types.Encryption, *types.ShuffleProof) {

	psi := rand.Perm(len(e))
	rPrime := make([]*big.Int, len(e))
	for i := range rPrime {
		rPrime[i] = randomZq(t, a)
	}

	ePrime := reEncryptShuffle(a, e, pk, psi, rPrime)
	return ePrime, proveShuffle(t, a, e, ePrime, psi, rPrime, pk)
}

// proveShuffle is a reference prover of the shuffle argument checked by
// CheckShuffleProof, for ePrime_i = ReEnc(e_{psi(i)}, rPrime_i).
func proveShuffle(t *testing.T, a *DecryptionAuthority, e, ePrime []types.Encryption,
	psi []int, rPrime []*big.Int, pk types.EncryptionPublicKey) *types.ShuffleProof {

	eg := a.params.Group
	q := eg.Q
	tau := a.params.Security.Tau
	n := len(e)

	h := a.general.GetGenerators(n)

	// permutation commitment: c_{psi(i)} = g^r_{psi(i)} * h_i
	r := make([]*big.Int, n)
	c := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		j := psi[i]
		r[j] = randomZq(t, a)
		c[j] = a.mul(a.exp(eg.G, r[j]), h[i])
	}

	u := a.general.GetNIZKPChallenges(n, general.List(
		general.Encryptions(e),
		general.Encryptions(ePrime),
		general.Ints(c),
	), tau)
	uPrime := make([]*big.Int, n)
	for i := range uPrime {
		uPrime[i] = u[psi[i]]
	}

	// commitment chain: c_hat_i = g^r_hat_i * c_hat_{i-1}^u'_i, c_hat_{-1} = h
	rHat := make([]*big.Int, n)
	cHat := make([]*big.Int, n)
	prev := eg.H
	for i := 0; i < n; i++ {
		rHat[i] = randomZq(t, a)
		cHat[i] = a.mul(a.exp(eg.G, rHat[i]), a.exp(prev, uPrime[i]))
		prev = cHat[i]
	}
	chain := prependElement(eg.H, cHat)

	// v_i = prod_{k>i} u'_k
	v := make([]*big.Int, n)
	if n > 0 {
		v[n-1] = big.NewInt(1)
	}
	for i := n - 2; i >= 0; i-- {
		v[i] = new(big.Int).Mul(uPrime[i+1], v[i+1])
		v[i].Mod(v[i], q)
	}

	rBar, rHatSum, rTilde, rPrimeSum := new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	for i := 0; i < n; i++ {
		rBar.Add(rBar, r[i])
		rHatSum.Add(rHatSum, new(big.Int).Mul(rHat[i], v[i]))
		rTilde.Add(rTilde, new(big.Int).Mul(r[i], u[i]))
		rPrimeSum.Add(rPrimeSum, new(big.Int).Mul(rPrime[i], uPrime[i]))
	}

	w1, w2, w3, w4 := randomZq(t, a), randomZq(t, a), randomZq(t, a), randomZq(t, a)
	wHat := make([]*big.Int, n)
	wPrime := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		wHat[i] = randomZq(t, a)
		wPrime[i] = randomZq(t, a)
	}

	t1 := a.exp(eg.G, w1)
	t2 := a.exp(eg.G, w2)
	t3 := a.exp(eg.G, w3)
	t41 := a.exp(pk.PublicKey, neg(w4))
	t42 := a.exp(eg.G, neg(w4))
	tHat := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		t3 = a.mul(t3, a.exp(h[i], wPrime[i]))
		t41 = a.mul(t41, a.exp(ePrime[i].A, wPrime[i]))
		t42 = a.mul(t42, a.exp(ePrime[i].B, wPrime[i]))
		tHat[i] = a.mul(a.exp(eg.G, wHat[i]), a.exp(chain[i], wPrime[i]))
	}

	y := general.List(
		general.Encryptions(e),
		general.Encryptions(ePrime),
		general.Ints(c),
		general.Ints(cHat),
		general.Int(pk.PublicKey),
	)
	tHash := general.List(
		general.Int(t1),
		general.Int(t2),
		general.Int(t3),
		general.Ints([]*big.Int{t41, t42}),
		general.Ints(tHat),
	)
	ch := a.general.GetNIZKPChallenge(y, tHash, tau)

	response := func(w, x *big.Int) *big.Int {
		s := new(big.Int).Mul(ch, x)
		s.Add(s, w)
		return s.Mod(s, q)
	}

	sHat := make([]*big.Int, n)
	sPrime := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		sHat[i] = response(wHat[i], rHat[i])
		sPrime[i] = response(wPrime[i], uPrime[i])
	}

	return types.NewShuffleProof(
		types.NewShuffleProofT(t1, t2, t3, []*big.Int{t41, t42}, tHat),
		types.NewShuffleProofS(response(w1, rBar), response(w2, rHatSum), response(w3, rTilde),
			response(w4, rPrimeSum), sHat, sPrime),
		c, cHat,
	)
}

// proofParts is a mutable copy of a shuffle proof.
type proofParts struct {
	t1, t2, t3     *big.Int
	t4, tHat       []*big.Int
	s1, s2, s3, s4 *big.Int
	sHat, sPrime   []*big.Int
	c, cHat        []*big.Int
}

func explode(pi *types.ShuffleProof) proofParts {
	return proofParts{
		t1:     pi.T().T1(),
		t2:     pi.T().T2(),
		t3:     pi.T().T3(),
		t4:     pi.T().T4().Slice(),
		tHat:   pi.T().THat().Slice(),
		s1:     pi.S().S1(),
		s2:     pi.S().S2(),
		s3:     pi.S().S3(),
		s4:     pi.S().S4(),
		sHat:   pi.S().SHat().Slice(),
		sPrime: pi.S().SPrime().Slice(),
		c:      pi.C().Slice(),
		cHat:   pi.CHat().Slice(),
	}
}

func (pp proofParts) build() *types.ShuffleProof {
	return types.NewShuffleProof(
		types.NewShuffleProofT(pp.t1, pp.t2, pp.t3, pp.t4, pp.tHat),
		types.NewShuffleProofS(pp.s1, pp.s2, pp.s3, pp.s4, pp.sHat, pp.sPrime),
		pp.c, pp.cHat,
	)
}

// flipBit flips the lowest bit of x, or the second one if the result would
// leave Z_q.
func flipBit(x, q *big.Int) *big.Int {
	y := new(big.Int).SetBit(x, 0, x.Bit(0)^1)
	if y.Cmp(q) >= 0 {
		y.SetBit(x, 1, x.Bit(1)^1)
	}
	return y
}
