package impl

import (
	"math/big"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/mixnet/metrics"
	"go.dedis.ch/mixnet/types"
)

func Test_Decrypt_PartialDecryptions(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	kp := genKeyPair(t, a)
	sk := kp.PrivateKey

	e, _ := encryptRandom(t, a, kp.PublicKey, 4)

	bPrime, err := a.GetPartialDecryptions(e, sk)
	require.NoError(t, err)
	require.Len(t, bPrime, len(e))

	for i := range e {
		expected := new(big.Int).Exp(e[i].B, sk.PrivateKey, a.params.Group.P)
		require.Equal(t, 0, expected.Cmp(bPrime[i]))
	}

	reversed := make([]types.Encryption, len(e))
	for i := range e {
		reversed[len(e)-1-i] = e[i]
	}

	bPrimeReversed, err := a.GetPartialDecryptions(reversed, sk)
	require.NoError(t, err)
	for i := range e {
		require.Equal(t, 0, bPrime[i].Cmp(bPrimeReversed[len(e)-1-i]))
	}

	empty, err := a.GetPartialDecryptions(nil, sk)
	require.NoError(t, err)
	require.Len(t, empty, 0)
}

func Test_Decrypt_PartialDecryptions_InvalidInput(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 2)
	e[1] = types.Encryption{A: e[1].A, B: big.NewInt(0)}

	_, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.ErrorIs(t, err, ErrInvalidInput)

	e, _ = encryptRandom(t, a, kp.PublicKey, 2)
	badSk := types.EncryptionPrivateKey{PrivateKey: a.params.Group.Q, Group: a.params.Group}
	_, err = a.GetPartialDecryptions(e, badSk)
	require.ErrorIs(t, err, ErrInvalidInput)

	foreignSk := types.EncryptionPrivateKey{PrivateKey: big.NewInt(3), Group: toyGroup()}
	_, err = a.GetPartialDecryptions(e, foreignSk)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func Test_Decrypt_Proof_RoundTrip(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	kp := genKeyPair(t, a)

	for _, n := range []int{0, 1, 5} {
		e, _ := encryptRandom(t, a, kp.PublicKey, n)

		bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
		require.NoError(t, err)

		pi, err := a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime)
		require.NoError(t, err)
		require.Equal(t, n+1, pi.T().Len())

		valid, err := a.CheckDecryptionProof(pi, kp.PublicKey, e, bPrime)
		require.NoError(t, err)
		require.True(t, valid, "N=%d", n)
	}
}

func Test_Decrypt_Proof_WrongSecretKey(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 3)
	bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.NoError(t, err)

	otherSk := kp.PrivateKey
	otherSk.PrivateKey = new(big.Int).Add(kp.PrivateKey.PrivateKey, big.NewInt(1))
	otherSk.PrivateKey.Mod(otherSk.PrivateKey, a.params.Group.Q)

	pi, err := a.GenDecryptionProof(otherSk, kp.PublicKey, e, bPrime)
	require.NoError(t, err)

	valid, err := a.CheckDecryptionProof(pi, kp.PublicKey, e, bPrime)
	require.NoError(t, err)
	require.False(t, valid)
}

func Test_Decrypt_Proof_Tampered(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	eg := a.params.Group
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 3)
	bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.NoError(t, err)

	pi, err := a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime)
	require.NoError(t, err)

	// a wrong share
	forged := append([]*big.Int(nil), bPrime...)
	forged[2] = a.mul(forged[2], eg.G)
	valid, err := a.CheckDecryptionProof(pi, kp.PublicKey, e, forged)
	require.NoError(t, err)
	require.False(t, valid)

	// a wrong commitment
	tt := pi.T().Slice()
	tt[0] = a.mul(tt[0], eg.G)
	valid, err = a.CheckDecryptionProof(types.NewDecryptionProof(tt, pi.S()), kp.PublicKey, e, bPrime)
	require.NoError(t, err)
	require.False(t, valid)

	// a wrong response
	valid, err = a.CheckDecryptionProof(types.NewDecryptionProof(pi.T().Slice(), flipBit(pi.S(), eg.Q)),
		kp.PublicKey, e, bPrime)
	require.NoError(t, err)
	require.False(t, valid)
}

func Test_Decrypt_Proof_InvalidInput(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 1)
	eg := a.params.Group
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 3)
	bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.NoError(t, err)

	_, err = a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime[:2])
	require.ErrorIs(t, err, ErrSizeMismatch)

	badSk := types.EncryptionPrivateKey{PrivateKey: big.NewInt(-1), Group: eg}
	_, err = a.GenDecryptionProof(badSk, kp.PublicKey, e, bPrime)
	require.ErrorIs(t, err, ErrInvalidInput)

	badPk := types.EncryptionPublicKey{PublicKey: new(big.Int).Sub(eg.P, big.NewInt(1)), Group: eg}
	_, err = a.GenDecryptionProof(kp.PrivateKey, badPk, e, bPrime)
	require.ErrorIs(t, err, ErrInvalidInput)

	badShares := append([]*big.Int(nil), bPrime...)
	badShares[0] = eg.P
	_, err = a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, badShares)
	require.ErrorIs(t, err, ErrInvalidInput)

	pi, err := a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime)
	require.NoError(t, err)

	_, err = a.CheckDecryptionProof(pi, kp.PublicKey, e[:2], bPrime[:2])
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = a.CheckDecryptionProof(nil, kp.PublicKey, e, bPrime)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.CheckDecryptionProof(types.NewDecryptionProof(pi.T().Slice(), eg.Q), kp.PublicKey, e, bPrime)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.NotErrorIs(t, err, ErrSizeMismatch)
}

func Test_Decrypt_ThresholdRoundTrip(t *testing.T) {
	const s = 3

	a := newAuthority(oakleyGroup(), 128, s)

	kps := make([]types.KeyPair, s)
	pks := make([]types.EncryptionPublicKey, s)
	for j := range kps {
		kps[j] = genKeyPair(t, a)
		pks[j] = kps[j].PublicKey
	}

	pk, err := a.GetPublicKey(pks...)
	require.NoError(t, err)

	e, m := encryptRandom(t, a, pk, 4)

	bPrimes := make([][]*big.Int, s)
	pis := make([]*types.DecryptionProof, s)
	for j := range kps {
		bPrimes[j], err = a.GetPartialDecryptions(e, kps[j].PrivateKey)
		require.NoError(t, err)
		pis[j], err = a.GenDecryptionProof(kps[j].PrivateKey, pks[j], e, bPrimes[j])
		require.NoError(t, err)
	}

	for j := 0; j < s; j++ {
		valid, err := a.CheckDecryptionProofs(pis, pks, e, bPrimes, j)
		require.NoError(t, err)
		require.True(t, valid)
	}

	plaintexts, err := a.GetDecryptions(e, bPrimes)
	require.NoError(t, err)
	for i := range m {
		require.Equal(t, 0, m[i].Cmp(plaintexts[i]))
	}

	// authority 2 lies about its shares, which only authority 2 trusts
	bPrimes[2] = bPrimes[1]

	valid, err := a.CheckDecryptionProofs(pis, pks, e, bPrimes, 0)
	require.NoError(t, err)
	require.False(t, valid)

	valid, err = a.CheckDecryptionProofs(pis, pks, e, bPrimes, 2)
	require.NoError(t, err)
	require.True(t, valid)
}

func Test_Decrypt_CheckProofs_SkipsOwnIndex(t *testing.T) {
	a := newAuthority(toyGroup(), 48, 3)

	pis := make([]*types.DecryptionProof, 3)
	index := map[*types.DecryptionProof]int{}
	for i := range pis {
		pis[i] = types.NewDecryptionProof(nil, big.NewInt(0))
		index[pis[i]] = i
	}

	var mu sync.Mutex
	var called []int

	a.checkDecryption = func(pi *types.DecryptionProof, pk types.EncryptionPublicKey,
		e []types.Encryption, bPrime []*big.Int) (bool, error) {

		mu.Lock()
		defer mu.Unlock()

		called = append(called, index[pi])
		return true, nil
	}

	pks := make([]types.EncryptionPublicKey, 3)
	bPrimes := make([][]*big.Int, 3)

	valid, err := a.CheckDecryptionProofs(pis, pks, nil, bPrimes, 0)
	require.NoError(t, err)
	require.True(t, valid)

	sort.Ints(called)
	require.Equal(t, []int{1, 2}, called)

	_, err = a.CheckDecryptionProofs(pis, pks[:2], nil, bPrimes, 0)
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = a.CheckDecryptionProofs(pis, pks, nil, bPrimes, 3)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func Test_Decrypt_GetDecryptions_InvalidInput(t *testing.T) {
	a := newAuthority(oakleyGroup(), 128, 2)
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 2)
	bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.NoError(t, err)

	_, err = a.GetDecryptions(e, [][]*big.Int{bPrime})
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = a.GetDecryptions(e, [][]*big.Int{bPrime, bPrime[:1]})
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = a.GetDecryptions(e, [][]*big.Int{bPrime, {big.NewInt(0), bPrime[1]}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func Test_Decrypt_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewVerificationMetrics(reg)
	require.NoError(t, err)

	a := newAuthority(toyGroup(), 48, 1, WithMetrics(m))
	kp := genKeyPair(t, a)

	e, _ := encryptRandom(t, a, kp.PublicKey, 2)
	bPrime, err := a.GetPartialDecryptions(e, kp.PrivateKey)
	require.NoError(t, err)
	pi, err := a.GenDecryptionProof(kp.PrivateKey, kp.PublicKey, e, bPrime)
	require.NoError(t, err)

	valid, err := a.CheckDecryptionProof(pi, kp.PublicKey, e, bPrime)
	require.NoError(t, err)
	require.True(t, valid)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Checks.WithLabelValues(metrics.KindDecryption, metrics.OutcomeValid)))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Checks.WithLabelValues(metrics.KindShuffle, metrics.OutcomeValid)))
}
