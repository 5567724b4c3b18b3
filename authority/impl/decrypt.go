package impl

import (
	"math/big"
	"time"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mixnet/general"
	"go.dedis.ch/mixnet/metrics"
	"go.dedis.ch/mixnet/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// GetPartialDecryptions implements authority.Decryption.
func (a *DecryptionAuthority) GetPartialDecryptions(e []types.Encryption,
	sk types.EncryptionPrivateKey) ([]*big.Int, error) {

	err := a.checkGroup("sk_j", sk.Group)
	if err != nil {
		return nil, err
	}
	if !a.general.IsInZq(sk.PrivateKey) {
		return nil, invalidInput("sk_j must be in Z_q")
	}
	err = a.checkMembers("bold_e", flatten(e))
	if err != nil {
		return nil, err
	}

	return a.mapIndices(len(e), func(i int) *big.Int {
		return a.exp(e[i].B, sk.PrivateKey)
	}), nil
}

// GenDecryptionProof implements authority.Decryption. The proof shows that
// the same exponent sk links g to pk and every b_i to b'_i.
func (a *DecryptionAuthority) GenDecryptionProof(sk types.EncryptionPrivateKey, pk types.EncryptionPublicKey,
	e []types.Encryption, bPrime []*big.Int) (*types.DecryptionProof, error) {

	err := a.checkGroup("sk_j", sk.Group)
	if err != nil {
		return nil, err
	}
	if !a.general.IsInZq(sk.PrivateKey) {
		return nil, invalidInput("sk_j must be in Z_q")
	}
	err = a.checkDecryptionStatement(pk, e, bPrime)
	if err != nil {
		return nil, err
	}

	eg := a.params.Group

	omega, err := a.random.RandomInZq(eg.Q)
	if err != nil {
		return nil, xerrors.Errorf("failed to draw the proof randomness: %w", err)
	}

	bs := components(e)

	// t_0 = g^w, t_i = b_i^w
	t := prependElement(a.exp(eg.G, omega), a.mapIndices(len(e), func(i int) *big.Int {
		return a.exp(bs[i], omega)
	}))

	c := a.decryptionChallenge(pk, bs, bPrime, t)

	s := new(big.Int).Mul(c, sk.PrivateKey)
	s.Add(s, omega)
	s.Mod(s, eg.Q)

	log.Debug().Int("N", len(e)).Msg("generated decryption proof")

	return types.NewDecryptionProof(t, s), nil
}

// CheckDecryptionProof implements authority.Decryption.
func (a *DecryptionAuthority) CheckDecryptionProof(pi *types.DecryptionProof, pk types.EncryptionPublicKey,
	e []types.Encryption, bPrime []*big.Int) (bool, error) {

	start := time.Now()
	valid, err := a.checkDecryptionProof(pi, pk, e, bPrime)
	a.metrics.Observe(metrics.KindDecryption, start, valid, err)

	return valid, err
}

func (a *DecryptionAuthority) checkDecryptionProof(pi *types.DecryptionProof, pk types.EncryptionPublicKey,
	e []types.Encryption, bPrime []*big.Int) (bool, error) {

	if pi == nil {
		return false, invalidInput("the decryption proof is missing")
	}
	if pi.T().Len() != len(e)+1 {
		return false, sizeMismatch("the length of t should be that of bold_e plus one (%d != %d)",
			pi.T().Len(), len(e)+1)
	}

	err := a.checkDecryptionStatement(pk, e, bPrime)
	if err != nil {
		return false, err
	}

	t := pi.T().Slice()
	s := pi.S()

	err = a.checkMembers("t", t)
	if err != nil {
		return false, err
	}
	if !a.general.IsInZq(s) {
		return false, invalidInput("s must be in Z_q")
	}

	eg := a.params.Group
	bs := components(e)
	minusC := neg(a.decryptionChallenge(pk, bs, bPrime, t))

	// t_0' = g^s * pk^-c
	if !equal(t[0], a.mul(a.exp(eg.G, s), a.exp(pk.PublicKey, minusC))) {
		log.Error().Str("check", "t_0").Msg("decryption proof rejected")
		return false, nil
	}

	// t_i' = b_i^s * b'_i^-c
	valid := a.allIndices(len(e), func(i int) bool {
		return equal(t[i+1], a.mul(a.exp(bs[i], s), a.exp(bPrime[i], minusC)))
	})
	if !valid {
		log.Error().Str("check", "t_i").Msg("decryption proof rejected")
		return false, nil
	}

	return true, nil
}

// CheckDecryptionProofs implements authority.Decryption. bPrimes[i] holds
// the partial decryptions published by authority i.
func (a *DecryptionAuthority) CheckDecryptionProofs(pis []*types.DecryptionProof, pks []types.EncryptionPublicKey,
	e []types.Encryption, bPrimes [][]*big.Int, j int) (bool, error) {

	s := a.params.Authorities

	if len(pis) != s {
		return false, sizeMismatch("the length of bold_pi should be s (%d != %d)", len(pis), s)
	}
	if len(pks) != s {
		return false, sizeMismatch("the length of bold_pk should be s (%d != %d)", len(pks), s)
	}
	if len(bPrimes) != s {
		return false, sizeMismatch("the length of bold_B_prime should be s (%d != %d)", len(bPrimes), s)
	}
	err := a.checkAuthorityIndex(j)
	if err != nil {
		return false, err
	}

	results := make([]bool, s)

	var g errgroup.Group
	g.SetLimit(a.workers)

	for i := 0; i < s; i++ {
		if i == j {
			results[i] = true
			continue
		}

		i := i
		g.Go(func() error {
			valid, err := a.checkDecryption(pis[i], pks[i], e, bPrimes[i])
			if err != nil {
				return xerrors.Errorf("decryption of authority %d: %w", i, err)
			}
			if !valid {
				log.Error().Int("authority", i).Msg("invalid partial decryptions")
			}
			results[i] = valid
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return false, err
	}

	for _, valid := range results {
		if !valid {
			return false, nil
		}
	}

	return true, nil
}

// GetDecryptions implements authority.Decryption.
func (a *DecryptionAuthority) GetDecryptions(e []types.Encryption, bPrimes [][]*big.Int) ([]*big.Int, error) {
	s := a.params.Authorities

	if len(bPrimes) != s {
		return nil, sizeMismatch("the length of bold_B_prime should be s (%d != %d)", len(bPrimes), s)
	}
	err := a.checkMembers("bold_e", flatten(e))
	if err != nil {
		return nil, err
	}
	for j, bPrime := range bPrimes {
		if len(bPrime) != len(e) {
			return nil, sizeMismatch("bold_B_prime[%d] should have the length of bold_e (%d != %d)",
				j, len(bPrime), len(e))
		}
		err = a.checkMembers("bold_B_prime", bPrime)
		if err != nil {
			return nil, err
		}
	}

	eg := a.params.Group

	// m_i = a_i / prod_j b'_{j,i}
	return a.mapIndices(len(e), func(i int) *big.Int {
		shares := big.NewInt(1)
		for _, bPrime := range bPrimes {
			shares.Mul(shares, bPrime[i])
			shares.Mod(shares, eg.P)
		}
		return a.mul(e[i].A, a.inv(shares))
	}), nil
}

// checkDecryptionStatement validates the public part of a decryption proof.
func (a *DecryptionAuthority) checkDecryptionStatement(pk types.EncryptionPublicKey, e []types.Encryption,
	bPrime []*big.Int) error {

	if len(bPrime) != len(e) {
		return sizeMismatch("the length of bold_b_prime should be identical to that of bold_e (%d != %d)",
			len(bPrime), len(e))
	}

	err := a.checkGroup("pk_j", pk.Group)
	if err != nil {
		return err
	}
	if !a.general.IsMember(pk.PublicKey) {
		return invalidInput("pk_j must be in G_q")
	}

	err = a.checkMembers("bold_e", flatten(e))
	if err != nil {
		return err
	}

	return a.checkMembers("bold_b_prime", bPrime)
}

func (a *DecryptionAuthority) decryptionChallenge(pk types.EncryptionPublicKey, bs, bPrime, t []*big.Int) *big.Int {
	y := general.List(
		general.Int(pk.PublicKey),
		general.Ints(bs),
		general.Ints(bPrime),
	)

	return a.general.GetNIZKPChallenge(y, general.Ints(t), a.params.Security.Tau)
}

// checkMembers fails unless every element of elems is in G_q.
func (a *DecryptionAuthority) checkMembers(name string, elems []*big.Int) error {
	if !a.allIndices(len(elems), func(i int) bool { return a.general.IsMember(elems[i]) }) {
		return invalidInput("all elements of %s must be in G_q", name)
	}
	return nil
}

// components lists the b components of the ciphertexts.
func components(es []types.Encryption) []*big.Int {
	out := make([]*big.Int, len(es))
	for i, e := range es {
		out[i] = e.B
	}
	return out
}
