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

// CheckShuffleProof implements authority.ShuffleVerifier. It follows the
// verification of Wikström's shuffle argument: the permutation commitment
// bold_c and the commitment chain bold_c_hat are opened through the
// challenges u derived from (e, ePrime, bold_c), and every commitment of T
// is recomputed from the responses S and the challenge c.
func (a *DecryptionAuthority) CheckShuffleProof(pi *types.ShuffleProof, e, ePrime []types.Encryption,
	pk types.EncryptionPublicKey) (bool, error) {

	start := time.Now()
	valid, err := a.checkShuffleProof(pi, e, ePrime, pk)
	a.metrics.Observe(metrics.KindShuffle, start, valid, err)

	return valid, err
}

func (a *DecryptionAuthority) checkShuffleProof(pi *types.ShuffleProof, e, ePrime []types.Encryption,
	pk types.EncryptionPublicKey) (bool, error) {

	if pi == nil {
		return false, invalidInput("the shuffle proof is missing")
	}

	err := checkShuffleSizes(pi, e, ePrime)
	if err != nil {
		return false, err
	}

	err = a.checkShuffleDomain(pi, e, ePrime, pk)
	if err != nil {
		return false, err
	}

	eg := a.params.Group
	tau := a.params.Security.Tau
	n := len(e)

	proofT, proofS := pi.T(), pi.S()
	c, cHat := pi.C().Slice(), pi.CHat().Slice()
	t4, tHat := proofT.T4().Slice(), proofT.THat().Slice()
	s4 := proofS.S4()
	sHat, sPrime := proofS.SHat().Slice(), proofS.SPrime().Slice()

	h := a.general.GetGenerators(n)
	u := a.general.GetNIZKPChallenges(n, general.List(
		general.Encryptions(e),
		general.Encryptions(ePrime),
		general.Ints(c),
	), tau)

	y := general.List(
		general.Encryptions(e),
		general.Encryptions(ePrime),
		general.Ints(c),
		general.Ints(cHat),
		general.Int(pk.PublicKey),
	)
	t := general.List(
		general.Int(proofT.T1()),
		general.Int(proofT.T2()),
		general.Int(proofT.T3()),
		general.Ints(t4),
		general.Ints(tHat),
	)
	challenge := a.general.GetNIZKPChallenge(y, t, tau)
	minusC := neg(challenge)

	// c_bar = prod c_i / prod h_i
	cBar := a.mul(
		a.productMod(n, eg.P, func(i int) *big.Int { return c[i] }),
		a.inv(a.productMod(n, eg.P, func(i int) *big.Int { return h[i] })),
	)

	// c_hat = c_hat_{N-1} / h^u, with u = prod u_i mod q. The chain starts at
	// h, which is also its last element when N = 0.
	uProd := a.productMod(n, eg.Q, func(i int) *big.Int { return u[i] })
	chain := prependElement(eg.H, cHat)
	cHatAgg := a.mul(chain[n], a.exp(eg.H, neg(uProd)))

	cTilde := a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(c[i], u[i]) })
	ePrime1 := a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(e[i].A, u[i]) })
	ePrime2 := a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(e[i].B, u[i]) })

	tPrime1 := a.mul(a.exp(cBar, minusC), a.exp(eg.G, proofS.S1()))
	tPrime2 := a.mul(a.exp(cHatAgg, minusC), a.exp(eg.G, proofS.S2()))
	tPrime3 := a.mul(
		a.exp(cTilde, minusC),
		a.exp(eg.G, proofS.S3()),
		a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(h[i], sPrime[i]) }),
	)
	tPrime41 := a.mul(
		a.exp(ePrime1, minusC),
		a.exp(pk.PublicKey, neg(s4)),
		a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(ePrime[i].A, sPrime[i]) }),
	)
	tPrime42 := a.mul(
		a.exp(ePrime2, minusC),
		a.exp(eg.G, neg(s4)),
		a.productMod(n, eg.P, func(i int) *big.Int { return a.exp(ePrime[i].B, sPrime[i]) }),
	)

	checks := []struct {
		name      string
		got, want *big.Int
	}{
		{"t_1", proofT.T1(), tPrime1},
		{"t_2", proofT.T2(), tPrime2},
		{"t_3", proofT.T3(), tPrime3},
		{"t_4,1", t4[0], tPrime41},
		{"t_4,2", t4[1], tPrime42},
	}
	for _, check := range checks {
		if !equal(check.got, check.want) {
			log.Error().Str("check", check.name).Int("N", n).Msg("shuffle proof rejected")
			return false, nil
		}
	}

	// t_hat_i = c_hat_i^-c * g^s_hat_i * c_hat_{i-1}^s_prime_i
	valid := a.allIndices(n, func(i int) bool {
		tHatPrime := a.mul(
			a.exp(chain[i+1], minusC),
			a.exp(eg.G, sHat[i]),
			a.exp(chain[i], sPrime[i]),
		)
		return equal(tHat[i], tHatPrime)
	})
	if !valid {
		log.Error().Str("check", "t_hat").Int("N", n).Msg("shuffle proof rejected")
		return false, nil
	}

	return true, nil
}

// checkShuffleSizes fails unless every sequence of the proof has the length
// N of e, and t_4 is a pair.
func checkShuffleSizes(pi *types.ShuffleProof, e, ePrime []types.Encryption) error {
	n := len(e)

	lengths := []struct {
		name string
		size int
	}{
		{"bold_e_prime", len(ePrime)},
		{"bold_c", pi.C().Len()},
		{"bold_c_hat", pi.CHat().Len()},
		{"t_hat", pi.T().THat().Len()},
		{"s_hat", pi.S().SHat().Len()},
		{"s_prime", pi.S().SPrime().Len()},
	}
	for _, l := range lengths {
		if l.size != n {
			return sizeMismatch("the length of %s should be identical to that of bold_e (%d != %d)",
				l.name, l.size, n)
		}
	}

	if pi.T().T4().Len() != 2 {
		return sizeMismatch("t_4 should contain two elements, got %d", pi.T().T4().Len())
	}

	return nil
}

// checkShuffleDomain fails unless every group element of the statement and
// the proof is in G_q and every response is in Z_q.
func (a *DecryptionAuthority) checkShuffleDomain(pi *types.ShuffleProof, e, ePrime []types.Encryption,
	pk types.EncryptionPublicKey) error {

	err := a.checkGroup("pk", pk.Group)
	if err != nil {
		return err
	}

	proofT, proofS := pi.T(), pi.S()

	members := []struct {
		name  string
		elems []*big.Int
	}{
		{"pk", []*big.Int{pk.PublicKey}},
		{"t_1", []*big.Int{proofT.T1()}},
		{"t_2", []*big.Int{proofT.T2()}},
		{"t_3", []*big.Int{proofT.T3()}},
		{"t_4", proofT.T4().Slice()},
		{"t_hat", proofT.THat().Slice()},
		{"bold_c", pi.C().Slice()},
		{"bold_c_hat", pi.CHat().Slice()},
		{"bold_e", flatten(e)},
		{"bold_e_prime", flatten(ePrime)},
	}
	for _, m := range members {
		err = a.checkMembers(m.name, m.elems)
		if err != nil {
			return err
		}
	}

	exponents := []struct {
		name  string
		elems []*big.Int
	}{
		{"s_1", []*big.Int{proofS.S1()}},
		{"s_2", []*big.Int{proofS.S2()}},
		{"s_3", []*big.Int{proofS.S3()}},
		{"s_4", []*big.Int{proofS.S4()}},
		{"s_hat", proofS.SHat().Slice()},
		{"s_prime", proofS.SPrime().Slice()},
	}
	for _, x := range exponents {
		if !a.allIndices(len(x.elems), func(i int) bool { return a.general.IsInZq(x.elems[i]) }) {
			return invalidInput("all elements of %s must be in Z_q", x.name)
		}
	}

	return nil
}

// CheckShuffleProofs implements authority.ShuffleVerifier. The transitions
// are checked concurrently and the result is true only if all of them are
// valid. The transition of authority j is skipped.
func (a *DecryptionAuthority) CheckShuffleProofs(pis []*types.ShuffleProof, e0 []types.Encryption,
	lists [][]types.Encryption, pk types.EncryptionPublicKey, j int) (bool, error) {

	s := a.params.Authorities

	if len(pis) != s {
		return false, sizeMismatch("the length of bold_pi should be s (%d != %d)", len(pis), s)
	}
	if len(lists) != s {
		return false, sizeMismatch("the length of bold_E should be s (%d != %d)", len(lists), s)
	}
	err := a.checkAuthorityIndex(j)
	if err != nil {
		return false, err
	}
	for i, list := range lists {
		if len(list) != len(e0) {
			return false, sizeMismatch("bold_E[%d] should have the length of bold_e (%d != %d)",
				i, len(list), len(e0))
		}
	}

	chain := prependEncryptions(e0, lists)
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
			valid, err := a.checkTransition(pis[i], chain[i], chain[i+1], pk)
			if err != nil {
				return xerrors.Errorf("shuffle of authority %d: %w", i, err)
			}
			if !valid {
				log.Error().Int("authority", i).Msg("invalid shuffle in the mixing chain")
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

	log.Info().Int("authorities", s).Int("skipped", j).Msg("mixing chain verified")

	return true, nil
}

// flatten lists the components a_0, b_0, a_1, b_1, ... of the ciphertexts.
func flatten(es []types.Encryption) []*big.Int {
	out := make([]*big.Int, 0, 2*len(es))
	for _, e := range es {
		out = append(out, e.A, e.B)
	}
	return out
}
