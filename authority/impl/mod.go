package impl

import (
	"math/big"
	"runtime"

	"go.dedis.ch/mixnet/authority"
	"go.dedis.ch/mixnet/metrics"
	"go.dedis.ch/mixnet/types"
)

var _ authority.Authority = (*DecryptionAuthority)(nil)

// transitionChecker checks one transition of the mixing chain.
type transitionChecker func(pi *types.ShuffleProof, e, ePrime []types.Encryption,
	pk types.EncryptionPublicKey) (bool, error)

// decryptionChecker checks the decryption proof of one authority.
type decryptionChecker func(pi *types.DecryptionProof, pk types.EncryptionPublicKey,
	e []types.Encryption, bPrime []*big.Int) (bool, error)

// DecryptionAuthority implements authority.Authority over a safe-prime
// group. It keeps no state between calls and is safe for concurrent use.
type DecryptionAuthority struct {
	*KeyEstablishment

	params  *types.PublicParameters
	general authority.GeneralAlgorithms
	random  authority.RandomSource
	workers int
	metrics *metrics.VerificationMetrics

	checkTransition transitionChecker
	checkDecryption decryptionChecker
}

// Option configures a DecryptionAuthority.
type Option func(*DecryptionAuthority)

// WithWorkers bounds the number of goroutines a single call may use. Values
// below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *DecryptionAuthority) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		a.workers = n
	}
}

// WithMetrics records every proof check in m.
func WithMetrics(m *metrics.VerificationMetrics) Option {
	return func(a *DecryptionAuthority) {
		a.metrics = m
	}
}

// NewDecryptionAuthority returns an authority for the given election
// parameters.
func NewDecryptionAuthority(params *types.PublicParameters, general authority.GeneralAlgorithms,
	src authority.RandomSource, opts ...Option) *DecryptionAuthority {

	a := &DecryptionAuthority{
		KeyEstablishment: NewKeyEstablishment(src),
		params:           params,
		general:          general,
		random:           src,
		workers:          runtime.GOMAXPROCS(0),
	}
	a.checkTransition = a.CheckShuffleProof
	a.checkDecryption = a.CheckDecryptionProof

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// checkGroup fails unless key material belongs to the authority's group.
func (a *DecryptionAuthority) checkGroup(name string, eg *types.EncryptionGroup) error {
	if !a.params.Group.Equal(eg) {
		return invalidInput("%s belongs to another encryption group", name)
	}
	return nil
}

// checkAuthorityIndex fails unless 0 <= j < s.
func (a *DecryptionAuthority) checkAuthorityIndex(j int) error {
	if j < 0 || j >= a.params.Authorities {
		return invalidInput("authority index %d is out of range [0, %d)", j, a.params.Authorities)
	}
	return nil
}
