package authority

import (
	"math/big"

	"go.dedis.ch/mixnet/general"
	"go.dedis.ch/mixnet/types"
)

// Authority is one of the s election authorities. It establishes its key
// share, checks the shuffles of the other authorities and takes part in the
// threshold decryption of the final ciphertext list.
type Authority interface {
	KeyEstablishment
	ShuffleVerifier
	Decryption
}

// KeyEstablishment produces an authority's ElGamal key pair and combines the
// published key shares into the election public key.
type KeyEstablishment interface {
	GenerateKeyPair(eg *types.EncryptionGroup) (types.KeyPair, error)

	// GetPublicKey multiplies the shares. The result does not depend on their
	// order.
	GetPublicKey(shares ...types.EncryptionPublicKey) (types.EncryptionPublicKey, error)
}

// ShuffleVerifier checks the shuffle proofs of the mixing chain. A rejected
// proof is reported as false, errors are reserved for malformed input.
type ShuffleVerifier interface {
	// CheckShuffleProof checks that ePrime is a permuted re-encryption of e
	// under pk.
	CheckShuffleProof(pi *types.ShuffleProof, e, ePrime []types.Encryption,
		pk types.EncryptionPublicKey) (bool, error)

	// CheckShuffleProofs checks the transitions E_i -> E_{i+1} of the chain
	// [e0, lists[0], ..., lists[s-1]] for every i but the caller's own index j.
	CheckShuffleProofs(pis []*types.ShuffleProof, e0 []types.Encryption, lists [][]types.Encryption,
		pk types.EncryptionPublicKey, j int) (bool, error)
}

// Decryption computes and checks partial decryptions.
type Decryption interface {
	// GetPartialDecryptions returns b_i^sk for every ciphertext (a_i, b_i).
	GetPartialDecryptions(e []types.Encryption, sk types.EncryptionPrivateKey) ([]*big.Int, error)

	// GenDecryptionProof proves that bPrime are the partial decryptions of e
	// under the secret key of pk.
	GenDecryptionProof(sk types.EncryptionPrivateKey, pk types.EncryptionPublicKey,
		e []types.Encryption, bPrime []*big.Int) (*types.DecryptionProof, error)

	CheckDecryptionProof(pi *types.DecryptionProof, pk types.EncryptionPublicKey,
		e []types.Encryption, bPrime []*big.Int) (bool, error)

	// CheckDecryptionProofs checks the decryption proofs of every authority
	// but j.
	CheckDecryptionProofs(pis []*types.DecryptionProof, pks []types.EncryptionPublicKey,
		e []types.Encryption, bPrimes [][]*big.Int, j int) (bool, error)

	// GetDecryptions combines the partial decryptions of all authorities
	// into the plaintexts a_i / prod_j b'_{j,i}.
	GetDecryptions(e []types.Encryption, bPrimes [][]*big.Int) ([]*big.Int, error)
}

// GeneralAlgorithms is the algebraic toolbox the authorities are built on.
type GeneralAlgorithms interface {
	IsMember(x *big.Int) bool
	IsInZq(x *big.Int) bool
	GetGenerators(n int) []*big.Int
	GetNIZKPChallenge(y, t general.Hashable, tau int) *big.Int
	GetNIZKPChallenges(n int, y general.Hashable, tau int) []*big.Int
}

// RandomSource provides the secure randomness of key and proof generation.
type RandomSource interface {
	RandomInZq(q *big.Int) (*big.Int, error)
	Bytes(n int) ([]byte, error)
}
