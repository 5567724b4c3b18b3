package types

import "math/big"

// EncryptionPublicKey is an ElGamal public key pk = g^sk mod p, or the
// product of several of them.
type EncryptionPublicKey struct {
	PublicKey *big.Int
	Group     *EncryptionGroup
}

// EncryptionPrivateKey is an ElGamal secret exponent in Z_q.
type EncryptionPrivateKey struct {
	PrivateKey *big.Int
	Group      *EncryptionGroup
}

// KeyPair is the key material of a single authority.
type KeyPair struct {
	PublicKey  EncryptionPublicKey  `json:"public_key"`
	PrivateKey EncryptionPrivateKey `json:"private_key"`
}

// Encryption is an ElGamal ciphertext (a, b) = (m*pk^r, g^r).
type Encryption struct {
	A *big.Int
	B *big.Int
}

// NewEncryption returns a ciphertext owning copies of a and b.
func NewEncryption(a, b *big.Int) Encryption {
	return Encryption{A: copyInt(a), B: copyInt(b)}
}

// Equal compares both components by their canonical representative.
func (e Encryption) Equal(other Encryption) bool {
	return intEqual(e.A, other.A) && intEqual(e.B, other.B)
}
