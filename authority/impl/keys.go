package impl

import (
	"math/big"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mixnet/authority"
	"go.dedis.ch/mixnet/types"
	"golang.org/x/xerrors"
)

// KeyEstablishment implements authority.KeyEstablishment.
type KeyEstablishment struct {
	random authority.RandomSource
}

// NewKeyEstablishment returns a key establishment drawing its secrets from
// src.
func NewKeyEstablishment(src authority.RandomSource) *KeyEstablishment {
	return &KeyEstablishment{random: src}
}

// GenerateKeyPair implements authority.KeyEstablishment. The secret key is
// read from twice as many random bytes as q needs, then reduced mod q. The
// oversampling makes the bias of the reduction small but the key is not
// exactly uniform on [0, q).
func (k *KeyEstablishment) GenerateKeyPair(eg *types.EncryptionGroup) (types.KeyPair, error) {
	if eg == nil {
		return types.KeyPair{}, invalidInput("the encryption group is missing")
	}

	buf, err := k.random.Bytes(2 * ((eg.Q.BitLen() + 7) / 8))
	if err != nil {
		return types.KeyPair{}, xerrors.Errorf("failed to draw the secret key: %w", err)
	}

	sk := new(big.Int).SetBytes(buf)
	sk.Mod(sk, eg.Q)
	pk := new(big.Int).Exp(eg.G, sk, eg.P)

	log.Info().Int("qBits", eg.Q.BitLen()).Msg("generated key pair")

	return types.KeyPair{
		PublicKey:  types.EncryptionPublicKey{PublicKey: pk, Group: eg},
		PrivateKey: types.EncryptionPrivateKey{PrivateKey: sk, Group: eg},
	}, nil
}

// GetPublicKey implements authority.KeyEstablishment.
func (k *KeyEstablishment) GetPublicKey(shares ...types.EncryptionPublicKey) (types.EncryptionPublicKey, error) {
	if len(shares) == 0 {
		return types.EncryptionPublicKey{}, invalidInput("at least one public key share is required")
	}

	eg := shares[0].Group
	if eg == nil {
		return types.EncryptionPublicKey{}, invalidInput("public key share 0 has no encryption group")
	}

	pk := big.NewInt(1)
	for i, share := range shares {
		if !eg.Equal(share.Group) {
			return types.EncryptionPublicKey{}, invalidInput("public key share %d belongs to another encryption group", i)
		}
		if share.PublicKey == nil {
			return types.EncryptionPublicKey{}, invalidInput("public key share %d is missing", i)
		}
		pk.Mul(pk, share.PublicKey)
		pk.Mod(pk, eg.P)
	}

	return types.EncryptionPublicKey{PublicKey: pk, Group: eg}, nil
}
