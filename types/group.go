package types

import "math/big"

// EncryptionGroup holds the parameters of the order-q subgroup G_q of Z_p*
// every value of the scheme lives in. p and q are primes with q | p-1, and g
// and h are two independent generators of G_q. A group is shared read-only
// between authorities; its integers must never be modified in place.
type EncryptionGroup struct {
	P *big.Int
	Q *big.Int
	G *big.Int
	H *big.Int
}

// NewEncryptionGroup returns a group owning copies of the given parameters.
func NewEncryptionGroup(p, q, g, h *big.Int) *EncryptionGroup {
	return &EncryptionGroup{
		P: copyInt(p),
		Q: copyInt(q),
		G: copyInt(g),
		H: copyInt(h),
	}
}

// Equal reports whether both groups have the same parameters.
func (eg *EncryptionGroup) Equal(other *EncryptionGroup) bool {
	if eg == nil || other == nil {
		return eg == other
	}
	if eg == other {
		return true
	}

	return intEqual(eg.P, other.P) && intEqual(eg.Q, other.Q) &&
		intEqual(eg.G, other.G) && intEqual(eg.H, other.H)
}

// SecurityParameters gathers the security knobs of the scheme. Tau is the
// bit length of the Fiat-Shamir challenges.
type SecurityParameters struct {
	Tau int
}

// PublicParameters is everything an authority needs to know about the
// election before any key is generated.
type PublicParameters struct {
	Group    *EncryptionGroup
	Security SecurityParameters
	// Authorities is the number s of mixing / decryption authorities.
	Authorities int
}

func copyInt(x *big.Int) *big.Int {
	if x == nil {
		return nil
	}
	return new(big.Int).Set(x)
}

func intEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
