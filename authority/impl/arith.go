package impl

import "math/big"

// exp returns x^e mod p for x in G_q. The exponent is first reduced into
// [0, q), which makes negative exponents well defined.
func (a *DecryptionAuthority) exp(x, e *big.Int) *big.Int {
	eg := a.params.Group
	r := new(big.Int).Mod(e, eg.Q)
	return r.Exp(x, r, eg.P)
}

// mul returns the product of the factors mod p.
func (a *DecryptionAuthority) mul(factors ...*big.Int) *big.Int {
	eg := a.params.Group
	r := big.NewInt(1)
	for _, f := range factors {
		r.Mul(r, f)
		r.Mod(r, eg.P)
	}
	return r
}

// inv returns x^-1 mod p.
func (a *DecryptionAuthority) inv(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, a.params.Group.P)
}

func neg(x *big.Int) *big.Int {
	return new(big.Int).Neg(x)
}

func equal(a, b *big.Int) bool {
	return a != nil && b != nil && a.Cmp(b) == 0
}
