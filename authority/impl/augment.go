package impl

import (
	"math/big"

	"go.dedis.ch/mixnet/types"
)

// prependEncryptions returns the mixing chain [e0, lists[0], ..., lists[s-1]].
// Transition i of the chain goes from element i to element i+1.
func prependEncryptions(e0 []types.Encryption, lists [][]types.Encryption) [][]types.Encryption {
	chain := make([][]types.Encryption, 0, len(lists)+1)
	chain = append(chain, e0)
	return append(chain, lists...)
}

// prependElement returns [x, v_0, ..., v_{n-1}]. With the commitment chain it
// gives c_hat_{i-1} at index i and c_hat_i at index i+1, x standing for
// c_hat_{-1}.
func prependElement(x *big.Int, v []*big.Int) []*big.Int {
	out := make([]*big.Int, 0, len(v)+1)
	out = append(out, x)
	return append(out, v...)
}
