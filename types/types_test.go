package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func ints(xs ...int64) []*big.Int {
	out := make([]*big.Int, len(xs))
	for i, x := range xs {
		out[i] = big.NewInt(x)
	}
	return out
}

func Test_Vector_Copies(t *testing.T) {
	elems := ints(1, 2, 3)
	v := NewVector(elems)

	elems[0].SetInt64(42)
	require.Equal(t, int64(1), v.At(0).Int64())

	v.At(1).SetInt64(42)
	require.Equal(t, int64(2), v.At(1).Int64())

	s := v.Slice()
	s[2].SetInt64(42)
	require.Equal(t, int64(3), v.At(2).Int64())

	require.Equal(t, 3, v.Len())
	require.True(t, v.Equal(NewVector(ints(1, 2, 3))))
	require.False(t, v.Equal(NewVector(ints(1, 2))))
	require.False(t, v.Equal(NewVector(ints(1, 2, 4))))
}

func Test_Group_Equal(t *testing.T) {
	eg := NewEncryptionGroup(big.NewInt(23), big.NewInt(11), big.NewInt(4), big.NewInt(9))

	require.True(t, eg.Equal(NewEncryptionGroup(big.NewInt(23), big.NewInt(11), big.NewInt(4), big.NewInt(9))))
	require.False(t, eg.Equal(NewEncryptionGroup(big.NewInt(23), big.NewInt(11), big.NewInt(2), big.NewInt(9))))
	require.False(t, eg.Equal(nil))

	var none *EncryptionGroup
	require.True(t, none.Equal(nil))
}

func Test_CommitmentChain_Length(t *testing.T) {
	_, err := NewCommitmentChain(ints(1, 2), ints(3))
	require.Error(t, err)

	cc, err := NewCommitmentChain(ints(1, 2), ints(3, 4))
	require.NoError(t, err)

	buf, err := json.Marshal(cc)
	require.NoError(t, err)

	var decoded CommitmentChain
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.True(t, cc.C().Equal(decoded.C()))
	require.True(t, cc.R().Equal(decoded.R()))

	err = json.Unmarshal([]byte(`{"bold_c":["1","2"],"bold_r":["3"]}`), &decoded)
	require.Error(t, err)
}

func Test_ShuffleProof_JSON(t *testing.T) {
	pi := NewShuffleProof(
		NewShuffleProofT(big.NewInt(1), big.NewInt(2), big.NewInt(3), ints(4, 5), ints(6, 7, 8)),
		NewShuffleProofS(big.NewInt(9), big.NewInt(10), big.NewInt(11), big.NewInt(12), ints(13, 14, 15), ints(16, 17, 18)),
		ints(19, 20, 21),
		ints(22, 23, 24),
	)

	buf, err := json.Marshal(pi)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf, &fields))
	require.Contains(t, fields, "t")
	require.Contains(t, fields, "bold_c_hat")

	decoded := new(ShuffleProof)
	require.NoError(t, json.Unmarshal(buf, decoded))

	require.Equal(t, int64(3), decoded.T().T3().Int64())
	require.True(t, decoded.T().THat().Equal(NewVector(ints(6, 7, 8))))
	require.Equal(t, int64(12), decoded.S().S4().Int64())
	require.True(t, decoded.S().SPrime().Equal(NewVector(ints(16, 17, 18))))
	require.True(t, decoded.CHat().Equal(NewVector(ints(22, 23, 24))))
}

func Test_Encoding_InvalidInteger(t *testing.T) {
	var e Encryption
	err := json.Unmarshal([]byte(`{"a":"zz","b":"1"}`), &e)
	require.Error(t, err)

	_, err = DecodeInts([]string{"1", "xyz"})
	require.Error(t, err)
}

func Test_KeyPair_JSON(t *testing.T) {
	eg := NewEncryptionGroup(big.NewInt(23), big.NewInt(11), big.NewInt(4), big.NewInt(9))
	kp := KeyPair{
		PublicKey:  EncryptionPublicKey{PublicKey: big.NewInt(13), Group: eg},
		PrivateKey: EncryptionPrivateKey{PrivateKey: big.NewInt(7), Group: eg},
	}

	buf, err := json.Marshal(kp)
	require.NoError(t, err)

	var decoded KeyPair
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.Equal(t, int64(13), decoded.PublicKey.PublicKey.Int64())
	require.Equal(t, int64(7), decoded.PrivateKey.PrivateKey.Int64())
	require.True(t, eg.Equal(decoded.PrivateKey.Group))
}
