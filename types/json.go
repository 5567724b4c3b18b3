package types

import (
	"encoding/json"
	"math/big"

	"golang.org/x/xerrors"
)

// Integers are encoded as lowercase hexadecimal strings.

func encodeInt(x *big.Int) string {
	if x == nil {
		return ""
	}
	return x.Text(16)
}

func decodeInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, xerrors.Errorf("invalid hexadecimal integer %q", s)
	}
	return x, nil
}

func encodeInts(xs []*big.Int) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = encodeInt(x)
	}
	return out
}

func decodeInts(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		x, err := decodeInt(s)
		if err != nil {
			return nil, xerrors.Errorf("element %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// intField ties an encoded integer to the field it decodes into.
type intField struct {
	src string
	dst **big.Int
}

func decodeFields(fields ...intField) error {
	for _, f := range fields {
		x, err := decodeInt(f.src)
		if err != nil {
			return err
		}
		*f.dst = x
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeInts(v.elems))
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var ss []string
	err := json.Unmarshal(data, &ss)
	if err != nil {
		return err
	}
	elems, err := decodeInts(ss)
	if err != nil {
		return err
	}
	v.elems = elems
	return nil
}

type groupJSON struct {
	P string `json:"p"`
	Q string `json:"q"`
	G string `json:"g"`
	H string `json:"h"`
}

// MarshalJSON implements json.Marshaler.
func (eg EncryptionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		P: encodeInt(eg.P),
		Q: encodeInt(eg.Q),
		G: encodeInt(eg.G),
		H: encodeInt(eg.H),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (eg *EncryptionGroup) UnmarshalJSON(data []byte) error {
	var w groupJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	return decodeFields(
		intField{w.P, &eg.P},
		intField{w.Q, &eg.Q},
		intField{w.G, &eg.G},
		intField{w.H, &eg.H},
	)
}

type publicKeyJSON struct {
	PublicKey string           `json:"pk"`
	Group     *EncryptionGroup `json:"group"`
}

// MarshalJSON implements json.Marshaler.
func (pk EncryptionPublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyJSON{PublicKey: encodeInt(pk.PublicKey), Group: pk.Group})
}

// UnmarshalJSON implements json.Unmarshaler.
func (pk *EncryptionPublicKey) UnmarshalJSON(data []byte) error {
	var w publicKeyJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	pk.Group = w.Group
	return decodeFields(intField{w.PublicKey, &pk.PublicKey})
}

type privateKeyJSON struct {
	PrivateKey string           `json:"sk"`
	Group      *EncryptionGroup `json:"group"`
}

// MarshalJSON implements json.Marshaler.
func (sk EncryptionPrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(privateKeyJSON{PrivateKey: encodeInt(sk.PrivateKey), Group: sk.Group})
}

// UnmarshalJSON implements json.Unmarshaler.
func (sk *EncryptionPrivateKey) UnmarshalJSON(data []byte) error {
	var w privateKeyJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	sk.Group = w.Group
	return decodeFields(intField{w.PrivateKey, &sk.PrivateKey})
}

type encryptionJSON struct {
	A string `json:"a"`
	B string `json:"b"`
}

// MarshalJSON implements json.Marshaler.
func (e Encryption) MarshalJSON() ([]byte, error) {
	return json.Marshal(encryptionJSON{A: encodeInt(e.A), B: encodeInt(e.B)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Encryption) UnmarshalJSON(data []byte) error {
	var w encryptionJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	return decodeFields(intField{w.A, &e.A}, intField{w.B, &e.B})
}

type shuffleProofJSON struct {
	T struct {
		T1   string `json:"t_1"`
		T2   string `json:"t_2"`
		T3   string `json:"t_3"`
		T4   Vector `json:"t_4"`
		THat Vector `json:"t_hat"`
	} `json:"t"`
	S struct {
		S1     string `json:"s_1"`
		S2     string `json:"s_2"`
		S3     string `json:"s_3"`
		S4     string `json:"s_4"`
		SHat   Vector `json:"s_hat"`
		SPrime Vector `json:"s_prime"`
	} `json:"s"`
	C    Vector `json:"bold_c"`
	CHat Vector `json:"bold_c_hat"`
}

// MarshalJSON implements json.Marshaler.
func (p *ShuffleProof) MarshalJSON() ([]byte, error) {
	var w shuffleProofJSON
	w.T.T1, w.T.T2, w.T.T3 = encodeInt(p.t.t1), encodeInt(p.t.t2), encodeInt(p.t.t3)
	w.T.T4, w.T.THat = p.t.t4, p.t.tHat
	w.S.S1, w.S.S2 = encodeInt(p.s.s1), encodeInt(p.s.s2)
	w.S.S3, w.S.S4 = encodeInt(p.s.s3), encodeInt(p.s.s4)
	w.S.SHat, w.S.SPrime = p.s.sHat, p.s.sPrime
	w.C, w.CHat = p.c, p.cHat

	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ShuffleProof) UnmarshalJSON(data []byte) error {
	var w shuffleProofJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}

	err = decodeFields(
		intField{w.T.T1, &p.t.t1},
		intField{w.T.T2, &p.t.t2},
		intField{w.T.T3, &p.t.t3},
		intField{w.S.S1, &p.s.s1},
		intField{w.S.S2, &p.s.s2},
		intField{w.S.S3, &p.s.s3},
		intField{w.S.S4, &p.s.s4},
	)
	if err != nil {
		return err
	}
	p.t.t4, p.t.tHat = w.T.T4, w.T.THat
	p.s.sHat, p.s.sPrime = w.S.SHat, w.S.SPrime
	p.c, p.cHat = w.C, w.CHat

	return nil
}

type decryptionProofJSON struct {
	T Vector `json:"t"`
	S string `json:"s"`
}

// MarshalJSON implements json.Marshaler.
func (p *DecryptionProof) MarshalJSON() ([]byte, error) {
	return json.Marshal(decryptionProofJSON{T: p.t, S: encodeInt(p.s)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *DecryptionProof) UnmarshalJSON(data []byte) error {
	var w decryptionProofJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	p.t = w.T
	return decodeFields(intField{w.S, &p.s})
}

type commitmentChainJSON struct {
	C Vector `json:"bold_c"`
	R Vector `json:"bold_r"`
}

// MarshalJSON implements json.Marshaler.
func (cc *CommitmentChain) MarshalJSON() ([]byte, error) {
	return json.Marshal(commitmentChainJSON{C: cc.c, R: cc.r})
}

// UnmarshalJSON implements json.Unmarshaler.
func (cc *CommitmentChain) UnmarshalJSON(data []byte) error {
	var w commitmentChainJSON
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}
	if w.C.Len() != w.R.Len() {
		return xerrors.Errorf("commitment chain: %d commitments for %d openings", w.C.Len(), w.R.Len())
	}
	cc.c, cc.r = w.C, w.R
	return nil
}

// EncodeInt exposes the integer encoding used in JSON documents.
func EncodeInt(x *big.Int) string {
	return encodeInt(x)
}

// DecodeInt parses an integer produced by EncodeInt.
func DecodeInt(s string) (*big.Int, error) {
	return decodeInt(s)
}

// EncodeInts encodes a list of integers with EncodeInt.
func EncodeInts(xs []*big.Int) []string {
	return encodeInts(xs)
}

// DecodeInts parses a list produced by EncodeInts.
func DecodeInts(ss []string) ([]*big.Int, error) {
	return decodeInts(ss)
}
