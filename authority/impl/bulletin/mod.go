package bulletin

import (
	"encoding/json"
	"math/big"
	"os"
	"sync"

	"github.com/rs/xid"
	"go.dedis.ch/mixnet/types"
	"golang.org/x/xerrors"
)

// Board describes the public bulletin board of an election: every authority
// publishes its key share, its shuffle and its partial decryptions there.
type Board interface {
	// ID identifies the election the board belongs to.
	ID() string

	Authorities() int

	PublishKey(j int, pk types.EncryptionPublicKey) error

	// Keys returns the key shares in authority order. It fails unless every
	// authority has published one.
	Keys() ([]types.EncryptionPublicKey, error)

	SetBallots(e []types.Encryption)

	Ballots() []types.Encryption

	PublishShuffle(j int, list []types.Encryption, pi *types.ShuffleProof) error

	// ShuffleChain returns the proofs and the lists of the mixing chain in
	// authority order.
	ShuffleChain() ([]*types.ShuffleProof, [][]types.Encryption, error)

	// FinalList returns the output of the last authority of the chain.
	FinalList() ([]types.Encryption, error)

	PublishPartials(j int, bPrime []*big.Int, pi *types.DecryptionProof) error

	// Partials returns the partial decryptions and their proofs in authority
	// order.
	Partials() ([][]*big.Int, []*types.DecryptionProof, error)

	// Save writes the board to a JSON file.
	Save(path string) error
}

type shuffleEntry struct {
	List  []types.Encryption  `json:"list"`
	Proof *types.ShuffleProof `json:"proof"`
}

type partialEntry struct {
	Shares []string               `json:"shares"`
	Proof  *types.DecryptionProof `json:"proof"`
}

// snapshot is the content of a board, as saved on disk.
type snapshot struct {
	ID          string                            `json:"id"`
	Authorities int                               `json:"authorities"`
	Keys        map[int]types.EncryptionPublicKey `json:"keys"`
	Ballots     []types.Encryption                `json:"ballots"`
	Shuffles    map[int]shuffleEntry              `json:"shuffles"`
	Partials    map[int]partialEntry              `json:"partials"`
}

// New returns an empty in-memory board for s authorities.
func New(authorities int) Board {
	return &board{
		data: snapshot{
			ID:          xid.New().String(),
			Authorities: authorities,
			Keys:        make(map[int]types.EncryptionPublicKey),
			Shuffles:    make(map[int]shuffleEntry),
			Partials:    make(map[int]partialEntry),
		},
	}
}

// Load reads a board saved with Save.
func Load(path string) (Board, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read board: %v", err)
	}

	var data snapshot
	err = json.Unmarshal(buf, &data)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode board: %v", err)
	}

	if data.Keys == nil {
		data.Keys = make(map[int]types.EncryptionPublicKey)
	}
	if data.Shuffles == nil {
		data.Shuffles = make(map[int]shuffleEntry)
	}
	if data.Partials == nil {
		data.Partials = make(map[int]partialEntry)
	}

	return &board{data: data}, nil
}

// board implements an in-memory Board.
type board struct {
	sync.Mutex
	data snapshot
}

// ID implements Board
func (b *board) ID() string {
	return b.data.ID
}

// Authorities implements Board
func (b *board) Authorities() int {
	return b.data.Authorities
}

func (b *board) checkIndex(j int) error {
	if j < 0 || j >= b.data.Authorities {
		return xerrors.Errorf("authority index %d is out of range [0, %d)", j, b.data.Authorities)
	}
	return nil
}

// PublishKey implements Board
func (b *board) PublishKey(j int, pk types.EncryptionPublicKey) error {
	b.Lock()
	defer b.Unlock()

	err := b.checkIndex(j)
	if err != nil {
		return err
	}

	b.data.Keys[j] = pk
	return nil
}

// Keys implements Board
func (b *board) Keys() ([]types.EncryptionPublicKey, error) {
	b.Lock()
	defer b.Unlock()

	keys := make([]types.EncryptionPublicKey, b.data.Authorities)
	for j := range keys {
		pk, ok := b.data.Keys[j]
		if !ok {
			return nil, xerrors.Errorf("authority %d has not published its key", j)
		}
		keys[j] = pk
	}

	return keys, nil
}

// SetBallots implements Board
func (b *board) SetBallots(e []types.Encryption) {
	b.Lock()
	defer b.Unlock()

	b.data.Ballots = append([]types.Encryption(nil), e...)
}

// Ballots implements Board
func (b *board) Ballots() []types.Encryption {
	b.Lock()
	defer b.Unlock()

	return append([]types.Encryption(nil), b.data.Ballots...)
}

// PublishShuffle implements Board
func (b *board) PublishShuffle(j int, list []types.Encryption, pi *types.ShuffleProof) error {
	b.Lock()
	defer b.Unlock()

	err := b.checkIndex(j)
	if err != nil {
		return err
	}

	b.data.Shuffles[j] = shuffleEntry{
		List:  append([]types.Encryption(nil), list...),
		Proof: pi,
	}
	return nil
}

// ShuffleChain implements Board
func (b *board) ShuffleChain() ([]*types.ShuffleProof, [][]types.Encryption, error) {
	b.Lock()
	defer b.Unlock()

	pis := make([]*types.ShuffleProof, b.data.Authorities)
	lists := make([][]types.Encryption, b.data.Authorities)
	for j := range pis {
		entry, ok := b.data.Shuffles[j]
		if !ok {
			return nil, nil, xerrors.Errorf("authority %d has not published its shuffle", j)
		}
		pis[j] = entry.Proof
		lists[j] = append([]types.Encryption(nil), entry.List...)
	}

	return pis, lists, nil
}

// FinalList implements Board
func (b *board) FinalList() ([]types.Encryption, error) {
	b.Lock()
	defer b.Unlock()

	last := b.data.Authorities - 1
	entry, ok := b.data.Shuffles[last]
	if !ok {
		return nil, xerrors.Errorf("authority %d has not published its shuffle", last)
	}

	return append([]types.Encryption(nil), entry.List...), nil
}

// PublishPartials implements Board
func (b *board) PublishPartials(j int, bPrime []*big.Int, pi *types.DecryptionProof) error {
	b.Lock()
	defer b.Unlock()

	err := b.checkIndex(j)
	if err != nil {
		return err
	}

	b.data.Partials[j] = partialEntry{
		Shares: types.EncodeInts(bPrime),
		Proof:  pi,
	}
	return nil
}

// Partials implements Board
func (b *board) Partials() ([][]*big.Int, []*types.DecryptionProof, error) {
	b.Lock()
	defer b.Unlock()

	bPrimes := make([][]*big.Int, b.data.Authorities)
	pis := make([]*types.DecryptionProof, b.data.Authorities)
	for j := range pis {
		entry, ok := b.data.Partials[j]
		if !ok {
			return nil, nil, xerrors.Errorf("authority %d has not published its partial decryptions", j)
		}

		shares, err := types.DecodeInts(entry.Shares)
		if err != nil {
			return nil, nil, xerrors.Errorf("partial decryptions of authority %d: %v", j, err)
		}
		bPrimes[j] = shares
		pis[j] = entry.Proof
	}

	return bPrimes, pis, nil
}

// Save implements Board
func (b *board) Save(path string) error {
	b.Lock()
	defer b.Unlock()

	buf, err := json.MarshalIndent(b.data, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to encode board: %v", err)
	}

	err = os.WriteFile(path, buf, 0o644)
	if err != nil {
		return xerrors.Errorf("failed to write board: %v", err)
	}

	return nil
}
