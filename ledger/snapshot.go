package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

var (
	// ErrSnapshotNotFound means the storage holds no snapshot yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotUnreadable means a snapshot may exist but could not be read.
	ErrSnapshotUnreadable = errors.New("snapshot unreadable")
	// ErrSnapshotMalformed means a snapshot was read but does not describe a
	// blockchain.
	ErrSnapshotMalformed = errors.New("snapshot malformed")
)

// Storage holds a single serialized snapshot. Load must return an error
// wrapping fs.ErrNotExist when nothing has been stored.
type Storage interface {
	Load() ([]byte, error)
	Store(data []byte) error
}

// snapshot is the serialized form shared by the HTTP API and the storage.
type snapshot struct {
	Chain      []Block `json:"chain"`
	Difficulty uint    `json:"difficulty"`
}

// The wire types use pointers so that a missing field is an error rather
// than a zero value.
type wireSnapshot struct {
	Chain      *[]wireBlock `json:"chain"`
	Difficulty *uint        `json:"difficulty"`
}

type wireBlock struct {
	Hash         *string        `json:"hash"`
	Transactions *[]Transaction `json:"transactions"`
	Timestamp    *int64         `json:"time_stamp"`
	PrevHash     *string        `json:"prev_hash"`
	Nonce        *uint64        `json:"nonce"`
}

// MarshalJSON encodes the chain as {"chain": [...], "difficulty": n}.
func (bc *Blockchain) MarshalJSON() ([]byte, error) {
	return json.Marshal(bc.snapshot())
}

// UnmarshalJSON replaces the chain with the decoded one. Malformed input
// yields an error wrapping ErrSnapshotMalformed and leaves bc unchanged.
func (bc *Blockchain) UnmarshalJSON(data []byte) error {
	blocks, difficulty, err := decodeSnapshot(data)
	if err != nil {
		return err
	}
	bc.blocks = blocks
	bc.difficulty = difficulty
	if bc.now == nil {
		bc.now = time.Now
	}
	return nil
}

// Persist writes an indented snapshot of the chain to s, replacing whatever
// it held before.
func (bc *Blockchain) Persist(s Storage) error {
	data, err := json.MarshalIndent(bc.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Store(data); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Restore rebuilds a blockchain from the snapshot held by s. The chain is
// not validated; call Validate or Verify on the result.
func Restore(s Storage, opts ...Option) (*Blockchain, error) {
	data, err := s.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrSnapshotNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSnapshotUnreadable, err)
	}
	bc, err := newEmpty(opts...)
	if err != nil {
		return nil, err
	}
	if err := bc.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *Blockchain) snapshot() snapshot {
	return snapshot{Chain: bc.blocks, Difficulty: bc.difficulty}
}

func decodeSnapshot(data []byte) ([]Block, uint, error) {
	var ws wireSnapshot
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSnapshotMalformed, err)
	}
	if ws.Chain == nil {
		return nil, 0, malformed("missing field chain")
	}
	if ws.Difficulty == nil {
		return nil, 0, malformed("missing field difficulty")
	}
	if *ws.Difficulty > MaxDifficulty {
		return nil, 0, malformed("difficulty %d exceeds maximum %d", *ws.Difficulty, MaxDifficulty)
	}
	if len(*ws.Chain) == 0 {
		return nil, 0, malformed("chain has no blocks")
	}

	blocks := make([]Block, 0, len(*ws.Chain))
	for i, wb := range *ws.Chain {
		b, err := wb.block()
		if err != nil {
			return nil, 0, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, *ws.Difficulty, nil
}

func (wb wireBlock) block() (Block, error) {
	switch {
	case wb.Hash == nil:
		return Block{}, malformed("missing field hash")
	case wb.Transactions == nil:
		return Block{}, malformed("missing field transactions")
	case wb.Timestamp == nil:
		return Block{}, malformed("missing field time_stamp")
	case wb.PrevHash == nil:
		return Block{}, malformed("missing field prev_hash")
	case wb.Nonce == nil:
		return Block{}, malformed("missing field nonce")
	}

	return Block{
		Hash:         *wb.Hash,
		Transactions: copyTransactions(*wb.Transactions),
		Timestamp:    *wb.Timestamp,
		PrevHash:     *wb.PrevHash,
		Nonce:        *wb.Nonce,
	}, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSnapshotMalformed}, args...)...)
}
