package ledger

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultDifficulty is the number of leading zero hex digits required
	// when no WithDifficulty option is given.
	DefaultDifficulty uint = 2
	// MaxDifficulty is the length of a hex SHA-256 digest. A higher
	// difficulty could never be satisfied.
	MaxDifficulty uint = 64
)

var (
	ErrInvalidGenesis   = errors.New("invalid genesis block")
	ErrHashMismatch     = errors.New("stored hash does not match block contents")
	ErrBrokenLink       = errors.New("previous hash does not match preceding block")
	ErrInsufficientWork = errors.New("hash does not meet difficulty")
)

// Blockchain is an append-only sequence of mined blocks anchored by a
// genesis block. It is not safe for concurrent use; callers serialize
// access themselves.
type Blockchain struct {
	blocks     []Block
	difficulty uint
	now        func() time.Time
}

// New creates a blockchain holding only the genesis block. The genesis
// block has previous hash "0", no transactions and is never mined.
func New(opts ...Option) (*Blockchain, error) {
	bc, err := newEmpty(opts...)
	if err != nil {
		return nil, err
	}
	bc.blocks = append(bc.blocks, NewBlock(nil, GenesisPrevHash, bc.now))
	return bc, nil
}

func newEmpty(opts ...Option) (*Blockchain, error) {
	bc := &Blockchain{
		blocks:     make([]Block, 0),
		difficulty: DefaultDifficulty,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(bc)
	}
	if bc.difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d exceeds maximum %d", bc.difficulty, MaxDifficulty)
	}
	return bc, nil
}

// Append mines a block holding transactions on top of the current tip and
// adds it to the chain. It blocks until a valid nonce is found and returns
// a copy of the appended block.
func (bc *Blockchain) Append(transactions []Transaction) Block {
	tip := bc.blocks[len(bc.blocks)-1]
	block := NewBlock(transactions, tip.Hash, bc.now)
	block.Mine(bc.difficulty)
	bc.blocks = append(bc.blocks, block)
	return block.clone()
}

// Validate reports whether every block is consistent with its contents and
// its predecessor.
func (bc *Blockchain) Validate() bool {
	return bc.Verify() == nil
}

// Verify checks the integrity of the whole chain and returns the first
// problem found. The genesis block is trusted as the anchor: only its shape
// is checked, not its hash.
func (bc *Blockchain) Verify() error {
	if len(bc.blocks) == 0 {
		return fmt.Errorf("empty blockchain: %w", ErrInvalidGenesis)
	}
	for i := range bc.blocks {
		if err := bc.VerifyBlock(i); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

// VerifyBlock checks block i alone: the genesis shape for block 0, and the
// hash, link and proof of work against block i-1 otherwise.
func (bc *Blockchain) VerifyBlock(i int) error {
	if i < 0 || i >= len(bc.blocks) {
		return fmt.Errorf("block %d out of range [0, %d)", i, len(bc.blocks))
	}
	if i == 0 {
		genesis := bc.blocks[0]
		if genesis.PrevHash != GenesisPrevHash || len(genesis.Transactions) != 0 {
			return ErrInvalidGenesis
		}
		return nil
	}
	return bc.validateBlock(bc.blocks[i], bc.blocks[i-1])
}

func (bc *Blockchain) validateBlock(current, previous Block) error {
	if !current.Verify() {
		return ErrHashMismatch
	}
	if current.PrevHash != previous.Hash {
		return ErrBrokenLink
	}
	if !MeetsDifficulty(current.Hash, bc.difficulty) {
		return fmt.Errorf("%w %d", ErrInsufficientWork, bc.difficulty)
	}
	return nil
}

// Blocks returns a copy of the chain, genesis first.
func (bc *Blockchain) Blocks() []Block {
	out := make([]Block, len(bc.blocks))
	for i, b := range bc.blocks {
		out[i] = b.clone()
	}
	return out
}

// Tip returns a copy of the most recently appended block.
func (bc *Blockchain) Tip() Block {
	return bc.blocks[len(bc.blocks)-1].clone()
}

func (bc *Blockchain) Len() int {
	return len(bc.blocks)
}

func (bc *Blockchain) Difficulty() uint {
	return bc.difficulty
}
