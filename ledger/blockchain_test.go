package ledger

import (
	"errors"
	"testing"
	"time"
)

// newTestChain creates a chain at difficulty 1 so tests mine quickly.
func newTestChain(t *testing.T, opts ...Option) *Blockchain {
	t.Helper()
	bc, err := New(append([]Option{WithDifficulty(1)}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}
	return bc
}

// TestNewBlockchainGenesis verifies that a fresh chain holds only a genesis
// block with the sentinel previous hash and no transactions.
func TestNewBlockchainGenesis(t *testing.T) {
	bc, err := New()
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}
	if bc.Len() != 1 {
		t.Fatalf("expected 1 block (genesis), got %d", bc.Len())
	}
	if bc.Difficulty() != DefaultDifficulty {
		t.Fatalf("expected default difficulty %d, got %d", DefaultDifficulty, bc.Difficulty())
	}

	genesis := bc.Blocks()[0]
	if genesis.PrevHash != "0" {
		t.Fatalf("genesis PrevHash should be '0', got %s", genesis.PrevHash)
	}
	if len(genesis.Transactions) != 0 {
		t.Fatalf("genesis should have no transactions, got %d", len(genesis.Transactions))
	}
	if genesis.Transactions == nil {
		t.Fatal("genesis transactions should be an empty list, not nil")
	}
	if genesis.Nonce != 0 {
		t.Fatalf("genesis should never be mined, nonce is %d", genesis.Nonce)
	}
	if !genesis.Verify() {
		t.Fatal("genesis hash should match its contents")
	}
	if !bc.Validate() {
		t.Fatal("a fresh chain should be valid")
	}
}

func TestNewBlockchainRejectsImpossibleDifficulty(t *testing.T) {
	if _, err := New(WithDifficulty(MaxDifficulty + 1)); err == nil {
		t.Fatal("expected an error for a difficulty no hash can meet")
	}
	if _, err := New(WithDifficulty(0)); err != nil {
		t.Fatalf("difficulty 0 should be accepted: %v", err)
	}
}

// TestAppendScenario follows the concrete scenario: a fresh chain at
// difficulty 2 receiving one transaction from A to B.
func TestAppendScenario(t *testing.T) {
	bc, err := New(WithDifficulty(2))
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}

	appended := bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: 10}})

	blocks := bc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks after append, got %d", len(blocks))
	}
	if blocks[1].PrevHash != blocks[0].Hash {
		t.Fatal("new block's PrevHash should match previous block's hash")
	}
	if blocks[1].Hash[:2] != "00" {
		t.Fatalf("expected hash to start with 00, got %s", blocks[1].Hash)
	}
	if appended.Hash != blocks[1].Hash {
		t.Fatal("Append should return the appended block")
	}
	if len(blocks[1].Transactions) != 1 || blocks[1].Transactions[0] != (Transaction{Sender: "A", Receiver: "B", Amount: 10}) {
		t.Fatalf("unexpected transactions %+v", blocks[1].Transactions)
	}
	if !bc.Validate() {
		t.Fatalf("chain should be valid: %v", bc.Verify())
	}
}

func TestAppendManyStaysValid(t *testing.T) {
	bc := newTestChain(t)
	for i := 0; i < 10; i++ {
		bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: uint64(i)}})
		if err := bc.Verify(); err != nil {
			t.Fatalf("chain invalid after %d appends: %v", i+1, err)
		}
	}
	if bc.Len() != 11 {
		t.Fatalf("expected 11 blocks, got %d", bc.Len())
	}
	if bc.Tip().Transactions[0].Amount != 9 {
		t.Fatalf("tip should hold the last transaction, got %+v", bc.Tip())
	}
}

func TestAppendEmptyTransactionList(t *testing.T) {
	bc := newTestChain(t)
	b := bc.Append(nil)
	if b.Transactions == nil || len(b.Transactions) != 0 {
		t.Fatalf("expected an empty transaction list, got %#v", b.Transactions)
	}
	if !bc.Validate() {
		t.Fatal("chain with an empty block should be valid")
	}
}

// TestIdenticalTransactionsHashDifferently shows the hash is not a function
// of transaction content alone.
func TestIdenticalTransactionsHashDifferently(t *testing.T) {
	bc := newTestChain(t, WithClock(fixedClock(1700000000)))
	tx := []Transaction{{Sender: "A", Receiver: "B", Amount: 10}}
	first := bc.Append(tx)
	second := bc.Append(tx)
	if first.Hash == second.Hash {
		t.Fatal("identical transactions in two blocks should produce different hashes")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	bc := newTestChain(t)
	bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: 10}})

	blocks := bc.Blocks()
	blocks[1].Transactions[0].Amount = 1000
	blocks[1].Hash = "forged"

	tip := bc.Tip()
	tip.Transactions[0].Amount = 2000

	if !bc.Validate() {
		t.Fatal("mutating returned blocks must not affect the chain")
	}
}

// TestVerifyDetectsTampering mutates fields of a non-genesis block after it
// was appended and expects validation to fail.
func TestVerifyDetectsTampering(t *testing.T) {
	tests := []struct {
		name    string
		tamper  func(bc *Blockchain)
		wantErr error
	}{
		{
			name:    "forged hash",
			tamper:  func(bc *Blockchain) { bc.blocks[1].Hash = "00" + bc.blocks[1].Hash[2:63] + "x" },
			wantErr: ErrHashMismatch,
		},
		{
			name:    "changed amount",
			tamper:  func(bc *Blockchain) { bc.blocks[1].Transactions[0].Amount++ },
			wantErr: ErrHashMismatch,
		},
		{
			name:    "changed receiver",
			tamper:  func(bc *Blockchain) { bc.blocks[2].Transactions[0].Receiver = "mallory" },
			wantErr: ErrHashMismatch,
		},
		{
			name: "relinked previous hash",
			tamper: func(bc *Blockchain) {
				b := &bc.blocks[2]
				b.PrevHash = bc.blocks[0].Hash
				b.Hash = b.calculateHash()
				b.Mine(bc.difficulty)
			},
			wantErr: ErrBrokenLink,
		},
		{
			name: "rehashed without work",
			tamper: func(bc *Blockchain) {
				b := &bc.blocks[1]
				for b.Nonce = 0; ; b.Nonce++ {
					b.Hash = b.calculateHash()
					if !MeetsDifficulty(b.Hash, bc.difficulty) {
						break
					}
				}
				bc.blocks[2].PrevHash = b.Hash
				bc.blocks[2].Hash = bc.blocks[2].calculateHash()
				bc.blocks[2].Mine(bc.difficulty)
			},
			wantErr: ErrInsufficientWork,
		},
		{
			name:    "genesis with transactions",
			tamper:  func(bc *Blockchain) { bc.blocks[0].Transactions = []Transaction{{Sender: "A"}} },
			wantErr: ErrInvalidGenesis,
		},
		{
			name:    "genesis with previous hash",
			tamper:  func(bc *Blockchain) { bc.blocks[0].PrevHash = "1" },
			wantErr: ErrInvalidGenesis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := newTestChain(t)
			bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: 10}})
			bc.Append([]Transaction{{Sender: "B", Receiver: "C", Amount: 5}})
			if !bc.Validate() {
				t.Fatal("chain should be valid before tampering")
			}

			tt.tamper(bc)

			if bc.Validate() {
				t.Fatal("expected tampered chain to be invalid")
			}
			if err := bc.Verify(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerifyDoesNotMutate(t *testing.T) {
	bc := newTestChain(t)
	bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: 10}})
	bc.blocks[1].Hash = "forged"

	bc.Verify()

	if bc.blocks[1].Hash != "forged" {
		t.Fatal("Verify must not repair the chain")
	}
}

func TestWithClockStampsBlocks(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bc := newTestChain(t, WithClock(func() time.Time { return now }))
	b := bc.Append(nil)
	if b.Timestamp != now.Unix() {
		t.Fatalf("expected timestamp %d, got %d", now.Unix(), b.Timestamp)
	}
	if bc.Blocks()[0].Timestamp != now.Unix() {
		t.Fatalf("expected genesis timestamp %d, got %d", now.Unix(), bc.Blocks()[0].Timestamp)
	}
}

func TestVerifyBlockReportsEachBlock(t *testing.T) {
	bc := newTestChain(t)
	bc.Append([]Transaction{{Sender: "A", Receiver: "B", Amount: 10}})
	bc.Append([]Transaction{{Sender: "B", Receiver: "C", Amount: 5}})
	bc.blocks[1].Transactions[0].Amount = 11

	// Block 2 still links to the stored hash of block 1, so only block 1 fails.
	want := []error{nil, ErrHashMismatch, nil}
	for i, wantErr := range want {
		err := bc.VerifyBlock(i)
		if wantErr == nil && err != nil {
			t.Fatalf("block %d: expected no error, got %v", i, err)
		}
		if wantErr != nil && !errors.Is(err, wantErr) {
			t.Fatalf("block %d: expected %v, got %v", i, wantErr, err)
		}
	}
	if err := bc.VerifyBlock(3); err == nil {
		t.Fatal("expected an error for an index past the tip")
	}
}
