package ledger

import "time"

// Option configures a Blockchain created by New or Restore.
type Option func(*Blockchain)

// WithDifficulty sets the number of leading zero hex digits a mined block
// hash must have. Restore ignores it when the snapshot records its own.
func WithDifficulty(difficulty uint) Option {
	return func(bc *Blockchain) {
		bc.difficulty = difficulty
	}
}

// WithClock replaces the wall clock used to timestamp new blocks.
func WithClock(now func() time.Time) Option {
	return func(bc *Blockchain) {
		bc.now = now
	}
}
