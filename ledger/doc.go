// Package ledger implements an append-only blockchain secured by a
// proof-of-work puzzle.
//
// # Core Components
//
// Block: An ordered list of transactions plus a header (timestamp, previous
// hash, nonce) and the SHA-256 hash of those fields. Blocks mine themselves
// by searching for a nonce whose hash starts with enough zero hex digits.
//
// Blockchain: The sequence of blocks, genesis first, with a fixed
// difficulty. It appends mined blocks, verifies the whole sequence and
// converts to and from snapshots.
//
// # Security Properties
//
// The blockchain provides:
//   - Tamper detection: changing any hashed field breaks the stored hash
//   - Linkage: every block records the hash of the block before it
//   - Proof of work: every block after genesis carries a hash meeting the
//     chain difficulty
//
// # Concurrency
//
// A Blockchain is not safe for concurrent use. Mining runs synchronously
// inside Append, so whoever serializes access also holds that lock for the
// whole mining run.
//
// # Persistence
//
// Persist and Restore move a snapshot through a Storage. Restore tells a
// missing snapshot (ErrSnapshotNotFound) apart from one that cannot be read
// (ErrSnapshotUnreadable) or parsed (ErrSnapshotMalformed).
package ledger
