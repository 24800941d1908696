// Package storage provides the snapshot stores a ledger is persisted to.
//
// Every store holds a single snapshot and reports an empty store through an
// error wrapping fs.ErrNotExist, so callers can tell "no prior state" apart
// from a failed read.
//
// File keeps the snapshot as a human-readable file. LevelDB keeps it under a
// fixed key of a LevelDB database. Memory keeps it in process and is meant
// for tests.
package storage
