package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	goleveldb "github.com/syndtr/goleveldb/leveldb"
)

// SnapshotKey is the LevelDB key the snapshot is stored under.
var SnapshotKey = []byte("chain-snapshot")

// LevelDB stores the snapshot in a LevelDB database.
type LevelDB struct {
	db *leveldb.Database
}

// OpenLevelDB opens, or creates, the database in dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	if dir == "" {
		return nil, errors.New("leveldb dir required")
	}
	db, err := leveldb.New(dir, 0, 0, "", false)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

// Load returns the stored snapshot. A missing key yields an error wrapping
// fs.ErrNotExist.
func (l *LevelDB) Load() ([]byte, error) {
	data, err := l.db.Get(SnapshotKey)
	if errors.Is(err, goleveldb.ErrNotFound) {
		return nil, fmt.Errorf("leveldb key %s: %w", SnapshotKey, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb key %s: %w", SnapshotKey, err)
	}
	return data, nil
}

func (l *LevelDB) Store(data []byte) error {
	return l.db.Put(SnapshotKey, data)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
