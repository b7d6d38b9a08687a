package storage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore keeps trie nodes in a LevelDB database.
type LevelDBStore struct {
	db *leveldb.DB
	wo *opt.WriteOptions
}

// NewLevelDBStore opens (or creates, unless it's read-only) the database at
// the configured path.
func NewLevelDBStore(cfg dbconfig.LevelDBOptions) (*LevelDBStore, error) {
	opts := new(opt.Options)
	if cfg.ReadOnly {
		opts.ReadOnly = true
		opts.ErrorIfMissing = true
	}
	bits := cfg.BloomFilterBits
	if bits == 0 {
		bits = dbconfig.DefaultBloomFilterBits
	}
	if bits > 0 {
		opts.Filter = filter.NewBloomFilter(bits)
	}
	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB instance: %w", err)
	}
	return &LevelDBStore{
		db: db,
		wo: &opt.WriteOptions{Sync: cfg.Sync},
	}, nil
}

// Get implements the Store interface.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

// Put implements the Store interface.
func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, s.wo)
}

// Delete implements the Store interface.
func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, s.wo)
}

// PutChangeSet implements the Store interface. The whole set is written as
// a single atomic batch.
func (s *LevelDBStore) PutChangeSet(puts map[string][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range puts {
		if v != nil {
			batch.Put([]byte(k), v)
		} else {
			batch.Delete([]byte(k))
		}
	}
	return s.db.Write(batch, s.wo)
}

// Close implements the Store interface.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
