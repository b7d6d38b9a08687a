package trie

import (
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"github.com/nspcc-dev/neo-mpt/pkg/core/mpt"
	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
	"go.uber.org/zap"
)

// session is an open trie over the configured store. Changes are kept in the
// memory cache until commit.
type session struct {
	store  storage.Store
	mem    *storage.MemCachedStore
	trie   *mpt.Trie
	hasher hash.Hasher
	log    *zap.Logger
}

func newSession(cfg config.ApplicationConfiguration, log *zap.Logger) (*session, error) {
	hasher, err := cfg.Trie.GetHasher()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(cfg.DBConfiguration)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	s, err := newSessionWithStore(store, hasher, cfg.Trie.CacheSize, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

func newSessionWithStore(store storage.Store, hasher hash.Hasher, cacheSize int, log *zap.Logger) (*session, error) {
	mem := storage.NewMemCachedStore(store)
	root, err := mpt.LoadRootHash(mem)
	if err != nil {
		return nil, fmt.Errorf("failed to load root hash: %w", err)
	}
	tr := mpt.NewTrie(nil, mpt.Config{
		Store:     mem,
		Hasher:    hasher,
		CacheSize: cacheSize,
		Log:       log,
	})
	tr.SetRootHash(root)
	log.Debug("trie opened", zap.Stringer("root", root))
	return &session{
		store:  store,
		mem:    mem,
		trie:   tr,
		hasher: hasher,
		log:    log,
	}, nil
}

// commit flushes the trie, saves its root hash and persists everything to the
// underlying store.
func (s *session) commit() error {
	if _, err := s.trie.Flush(); err != nil {
		return fmt.Errorf("failed to flush trie: %w", err)
	}
	h, err := s.trie.GetRootHash()
	if err != nil {
		return err
	}
	if err := mpt.StoreRootHash(s.mem, h); err != nil {
		return err
	}
	n, err := s.mem.Persist()
	if err != nil {
		return fmt.Errorf("failed to persist changes: %w", err)
	}
	s.log.Debug("changes persisted", zap.Int("keys", n), zap.Stringer("root", h))
	return nil
}

// rollback drops uncommitted changes and returns the trie to the last
// committed root.
func (s *session) rollback() error {
	s.mem = storage.NewMemCachedStore(s.store)
	root, err := mpt.LoadRootHash(s.mem)
	if err != nil {
		return err
	}
	s.trie.Store = s.mem
	s.trie.SetRootHash(root)
	return nil
}

func (s *session) close() error {
	return s.store.Close()
}
