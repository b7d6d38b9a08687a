package storage

import (
	"sync"
)

// MemCachedStore is a wrapper around persistent store that caches all changes
// being made for them to be later flushed in one batch.
type MemCachedStore struct {
	mut sync.RWMutex
	// mem holds pending changes, nil values denote deletions.
	mem map[string][]byte

	// Persistent Store.
	ps Store
}

// NewMemCachedStore creates a new MemCachedStore object.
func NewMemCachedStore(lower Store) *MemCachedStore {
	return &MemCachedStore{
		mem: make(map[string][]byte),
		ps:  lower,
	}
}

// Get implements the Store interface.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	val, ok := s.mem[string(key)]
	s.mut.RUnlock()
	if ok {
		if val == nil {
			return nil, ErrKeyNotFound
		}
		return val, nil
	}
	return s.ps.Get(key)
}

// Put implements the Store interface. Never returns an error.
func (s *MemCachedStore) Put(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	s.mut.Lock()
	s.mem[string(key)] = value
	s.mut.Unlock()
	return nil
}

// Delete implements the Store interface. Never returns an error.
func (s *MemCachedStore) Delete(key []byte) error {
	s.mut.Lock()
	s.mem[string(key)] = nil
	s.mut.Unlock()
	return nil
}

// PutChangeSet implements the Store interface. Never returns an error.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k, v := range puts {
		s.mem[k] = v
	}
	s.mut.Unlock()
	return nil
}

// Len returns the number of pending (not yet persisted) changes.
func (s *MemCachedStore) Len() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.mem)
}

// Persist flushes all the pending changes into the (supposedly) persistent
// store ps. It returns the number of keys put (deletions are not counted).
func (s *MemCachedStore) Persist() (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if len(s.mem) == 0 {
		return 0, nil
	}
	var keys int
	for _, v := range s.mem {
		if v != nil {
			keys++
		}
	}
	err := s.ps.PutChangeSet(s.mem)
	if err != nil {
		return 0, err
	}
	s.mem = make(map[string][]byte)
	return keys, nil
}

// Close implements Store interface, clears up memory and closes the lower layer
// Store.
func (s *MemCachedStore) Close() error {
	s.mut.Lock()
	s.mem = nil
	s.mut.Unlock()
	return s.ps.Close()
}
