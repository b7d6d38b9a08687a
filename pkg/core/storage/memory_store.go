package storage

import (
	"sync"
)

// MemoryStore is a map-backed Store. It's used for tests, proof checking
// and the in-memory DB type; nothing survives Close.
type MemoryStore struct {
	mut sync.RWMutex
	mem map[string][]byte
}

// NewMemoryStore creates a new MemoryStore object.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mem: make(map[string][]byte),
	}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok {
		return val, nil
	}
	return nil, ErrKeyNotFound
}

// Put implements the Store interface. The value is copied, so the caller
// can reuse its buffer; nil value is stored as an empty one. Never returns
// an error.
func (s *MemoryStore) Put(key, value []byte) error {
	s.mut.Lock()
	s.mem[string(key)] = append([]byte{}, value...)
	s.mut.Unlock()
	return nil
}

// Delete implements the Store interface. Never returns an error.
func (s *MemoryStore) Delete(key []byte) error {
	s.mut.Lock()
	delete(s.mem, string(key))
	s.mut.Unlock()
	return nil
}

// PutChangeSet implements the Store interface. Never returns an error.
func (s *MemoryStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k, v := range puts {
		put(s.mem, k, clonePut(v))
	}
	s.mut.Unlock()
	return nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.mem)
}

// Close implements the Store interface, all the data is dropped. Never
// returns an error.
func (s *MemoryStore) Close() error {
	s.mut.Lock()
	clear(s.mem)
	s.mut.Unlock()
	return nil
}

// put applies a single change set entry, nil value is a deletion. The
// caller holds the lock.
func put(m map[string][]byte, key string, value []byte) {
	if value != nil {
		m[key] = value
	} else {
		delete(m, key)
	}
}

// clonePut copies value keeping nil (deletion) and empty values distinct.
func clonePut(value []byte) []byte {
	if value == nil {
		return nil
	}
	return append(make([]byte, 0, len(value)), value...)
}
