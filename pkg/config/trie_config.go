package config

import (
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
)

// DefaultCacheSize is the default number of nodes cached by the trie.
const DefaultCacheSize = 10000

// TrieConfiguration contains trie parameters.
type TrieConfiguration struct {
	// CacheSize is the number of encoded nodes kept in memory, zero
	// disables the cache.
	CacheSize int `yaml:"CacheSize"`
	// Hasher is the name of the node hash function, see hash.ByName.
	Hasher string `yaml:"Hasher"`
}

// Validate checks the configuration.
func (t TrieConfiguration) Validate() error {
	if t.CacheSize < 0 {
		return fmt.Errorf("negative CacheSize: %d", t.CacheSize)
	}
	if _, err := hash.ByName(t.Hasher); err != nil {
		return fmt.Errorf("invalid Hasher: %w", err)
	}
	return nil
}

// GetHasher returns the configured hash function.
func (t TrieConfiguration) GetHasher() (hash.Hasher, error) {
	return hash.ByName(t.Hasher)
}
