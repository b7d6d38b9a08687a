/*
Package hash contains wrappers for the hash functions used to address trie
nodes.
*/
package hash

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-mpt/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Hasher computes a node digest from its canonical encoding.
type Hasher func(data []byte) util.Uint256

// Names of the supported hashers as they're used in configuration files.
const (
	DoubleSha256Name = "doublesha256"
	Keccak256Name    = "keccak256"
)

// Sha256 hashes the incoming byte slice using the sha256 algorithm.
func Sha256(data []byte) util.Uint256 {
	return sha256.Sum256(data)
}

// DoubleSha256 performs sha256 twice on the given data.
func DoubleSha256(data []byte) util.Uint256 {
	h1 := Sha256(data)
	return Sha256(h1[:])
}

// Keccak256 hashes the incoming byte slice using the legacy (pre-SHA3)
// Keccak-256 algorithm.
func Keccak256(data []byte) util.Uint256 {
	var res util.Uint256
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	h.Sum(res[:0])
	return res
}

// ByName returns a Hasher by its configuration name. An empty name selects
// DoubleSha256.
func ByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", DoubleSha256Name:
		return DoubleSha256, nil
	case Keccak256Name:
		return Keccak256, nil
	default:
		return nil, fmt.Errorf("unknown hasher: %s", name)
	}
}
