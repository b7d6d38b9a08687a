package mpt

import (
	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// EmptyRootHash is the root hash of an empty trie using the default
// (double SHA-256) hasher.
var EmptyRootHash = emptyRoot(hash.DoubleSha256)

// emptyRoot returns the hash of the reserved empty node encoding.
func emptyRoot(h hash.Hasher) util.Uint256 {
	return h([]byte{byte(EmptyT)})
}
