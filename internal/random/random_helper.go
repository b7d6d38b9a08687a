package random

import (
	"math/rand"

	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// Bytes returns a random byte slice of the specified length.
func Bytes(n int) []byte {
	b := make([]byte, n)
	Fill(b)
	return b
}

// Fill fills buffer with random bytes.
func Fill(buf []byte) {
	// Rand reader returns no errors
	rand.Read(buf)
}

// Uint256 returns a random Uint256.
func Uint256() util.Uint256 {
	var h util.Uint256
	Fill(h[:])
	return h
}
