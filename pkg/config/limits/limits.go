/*
Package limits contains hardcoded size limits for trie keys and values. Stores
and tools may rely on them to bound memory used for a single entry.
*/
package limits

const (
	// MaxStorageKeyLen is the maximum length of a key that can be put into
	// the trie. Longer keys are rejected before any node is touched.
	MaxStorageKeyLen = 64
	// MaxStorageValueLen is the maximum length of a value. It is set to be
	// the maximum value for uint16.
	MaxStorageValueLen = 65535
)
