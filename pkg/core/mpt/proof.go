package mpt

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// GetProof returns a proof that key belongs to t.
// Proof consist of serialized nodes occurring on path from the root to the
// node holding the value. All pending changes are persisted to build it.
func (t *Trie) GetProof(key []byte) ([][]byte, error) {
	if len(key) > MaxKeyLength {
		return nil, ErrKeyTooLong
	}
	if _, err := t.GetRootHash(); err != nil {
		return nil, err
	}
	var proof [][]byte
	err := t.getProof(t.root, NewKey(key), &proof)
	if err != nil {
		return nil, err
	}
	return proof, nil
}

func (t *Trie) getProof(curr Node, path Key, proofs *[][]byte) error {
	if curr == nil {
		return ErrNotFound
	}
	if h, ok := curr.(*HashNode); ok {
		r, err := t.resolve(h.Hash())
		if err != nil {
			return err
		}
		curr = r
	}
	data, err := EncodeNode(curr)
	if err != nil {
		return err
	}
	switch n := curr.(type) {
	case *BranchNode:
		*proofs = append(*proofs, bytes.Clone(data))
		if path.IsEmpty() {
			if n.value == nil {
				return ErrNotFound
			}
			return nil
		}
		return t.getProof(n.children[path.At(0)], path.Shift(1), proofs)
	case *KeyValueNode:
		rest, ok := path.MatchAndShift(n.key)
		if !ok {
			return ErrNotFound
		}
		*proofs = append(*proofs, bytes.Clone(data))
		if n.key.IsTerminal() {
			if !rest.IsEmpty() {
				return ErrNotFound
			}
			return nil
		}
		return t.getProof(n.next, rest, proofs)
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrInvariant, curr)
	}
}

// VerifyProof verifies that path indeed belongs to a MPT with the specified
// root hash. It also returns value for the key. Nil hasher means
// hash.DoubleSha256.
func VerifyProof(hasher hash.Hasher, rh util.Uint256, key []byte, proofs [][]byte) ([]byte, bool) {
	if hasher == nil {
		hasher = hash.DoubleSha256
	}
	ps := storage.NewMemoryStore()
	for i := range proofs {
		h := hasher(proofs[i])
		// no errors in Put to memory store
		_ = ps.Put(makeStorageKey(h), proofs[i])
	}
	tr := NewTrie(NewHashNode(rh), Config{Store: ps, Hasher: hasher})
	bs, err := tr.Get(key)
	return bs, err == nil
}
