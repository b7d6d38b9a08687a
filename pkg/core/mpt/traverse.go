package mpt

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// ForEach calls f for every key-value pair in the trie in ascending key
// order until f returns false. Unresolved nodes are loaded from the store,
// but the trie itself is not changed. Key and value are copies owned by f.
func (t *Trie) ForEach(f func(key, value []byte) bool) error {
	if t.err != nil {
		return t.err
	}
	_, err := t.forEach(t.root, Key{}, f)
	return err
}

// forEach walks the subtrie rooted at curr whose path is prefix. It returns
// false if the iteration was stopped.
func (t *Trie) forEach(curr Node, prefix Key, f func(key, value []byte) bool) (bool, error) {
	if curr == nil {
		return true, nil
	}
	if curr.IsDisposed() {
		return false, fmt.Errorf("%w: reading disposed %T", ErrInvariant, curr)
	}
	switch n := curr.(type) {
	case *HashNode:
		r, err := t.resolve(n.Hash())
		if err != nil {
			return false, err
		}
		return t.forEach(r, prefix, f)
	case *BranchNode:
		if n.value != nil && !f(prefix.Bytes(), bytes.Clone(n.value)) {
			return false, nil
		}
		for i := range n.children {
			ok, err := t.forEach(n.children[i], prefix.Concat(SingleNibbleKey(byte(i))), f)
			if !ok || err != nil {
				return ok, err
			}
		}
		return true, nil
	case *KeyValueNode:
		full := prefix.Concat(n.key)
		if n.key.IsTerminal() {
			return f(full.Bytes(), bytes.Clone(n.value)), nil
		}
		if n.next == nil {
			return false, fmt.Errorf("%w: extension without a child", ErrInvariant)
		}
		return t.forEach(n.next, full, f)
	default:
		return false, fmt.Errorf("%w: unexpected node %T", ErrInvariant, curr)
	}
}

// Collapse replaces every clean node at the specified depth and below with
// the hash node referring to it. Dirty nodes are kept, their clean
// descendants are collapsed.
func (t *Trie) Collapse(depth int) {
	if depth < 0 {
		panic("negative depth")
	}
	t.root = collapse(depth, t.root)
}

func collapse(depth int, node Node) Node {
	if node == nil || node.IsDisposed() {
		return node
	}
	if _, ok := node.(*HashNode); ok {
		return node
	}
	if h, ok := node.CachedHash(); ok && !node.IsDirty() && depth == 0 {
		return NewHashNode(h)
	}
	next := depth - 1
	if next < 0 {
		next = 0
	}
	switch n := node.(type) {
	case *BranchNode:
		for i := range n.children {
			n.children[i] = collapse(next, n.children[i])
		}
	case *KeyValueNode:
		if !n.key.IsTerminal() {
			n.next = collapse(next, n.next)
		}
	}
	return node
}

// StoreRootHash saves the root hash to the store, so that it can be restored
// with LoadRootHash later.
func StoreRootHash(s Store, h util.Uint256) error {
	return s.Put(storage.DataMPTAux.Bytes(), h.BytesBE())
}

// LoadRootHash returns the root hash saved with StoreRootHash. Zero hash is
// returned if there is none.
func LoadRootHash(s Store) (util.Uint256, error) {
	data, err := s.Get(storage.DataMPTAux.Bytes())
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return util.Uint256{}, nil
		}
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(data)
}
