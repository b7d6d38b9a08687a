package mpt

import (
	"bytes"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/neo-mpt/pkg/config/limits"
	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
	"go.uber.org/zap"
)

const (
	// maxPathLength is the max length of the extension node key.
	maxPathLength = (limits.MaxStorageKeyLen + 4) * 2

	// MaxKeyLength is the max length of the key to put in the trie.
	MaxKeyLength = maxPathLength / 2

	// MaxValueLength is the max length of a leaf node value.
	MaxValueLength = 3 + limits.MaxStorageValueLen + 1
)

var (
	// ErrNotFound is returned when requested trie item is missing.
	ErrNotFound = errors.New("item not found")
	// ErrResolve is returned when a referenced node can't be loaded from the
	// store or its data is corrupted.
	ErrResolve = errors.New("can't resolve node")
	// ErrInvariant is returned when the trie structure is broken. It means
	// there is a bug somewhere or the store contains garbage.
	ErrInvariant = errors.New("trie invariant violated")
	// ErrKeyTooLong is returned for keys longer than MaxKeyLength.
	ErrKeyTooLong = errors.New("key is too big")
	// ErrValueTooLong is returned for values longer than MaxValueLength.
	ErrValueTooLong = errors.New("value is too big")

	errEmptyValue = errors.New("empty value")
	errInvalidRef = errors.New("invalid reference marker")
)

// Store is the content-addressed node store used by the trie. Get must
// return storage.ErrKeyNotFound for missing items.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
}

// Config contains trie parameters.
type Config struct {
	// Store keeps encoded nodes, it's mandatory.
	Store Store
	// Hasher is used to compute node hashes, hash.DoubleSha256 is used if
	// not set.
	Hasher hash.Hasher
	// CacheSize is the number of encoded nodes to keep in memory, no cache
	// is used if it's not positive.
	CacheSize int
	// Log is used for trie events, nothing is logged if not set.
	Log *zap.Logger
}

// Trie is an MPT trie storing all key-value pairs. It's not safe for
// concurrent mutation, but Get and GetRootHash of a flushed trie can be
// called concurrently.
type Trie struct {
	Store Store

	hasher    hash.Hasher
	emptyRoot util.Uint256
	cache     *lru.Cache
	log       *zap.Logger

	root Node
	// err is the error of the failed mutation, nothing can be done with the
	// trie until the new root is set.
	err error
}

// NewTrie returns new MPT trie with the root node given. nil root means an
// empty trie.
func NewTrie(root Node, cfg Config) *Trie {
	t := &Trie{
		Store:  cfg.Store,
		hasher: cfg.Hasher,
		log:    cfg.Log,
		root:   root,
	}
	if t.hasher == nil {
		t.hasher = hash.DoubleSha256
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	if cfg.CacheSize > 0 {
		t.cache, _ = lru.New(cfg.CacheSize)
	}
	t.emptyRoot = emptyRoot(t.hasher)
	return t
}

// EmptyRoot returns the root hash of an empty trie for the trie hasher.
func (t *Trie) EmptyRoot() util.Uint256 {
	return t.emptyRoot
}

// SetRootHash drops everything the trie has in memory and makes it refer to
// the root with the given hash. Zero hash and the empty root hash make the
// trie empty. It also clears the error left by a failed mutation.
func (t *Trie) SetRootHash(h util.Uint256) {
	t.err = nil
	if h.IsZero() || h.Equals(t.emptyRoot) {
		t.root = nil
		return
	}
	t.root = NewHashNode(h)
}

// GetRootHash encodes and persists all the changes and returns the root
// hash of the trie. Unresolved root is checked to exist in the store.
func (t *Trie) GetRootHash() (util.Uint256, error) {
	if t.err != nil {
		return util.Uint256{}, t.err
	}
	if t.root == nil {
		return t.emptyRoot, nil
	}
	if h, ok := t.root.(*HashNode); ok {
		if _, err := t.resolve(h.Hash()); err != nil {
			return util.Uint256{}, err
		}
		return h.Hash(), nil
	}
	h, err := t.encode(t.root, nil)
	if err != nil {
		t.poison(err)
		return util.Uint256{}, err
	}
	return h, nil
}

// Get returns value for the provided key in t.
func (t *Trie) Get(key []byte) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	if len(key) > MaxKeyLength {
		return nil, ErrKeyTooLong
	}
	v, err := t.getWithPath(t.root, NewKey(key))
	if err != nil {
		return nil, err
	}
	return bytes.Clone(v), nil
}

// getWithPath returns value the provided path in a subtrie rooting in curr.
// Unresolved nodes are loaded, but never replaced in the tree.
func (t *Trie) getWithPath(curr Node, path Key) ([]byte, error) {
	if curr == nil {
		return nil, ErrNotFound
	}
	if curr.IsDisposed() {
		return nil, fmt.Errorf("%w: reading disposed %T", ErrInvariant, curr)
	}
	switch n := curr.(type) {
	case *HashNode:
		r, err := t.resolve(n.Hash())
		if err != nil {
			return nil, err
		}
		return t.getWithPath(r, path)
	case *BranchNode:
		if path.IsEmpty() {
			if n.value == nil {
				return nil, ErrNotFound
			}
			return n.value, nil
		}
		return t.getWithPath(n.children[path.At(0)], path.Shift(1))
	case *KeyValueNode:
		rest, ok := path.MatchAndShift(n.key)
		if !ok {
			return nil, ErrNotFound
		}
		if n.key.IsTerminal() {
			if !rest.IsEmpty() {
				return nil, ErrNotFound
			}
			return n.value, nil
		}
		if n.next == nil {
			return nil, fmt.Errorf("%w: extension without a child", ErrInvariant)
		}
		return t.getWithPath(n.next, rest)
	default:
		return nil, fmt.Errorf("%w: unexpected node %T", ErrInvariant, curr)
	}
}

// Put puts key-value pair in t. Empty value is the same as Delete.
func (t *Trie) Put(key, value []byte) error {
	if t.err != nil {
		return t.err
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if len(value) > MaxValueLength {
		return ErrValueTooLong
	}
	if len(value) == 0 {
		return t.Delete(key)
	}
	r, err := t.putIntoNode(t.root, NewKey(key), bytes.Clone(value))
	if err != nil {
		t.poison(err)
		return err
	}
	t.root = r
	return nil
}

// putIntoNode puts val with the provided path inside curr and returns the
// node to replace curr with.
func (t *Trie) putIntoNode(curr Node, path Key, val []byte) (Node, error) {
	if curr == nil {
		return NewLeafNode(path, val), nil
	}
	if curr.IsDisposed() {
		return nil, fmt.Errorf("%w: writing to disposed %T", ErrInvariant, curr)
	}
	switch n := curr.(type) {
	case *HashNode:
		r, err := t.resolve(n.Hash())
		if err != nil {
			return nil, err
		}
		return t.putIntoNode(r, path, val)
	case *BranchNode:
		return t.putIntoBranch(n, path, val)
	case *KeyValueNode:
		return t.putIntoKeyValue(n, path, val)
	default:
		return nil, fmt.Errorf("%w: unexpected node %T", ErrInvariant, curr)
	}
}

// putIntoBranch puts val to the branch node b.
func (t *Trie) putIntoBranch(b *BranchNode, path Key, val []byte) (Node, error) {
	if path.IsEmpty() {
		b.SetValue(val)
		return b, nil
	}
	i := path.At(0)
	r, err := t.putIntoNode(b.children[i], path.Shift(1), val)
	if err != nil {
		return nil, err
	}
	b.SetChild(i, r)
	return b, nil
}

// putIntoKeyValue puts val to the leaf or extension node n splitting it if
// needed.
func (t *Trie) putIntoKeyValue(n *KeyValueNode, path Key, val []byte) (Node, error) {
	var (
		cp = path.CommonPrefix(n.key)
		l  = cp.Len()
	)
	if l == n.key.Len() {
		if n.key.IsTerminal() {
			if l == path.Len() {
				n.SetValue(val)
				return n, nil
			}
		} else {
			if n.next == nil {
				return nil, fmt.Errorf("%w: extension without a child", ErrInvariant)
			}
			r, err := t.putIntoNode(n.next, path.Shift(l), val)
			if err != nil {
				return nil, err
			}
			n.SetNext(r)
			return n, nil
		}
	}

	b := NewBranchNode()
	if l == n.key.Len() {
		b.value = n.value
	} else {
		b.children[n.key.At(l)] = n.subTrie(n.key.Shift(l + 1))
	}
	if l == path.Len() {
		b.value = val
	} else {
		b.children[path.At(l)] = NewLeafNode(path.Shift(l+1), val)
	}

	switch {
	case l == 0:
		n.dispose()
		return b, nil
	case l == path.Len():
		n.reset(cp, nil, b)
		return n, nil
	default:
		n.dispose()
		return NewExtensionNode(cp, b), nil
	}
}

// subTrie returns the node holding n payload under the given remainder of
// its key.
func (n *KeyValueNode) subTrie(rest Key) Node {
	switch {
	case n.key.IsTerminal():
		return NewLeafNode(rest, n.value)
	case rest.IsEmpty():
		return n.next
	default:
		return NewExtensionNode(rest, n.next)
	}
}

// Delete removes key from the trie. Deleting missing key is not an error.
func (t *Trie) Delete(key []byte) error {
	if t.err != nil {
		return t.err
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	r, _, err := t.deleteFromNode(t.root, NewKey(key))
	if err != nil {
		t.poison(err)
		return err
	}
	t.root = r
	return nil
}

// deleteFromNode removes path from the subtrie rooting in curr. It returns
// the node to replace curr with and a flag telling whether anything was
// removed.
func (t *Trie) deleteFromNode(curr Node, path Key) (Node, bool, error) {
	if curr == nil {
		return nil, false, nil
	}
	if curr.IsDisposed() {
		return nil, false, fmt.Errorf("%w: deleting from disposed %T", ErrInvariant, curr)
	}
	switch n := curr.(type) {
	case *HashNode:
		r, err := t.resolve(n.Hash())
		if err != nil {
			return nil, false, err
		}
		return t.deleteFromNode(r, path)
	case *BranchNode:
		return t.deleteFromBranch(n, path)
	case *KeyValueNode:
		return t.deleteFromKeyValue(n, path)
	default:
		return nil, false, fmt.Errorf("%w: unexpected node %T", ErrInvariant, curr)
	}
}

func (t *Trie) deleteFromBranch(b *BranchNode, path Key) (Node, bool, error) {
	if path.IsEmpty() {
		if b.value == nil {
			return b, false, nil
		}
		b.SetValue(nil)
	} else {
		i := path.At(0)
		r, changed, err := t.deleteFromNode(b.children[i], path.Shift(1))
		if err != nil {
			return nil, false, err
		}
		if !changed {
			// Resolved child has the same hash, the branch stays clean.
			b.children[i] = r
			return b, false, nil
		}
		b.SetChild(i, r)
	}

	kind, idx, err := b.compaction()
	if err != nil {
		return nil, false, err
	}
	switch kind {
	case compactToValue:
		leaf := NewLeafNode(TerminalKey(), b.value)
		b.dispose()
		return leaf, true, nil
	case compactToChild:
		c := b.children[idx]
		if h, ok := c.(*HashNode); ok {
			c, err = t.resolve(h.Hash())
			if err != nil {
				return nil, false, err
			}
		}
		b.dispose()
		ext := NewExtensionNode(SingleNibbleKey(idx), c)
		if kv, ok := c.(*KeyValueNode); ok {
			merge(ext, kv)
		}
		return ext, true, nil
	default:
		return b, true, nil
	}
}

func (t *Trie) deleteFromKeyValue(n *KeyValueNode, path Key) (Node, bool, error) {
	rest, ok := path.MatchAndShift(n.key)
	if !ok {
		return n, false, nil
	}
	if n.key.IsTerminal() {
		if !rest.IsEmpty() {
			return n, false, nil
		}
		n.dispose()
		return nil, true, nil
	}
	if n.next == nil {
		return nil, false, fmt.Errorf("%w: extension without a child", ErrInvariant)
	}
	r, changed, err := t.deleteFromNode(n.next, rest)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		n.next = r
		return n, false, nil
	}
	switch c := r.(type) {
	case nil:
		n.dispose()
		return nil, true, nil
	case *KeyValueNode:
		merge(n, c)
	default:
		n.SetNext(r)
	}
	return n, true, nil
}

// merge joins extension n with its key-value child c: n gets the combined
// key and c payload, c is disposed.
func merge(n *KeyValueNode, c *KeyValueNode) {
	n.reset(n.key.Concat(c.key), c.value, c.next)
	c.dispose()
}

// Flush encodes all dirty nodes, puts them into the store and replaces the
// root with the hash node, so that memory used by the trie can be released.
// It returns true if there were changes to persist.
func (t *Trie) Flush() (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	if t.root == nil {
		return false, nil
	}
	var (
		dirty = t.root.IsDirty()
		nodes int
	)
	h, err := t.encode(t.root, &nodes)
	if err != nil {
		t.poison(err)
		return false, err
	}
	t.root = NewHashNode(h)
	if dirty {
		t.log.Debug("trie flushed", zap.Stringer("root", h), zap.Int("nodes", nodes))
	}
	return dirty, nil
}

// encode encodes n and all its dirty descendants, puts them into the store
// and returns the hash of n. nodes (if not nil) is incremented for every
// node persisted.
func (t *Trie) encode(n Node, nodes *int) (util.Uint256, error) {
	if n.IsDisposed() {
		return util.Uint256{}, fmt.Errorf("%w: encoding disposed %T", ErrInvariant, n)
	}
	if h, ok := n.CachedHash(); ok && !n.IsDirty() {
		return h, nil
	}
	switch n := n.(type) {
	case *BranchNode:
		for _, c := range n.children {
			if c == nil {
				continue
			}
			if _, err := t.encode(c, nodes); err != nil {
				return util.Uint256{}, err
			}
		}
	case *KeyValueNode:
		if !n.key.IsTerminal() {
			if n.next == nil {
				return util.Uint256{}, fmt.Errorf("%w: extension without a child", ErrInvariant)
			}
			if _, err := t.encode(n.next, nodes); err != nil {
				return util.Uint256{}, err
			}
		}
	}
	data, err := EncodeNode(n)
	if err != nil {
		return util.Uint256{}, err
	}
	h := t.hasher(data)
	if err := t.Store.Put(makeStorageKey(h), data); err != nil {
		return util.Uint256{}, err
	}
	if t.cache != nil {
		t.cache.Add(h, data)
	}
	n.getBase().setClean(h)
	persistedNodes.Inc()
	if nodes != nil {
		*nodes++
	}
	return h, nil
}

// resolve loads the node with hash h from the cache or the store checking
// its integrity. The node returned is clean.
func (t *Trie) resolve(h util.Uint256) (Node, error) {
	data, err := t.getFromStore(h)
	if err != nil {
		return nil, err
	}
	if actual := t.hasher(data); !actual.Equals(h) {
		return nil, fmt.Errorf("%w: %s: hash mismatch, got %s", ErrResolve, h.StringBE(), actual.StringBE())
	}
	n, err := DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, h.StringBE(), err)
	}
	n.getBase().setClean(h)
	resolvedNodes.Inc()
	return n, nil
}

func (t *Trie) getFromStore(h util.Uint256) ([]byte, error) {
	if t.cache != nil {
		if data, ok := t.cache.Get(h); ok {
			cacheHits.Inc()
			return data.([]byte), nil
		}
	}
	data, err := t.Store.Get(makeStorageKey(h))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s: %w", ErrResolve, h.StringBE(), err)
		}
		return nil, err
	}
	if t.cache != nil {
		t.cache.Add(h, data)
	}
	return data, nil
}

// poison stops the trie from doing anything until the new root is set.
func (t *Trie) poison(err error) {
	t.err = err
	t.log.Error("trie operation failed, new root is required", zap.Error(err))
}

// Err returns the error of the failed mutation if there was one.
func (t *Trie) Err() error {
	return t.err
}

func makeStorageKey(h util.Uint256) []byte {
	return storage.AppendPrefix(storage.DataMPT, h[:])
}
