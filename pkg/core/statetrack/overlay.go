/*
Package statetrack implements speculative changes tracking over the trie.
Changes made via an Overlay are only visible through it until they're
committed to the parent with ordinary Put and Delete calls.
*/
package statetrack

import (
	"bytes"
	"errors"
	"slices"

	"github.com/nspcc-dev/neo-mpt/pkg/core/mpt"
)

// Backend is the state an Overlay works on top of, both *mpt.Trie and
// *Overlay implement it. Get must return mpt.ErrNotFound for missing keys.
type Backend interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Overlay keeps changes made on top of the parent Backend. It's not safe for
// concurrent use.
type Overlay struct {
	parent Backend
	// mem holds pending changes, nil values denote deletions.
	mem map[string][]byte
}

var _ Backend = (*Overlay)(nil)

// StartTracking creates a new Overlay over the parent.
func StartTracking(parent Backend) *Overlay {
	return &Overlay{
		parent: parent,
		mem:    make(map[string][]byte),
	}
}

// Get returns the value for the key taking pending changes into account.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	if v, ok := o.mem[string(key)]; ok {
		if v == nil {
			return nil, mpt.ErrNotFound
		}
		return bytes.Clone(v), nil
	}
	return o.parent.Get(key)
}

// Put remembers the new value for the key. Empty value is the same as Delete.
func (o *Overlay) Put(key, value []byte) error {
	if len(key) > mpt.MaxKeyLength {
		return mpt.ErrKeyTooLong
	}
	if len(value) > mpt.MaxValueLength {
		return mpt.ErrValueTooLong
	}
	if len(value) == 0 {
		return o.Delete(key)
	}
	o.mem[string(key)] = bytes.Clone(value)
	return nil
}

// Delete remembers the key as deleted.
func (o *Overlay) Delete(key []byte) error {
	if len(key) > mpt.MaxKeyLength {
		return mpt.ErrKeyTooLong
	}
	o.mem[string(key)] = nil
	return nil
}

// Len returns the number of pending changes.
func (o *Overlay) Len() int {
	return len(o.mem)
}

// Commit applies all pending changes to the parent in ascending key order.
// Changes are dropped after successful commit, the overlay can be reused
// then. If the parent fails, the error is returned and changes not applied
// yet are kept.
func (o *Overlay) Commit() error {
	keys := make([]string, 0, len(o.mem))
	for k := range o.mem {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		var err error
		if v := o.mem[k]; v != nil {
			err = o.parent.Put([]byte(k), v)
		} else {
			err = o.parent.Delete([]byte(k))
		}
		if err != nil {
			return errors.Join(errCommit, err)
		}
		delete(o.mem, k)
	}
	return nil
}

// Discard drops all pending changes.
func (o *Overlay) Discard() {
	clear(o.mem)
}

var errCommit = errors.New("can't commit changes")
