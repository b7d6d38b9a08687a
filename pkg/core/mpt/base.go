package mpt

import (
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// BaseNode implements basic things every node needs like caching hash and
// keeping track of the node state. It's a basic node building block intended
// to be included into all node types.
type BaseNode struct {
	hash      util.Uint256
	hashValid bool
	dirty     bool
	disposed  bool
}

func (b *BaseNode) getBase() *BaseNode {
	return b
}

// CachedHash returns the hash of the node computed during the last encoding.
// It's only valid for clean nodes, false is returned otherwise.
func (b *BaseNode) CachedHash() (util.Uint256, bool) {
	return b.hash, b.hashValid
}

// IsDirty tells whether the node was changed since the last encoding.
func (b *BaseNode) IsDirty() bool {
	return b.dirty
}

// IsDisposed tells whether the node was structurally replaced.
func (b *BaseNode) IsDisposed() bool {
	return b.disposed
}

// Invalidate marks the node as dirty, its hash is to be recomputed on the
// next encoding.
func (b *BaseNode) Invalidate() {
	b.dirty = true
	b.hashValid = false
}

// setClean caches the hash of the freshly encoded node.
func (b *BaseNode) setClean(h util.Uint256) {
	b.hash = h
	b.hashValid = true
	b.dirty = false
}

func (b *BaseNode) dispose() {
	b.disposed = true
	b.dirty = false
	b.hashValid = false
}
