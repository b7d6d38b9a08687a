package mpt

import (
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// HashNode is a stub standing for a subtree that lives in the store and is
// loaded on first access. It's never dirty and never gets encoded itself,
// parents embed its hash directly.
type HashNode struct {
	BaseNode
}

// NewHashNode returns a stub for the node with hash h.
func NewHashNode(h util.Uint256) *HashNode {
	n := new(HashNode)
	n.setClean(h)
	return n
}

// Type implements Node interface.
func (h *HashNode) Type() NodeType { return HashT }

// Hash returns the hash of the referenced node.
func (h *HashNode) Hash() util.Uint256 { return h.hash }

// String implements fmt.Stringer.
func (h *HashNode) String() string { return "hash:" + h.hash.StringBE() }
