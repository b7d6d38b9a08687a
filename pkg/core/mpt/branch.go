package mpt

import (
	"fmt"
)

const (
	// childrenCount represents the number of children of a branch node.
	childrenCount = 16
)

// compaction is the result of BranchNode.compaction.
type compaction byte

// Branch shapes as reported by compaction.
const (
	// noCompaction means that the branch has at least two entries.
	noCompaction compaction = iota
	// compactToValue means that only the value of the branch is left.
	compactToValue
	// compactToChild means that only one child of the branch is left.
	compactToChild
)

// BranchNode represents an MPT's branch node: up to 16 children plus an
// optional value stored at the branch itself.
type BranchNode struct {
	BaseNode
	children [childrenCount]Node
	value    []byte
}

// NewBranchNode returns a new empty branch node.
func NewBranchNode() *BranchNode {
	return &BranchNode{BaseNode: BaseNode{dirty: true}}
}

// Type implements Node interface.
func (b *BranchNode) Type() NodeType { return BranchT }

// Child returns the child at the specified nibble index (nil if there is no
// child there).
func (b *BranchNode) Child(i byte) Node {
	return b.children[i]
}

// SetChild sets the child at the specified nibble index, nil removes it.
func (b *BranchNode) SetChild(i byte, n Node) {
	b.children[i] = n
	b.Invalidate()
}

// Value returns the value stored in the branch, nil if there is none.
func (b *BranchNode) Value() []byte {
	return b.value
}

// SetValue sets the value stored in the branch, nil removes it.
func (b *BranchNode) SetValue(v []byte) {
	b.value = v
	b.Invalidate()
}

// compaction checks whether the branch can be replaced with a simpler node.
// For compactToChild the index of the remaining child is returned. A branch
// with no entries at all can't exist in the trie, so it's reported as an
// error.
func (b *BranchNode) compaction() (compaction, byte, error) {
	var (
		entries int
		idx     byte
	)
	if b.value != nil {
		entries++
	}
	for i := range b.children {
		if b.children[i] != nil {
			entries++
			idx = byte(i)
		}
	}
	switch {
	case entries >= 2:
		return noCompaction, 0, nil
	case entries == 0:
		return noCompaction, 0, fmt.Errorf("%w: branch has no entries", ErrInvariant)
	case b.value != nil:
		return compactToValue, 0, nil
	default:
		return compactToChild, idx, nil
	}
}

func (b *BranchNode) dispose() {
	b.BaseNode.dispose()
	b.children = [childrenCount]Node{}
	b.value = nil
}
