package mpt

import (
	"fmt"
)

// KeyValueNode represents an MPT's node holding a part of the path. With a
// terminal key it's a leaf storing the value, otherwise it's an extension
// pointing to a single child.
type KeyValueNode struct {
	BaseNode
	key   Key
	value []byte
	next  Node
}

// NewLeafNode returns a node storing value at the given path. The key is
// always made terminal.
func NewLeafNode(key Key, value []byte) *KeyValueNode {
	return &KeyValueNode{
		BaseNode: BaseNode{dirty: true},
		key:      key.WithTerminal(true),
		value:    value,
	}
}

// NewExtensionNode returns a node pointing to next through the given path.
// The key is always made non-terminal.
func NewExtensionNode(key Key, next Node) *KeyValueNode {
	return &KeyValueNode{
		BaseNode: BaseNode{dirty: true},
		key:      key.WithTerminal(false),
		next:     next,
	}
}

// Type implements Node interface.
func (n *KeyValueNode) Type() NodeType { return KeyValueT }

// Key returns the path stored in the node.
func (n *KeyValueNode) Key() Key {
	return n.key
}

// IsLeaf tells whether the node stores a value.
func (n *KeyValueNode) IsLeaf() bool {
	return n.key.IsTerminal()
}

// Value returns the value of a leaf, it's nil for extensions.
func (n *KeyValueNode) Value() []byte {
	return n.value
}

// SetValue replaces the value of a leaf.
func (n *KeyValueNode) SetValue(v []byte) {
	n.value = v
	n.Invalidate()
}

// Next returns the child of an extension, it's an error to call it for leaves.
func (n *KeyValueNode) Next() (Node, error) {
	if n.key.IsTerminal() {
		return nil, fmt.Errorf("%w: leaf %s has no child", ErrInvariant, n.key)
	}
	return n.next, nil
}

// SetNext replaces the child of an extension.
func (n *KeyValueNode) SetNext(next Node) {
	n.next = next
	n.Invalidate()
}

// reset rewrites the node in place. Exactly one of value and next is
// expected to be set, depending on the key being terminal.
func (n *KeyValueNode) reset(key Key, value []byte, next Node) {
	n.key = key
	n.value = value
	n.next = next
	n.Invalidate()
}

func (n *KeyValueNode) dispose() {
	n.BaseNode.dispose()
	n.value = nil
	n.next = nil
}
