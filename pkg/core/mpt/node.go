package mpt

import (
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/io"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
)

// NodeType represents node type..
type NodeType byte

// Node types definitions. BranchT, KeyValueT and EmptyT are the ones used in
// the encoding, HashT denotes unresolved references and never gets encoded.
const (
	BranchT   NodeType = 0x00
	KeyValueT NodeType = 0x01
	EmptyT    NodeType = 0x02
	HashT     NodeType = 0x03
)

// Child reference markers of the branch encoding, the same ones are used to
// tell whether the branch has a value.
const (
	refEmpty byte = 0x00
	refHash  byte = 0x01
)

// Node represents common interface of all MPT nodes.
type Node interface {
	Type() NodeType
	CachedHash() (util.Uint256, bool)
	IsDirty() bool
	IsDisposed() bool
	Invalidate()

	getBase() *BaseNode
	dispose()
}

// EncodeNode returns the canonical encoding of n. All children of n must be
// encoded beforehand, so that their hashes are available.
func EncodeNode(n Node) ([]byte, error) {
	buf := io.NewBufBinWriter()
	if err := encodeNodeWithType(n, buf.BinWriter); err != nil {
		return nil, err
	}
	if buf.Err != nil {
		return nil, buf.Err
	}
	return buf.Bytes(), nil
}

// encodeNodeWithType encodes node together with it's type.
func encodeNodeWithType(n Node, w *io.BinWriter) error {
	if n.IsDisposed() {
		return fmt.Errorf("%w: encoding disposed %T", ErrInvariant, n)
	}
	switch n := n.(type) {
	case *BranchNode:
		w.WriteB(byte(BranchT))
		for i := range n.children {
			if err := encodeRef(n.children[i], w); err != nil {
				return err
			}
		}
		if n.value == nil {
			w.WriteB(refEmpty)
		} else {
			w.WriteB(refHash)
			w.WriteVarBytes(n.value)
		}
	case *KeyValueNode:
		w.WriteB(byte(KeyValueT))
		n.key.EncodeBinary(w)
		if n.key.IsTerminal() {
			w.WriteVarBytes(n.value)
			return nil
		}
		if n.next == nil {
			return fmt.Errorf("%w: extension without a child", ErrInvariant)
		}
		h, ok := n.next.CachedHash()
		if !ok {
			return fmt.Errorf("%w: child of %s is not encoded", ErrInvariant, n.key)
		}
		w.WriteBytes(h[:])
	default:
		return fmt.Errorf("%w: can't encode %T", ErrInvariant, n)
	}
	return nil
}

func encodeRef(n Node, w *io.BinWriter) error {
	if n == nil {
		w.WriteB(refEmpty)
		return nil
	}
	h, ok := n.CachedHash()
	if !ok {
		return fmt.Errorf("%w: branch child is not encoded", ErrInvariant)
	}
	w.WriteB(refHash)
	w.WriteBytes(h[:])
	return nil
}

// DecodeNode decodes the node from its canonical encoding. Children of the
// node are returned as unresolved hash nodes.
func DecodeNode(data []byte) (Node, error) {
	var n Node
	r := io.NewBinReaderFromBuf(data)
	switch typ := NodeType(r.ReadB()); typ {
	case BranchT:
		b := new(BranchNode)
		for i := range b.children {
			b.children[i] = decodeRef(r)
		}
		switch r.ReadB() {
		case refEmpty:
		case refHash:
			b.value = r.ReadVarBytes(MaxValueLength)
			if r.Err == nil && len(b.value) == 0 {
				r.Err = errEmptyValue
			}
		default:
			r.Err = errInvalidRef
		}
		n = b
	case KeyValueT:
		kv := new(KeyValueNode)
		kv.key.DecodeBinary(r)
		if kv.key.IsTerminal() {
			kv.value = r.ReadVarBytes(MaxValueLength)
			if r.Err == nil && len(kv.value) == 0 {
				r.Err = errEmptyValue
			}
		} else {
			var h util.Uint256
			r.ReadBytes(h[:])
			kv.next = NewHashNode(h)
		}
		n = kv
	default:
		if r.Err == nil {
			r.Err = fmt.Errorf("invalid node type: %x", typ)
		}
	}
	r.CheckTrailing()
	if r.Err != nil {
		return nil, r.Err
	}
	return n, nil
}

func decodeRef(r *io.BinReader) Node {
	switch r.ReadB() {
	case refEmpty:
		return nil
	case refHash:
		var h util.Uint256
		r.ReadBytes(h[:])
		return NewHashNode(h)
	default:
		if r.Err == nil {
			r.Err = errInvalidRef
		}
		return nil
	}
}
