package mpt

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/io"
)

// Flag bits of the compact key encoding. They're stored in the high nibble
// of the first encoded byte.
const (
	oddFlag      = 0x1
	terminalFlag = 0x2
)

var errInvalidKey = errors.New("invalid compact key")

// Key is an immutable path in the trie: a sequence of nibbles plus a
// terminal flag which tells whether the value is stored right at the end of
// the path. All operations return new keys, the underlying nibbles are never
// changed after creation so they can be shared safely.
type Key struct {
	nibbles  []byte
	terminal bool
}

// NewKey creates a non-terminal key from the byte path, each byte is split
// into two nibbles with the high one going first.
func NewKey(path []byte) Key {
	return Key{nibbles: toNibbles(path)}
}

// SingleNibbleKey returns a non-terminal key consisting of exactly one nibble.
func SingleNibbleKey(n byte) Key {
	if n >= childrenCount {
		panic(fmt.Sprintf("invalid nibble: %d", n))
	}
	return Key{nibbles: []byte{n}}
}

// TerminalKey returns an empty terminal key, the one pointing to the value
// stored right at the current position.
func TerminalKey() Key {
	return Key{terminal: true}
}

// Len returns the number of nibbles in the key.
func (k Key) Len() int {
	return len(k.nibbles)
}

// IsEmpty checks whether the key has no nibbles. Terminal flag is not taken
// into account.
func (k Key) IsEmpty() bool {
	return len(k.nibbles) == 0
}

// IsTerminal returns true if the key points to a value.
func (k Key) IsTerminal() bool {
	return k.terminal
}

// At returns the i-th nibble of the key.
func (k Key) At(i int) byte {
	return k.nibbles[i]
}

// Shift returns the key without the first n nibbles, the terminal flag is
// preserved.
func (k Key) Shift(n int) Key {
	return Key{nibbles: k.nibbles[n:], terminal: k.terminal}
}

// WithTerminal returns a copy of the key with the terminal flag set to t.
func (k Key) WithTerminal(t bool) Key {
	return Key{nibbles: k.nibbles, terminal: t}
}

// MatchAndShift consumes prefix from k. It returns the remaining suffix of k
// and true if prefix nibbles are a prefix of k, otherwise an empty key and
// false are returned.
func (k Key) MatchAndShift(prefix Key) (Key, bool) {
	if len(prefix.nibbles) > len(k.nibbles) {
		return Key{}, false
	}
	for i := range prefix.nibbles {
		if k.nibbles[i] != prefix.nibbles[i] {
			return Key{}, false
		}
	}
	return k.Shift(len(prefix.nibbles)), true
}

// CommonPrefix returns the longest non-terminal key that is a prefix of both
// k and other.
func (k Key) CommonPrefix(other Key) Key {
	var i int
	for i < len(k.nibbles) && i < len(other.nibbles) && k.nibbles[i] == other.nibbles[i] {
		i++
	}
	return Key{nibbles: k.nibbles[:i]}
}

// Concat returns the key made of k nibbles followed by other nibbles. The
// terminal flag is taken from other.
func (k Key) Concat(other Key) Key {
	res := make([]byte, len(k.nibbles)+len(other.nibbles))
	copy(res, k.nibbles)
	copy(res[len(k.nibbles):], other.nibbles)
	return Key{nibbles: res, terminal: other.terminal}
}

// Equals checks whether both keys have the same nibbles and terminal flag.
func (k Key) Equals(other Key) bool {
	if k.terminal != other.terminal || len(k.nibbles) != len(other.nibbles) {
		return false
	}
	for i := range k.nibbles {
		if k.nibbles[i] != other.nibbles[i] {
			return false
		}
	}
	return true
}

// Bytes packs key nibbles back into bytes. For odd-length keys the last
// nibble occupies the high half of the last byte.
func (k Key) Bytes() []byte {
	return fromNibbles(k.nibbles)
}

// String implements fmt.Stringer.
func (k Key) String() string {
	const digits = "0123456789abcdef"
	res := make([]byte, 0, len(k.nibbles)+2)
	for _, n := range k.nibbles {
		res = append(res, digits[n])
	}
	if k.terminal {
		res = append(res, '.', 't')
	}
	return string(res)
}

// EncodeBinary implements io.Serializable. The key is written in the compact
// form: the flag nibble (terminal<<1 | odd) followed by the first nibble for
// odd keys or by a zero nibble for even ones, then the rest of nibbles packed
// in pairs. The result is prefixed with its length.
func (k Key) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(k.compact())
}

// DecodeBinary implements io.Serializable.
func (k *Key) DecodeBinary(r *io.BinReader) {
	data := r.ReadVarBytes(MaxKeyLength + 1)
	if r.Err != nil {
		return
	}
	res, err := keyFromCompact(data)
	if err != nil {
		r.Err = err
		return
	}
	*k = res
}

func (k Key) compact() []byte {
	var flags byte
	if k.terminal {
		flags |= terminalFlag
	}
	res := make([]byte, len(k.nibbles)/2+1)
	nibbles := k.nibbles
	if len(nibbles)%2 == 1 {
		flags |= oddFlag
		res[0] = flags<<4 | nibbles[0]
		nibbles = nibbles[1:]
	} else {
		res[0] = flags << 4
	}
	for i := 0; i < len(nibbles); i += 2 {
		res[1+i/2] = nibbles[i]<<4 | nibbles[i+1]
	}
	return res
}

func keyFromCompact(data []byte) (Key, error) {
	if len(data) == 0 {
		return Key{}, fmt.Errorf("%w: no flags", errInvalidKey)
	}
	flags := data[0] >> 4
	if flags > (terminalFlag | oddFlag) {
		return Key{}, fmt.Errorf("%w: bad flags %x", errInvalidKey, flags)
	}
	var nibbles []byte
	if flags&oddFlag != 0 {
		nibbles = make([]byte, 0, 2*len(data)-1)
		nibbles = append(nibbles, data[0]&0x0f)
	} else {
		if data[0]&0x0f != 0 {
			return Key{}, fmt.Errorf("%w: non-zero padding", errInvalidKey)
		}
		nibbles = make([]byte, 0, 2*len(data)-2)
	}
	for _, b := range data[1:] {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	return Key{nibbles: nibbles, terminal: flags&terminalFlag != 0}, nil
}

// toNibbles mangles path by splitting every byte into 2 nibbles.
func toNibbles(path []byte) []byte {
	result := make([]byte, len(path)*2)
	for i := range path {
		result[i*2] = path[i] >> 4
		result[i*2+1] = path[i] & 0x0F
	}
	return result
}

// fromNibbles performs an operation opposite to toNibbles.
func fromNibbles(path []byte) []byte {
	result := make([]byte, (len(path)+1)/2)
	for i := range path {
		if i%2 == 0 {
			result[i/2] = path[i] << 4
		} else {
			result[i/2] |= path[i]
		}
	}
	return result
}
