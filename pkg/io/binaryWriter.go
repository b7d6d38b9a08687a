package io

import (
	"encoding/binary"
	"io"
)

// Varint prefixes announcing a wider integer following the first byte.
const (
	varUint16Prefix = 0xfd
	varUint32Prefix = 0xfe
	varUint64Prefix = 0xff
)

// MaxVarUintSize is the number of bytes the largest varint takes.
const MaxVarUintSize = 9

// BinWriter writes little-endian binary data to an io.Writer. The first
// failure is kept in Err and all subsequent writes become no-ops, so a
// sequence of writes needs a single error check at the end.
type BinWriter struct {
	w   io.Writer
	Err error
	buf [MaxVarUintSize]byte
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteB writes a single byte.
func (w *BinWriter) WriteB(b byte) {
	w.buf[0] = b
	w.WriteBytes(w.buf[:1])
}

// WriteVarUint writes val in the varint form, see PutVarUint.
func (w *BinWriter) WriteVarUint(val uint64) {
	if w.Err != nil {
		return
	}
	w.WriteBytes(w.buf[:PutVarUint(w.buf[:], val)])
}

// PutVarUint encodes val into data which must be at least MaxVarUintSize
// long and returns the number of bytes used. Values below 0xfd take one byte,
// larger ones get a prefix byte followed by a 2, 4 or 8 byte integer.
func PutVarUint(data []byte, val uint64) int {
	_ = data[MaxVarUintSize-1]
	switch {
	case val < varUint16Prefix:
		data[0] = byte(val)
		return 1
	case val < 0xffff:
		data[0] = varUint16Prefix
		binary.LittleEndian.PutUint16(data[1:], uint16(val))
		return 3
	case val < 0xffffffff:
		data[0] = varUint32Prefix
		binary.LittleEndian.PutUint32(data[1:], uint32(val))
		return 5
	default:
		data[0] = varUint64Prefix
		binary.LittleEndian.PutUint64(data[1:], val)
		return MaxVarUintSize
	}
}

// WriteBytes writes b as is, with no length prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes b prefixed with its varint-encoded length.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}
