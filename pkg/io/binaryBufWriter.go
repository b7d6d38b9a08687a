package io

import (
	"bytes"
	"errors"
)

// ErrDrained is set as the writer error once Bytes was called.
var ErrDrained = errors.New("buffer already drained")

// BufBinWriter is a BinWriter over its own in-memory buffer.
type BufBinWriter struct {
	*BinWriter
	buf bytes.Buffer
}

// NewBufBinWriter makes a BufBinWriter with an empty buffer.
func NewBufBinWriter() *BufBinWriter {
	bw := new(BufBinWriter)
	bw.BinWriter = NewBinWriterFromIO(&bw.buf)
	return bw
}

// Len returns the number of bytes written so far.
func (bw *BufBinWriter) Len() int {
	return bw.buf.Len()
}

// Bytes returns the written data or nil if any write failed. The writer is
// drained after that and rejects further writes until Reset. The returned
// slice aliases the internal buffer.
func (bw *BufBinWriter) Bytes() []byte {
	if bw.Err != nil {
		return nil
	}
	bw.Err = ErrDrained
	return bw.buf.Bytes()
}

// Reset clears both the buffer and the error so that the writer can be
// reused. Data previously returned by Bytes is overwritten by new writes.
func (bw *BufBinWriter) Reset() {
	bw.Err = nil
	bw.buf.Reset()
}
