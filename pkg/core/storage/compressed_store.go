package storage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-mpt/pkg/io"
	"github.com/pierrec/lz4"
)

// Value markers used by CompressedStore.
const (
	rawValue byte = 0x00
	lz4Value byte = 0x01
)

// maxUncompressedSize limits the size of a decompressed value.
const maxUncompressedSize = 1 << 24

var errInvalidCompressed = errors.New("invalid compressed value")

// CompressedStore is a Store wrapper that compresses values with lz4 before
// passing them to the lower store. Values that don't shrink are stored as is,
// so every stored value is prefixed with a one-byte marker.
type CompressedStore struct {
	ps Store
}

// NewCompressedStore wraps lower into a CompressedStore.
func NewCompressedStore(lower Store) *CompressedStore {
	return &CompressedStore{ps: lower}
}

// Get implements the Store interface.
func (s *CompressedStore) Get(key []byte) ([]byte, error) {
	v, err := s.ps.Get(key)
	if err != nil {
		return nil, err
	}
	return decompress(v)
}

// Put implements the Store interface.
func (s *CompressedStore) Put(key, value []byte) error {
	return s.ps.Put(key, compress(value))
}

// Delete implements the Store interface.
func (s *CompressedStore) Delete(key []byte) error {
	return s.ps.Delete(key)
}

// PutChangeSet implements the Store interface.
func (s *CompressedStore) PutChangeSet(puts map[string][]byte) error {
	cs := make(map[string][]byte, len(puts))
	for k, v := range puts {
		if v != nil {
			v = compress(v)
		}
		cs[k] = v
	}
	return s.ps.PutChangeSet(cs)
}

// Close implements the Store interface.
func (s *CompressedStore) Close() error {
	return s.ps.Close()
}

// compress compresses bytes using lz4 falling back to raw representation for
// incompressible data.
func compress(source []byte) []byte {
	dest := make([]byte, 1+io.MaxVarUintSize+lz4.CompressBlockBound(len(source)))
	dest[0] = lz4Value
	n := 1 + io.PutVarUint(dest[1:], uint64(len(source)))
	size, err := lz4.CompressBlock(source, dest[n:], nil)
	if err != nil || size == 0 || n+size >= 1+len(source) {
		res := make([]byte, 1+len(source))
		res[0] = rawValue
		copy(res[1:], source)
		return res
	}
	return dest[:n+size]
}

// decompress restores bytes compressed by compress.
func decompress(source []byte) ([]byte, error) {
	if len(source) == 0 {
		return nil, errInvalidCompressed
	}
	switch source[0] {
	case rawValue:
		res := make([]byte, len(source)-1)
		copy(res, source[1:])
		return res, nil
	case lz4Value:
		r := io.NewBinReaderFromBuf(source[1:])
		length := r.ReadVarUint()
		if r.Err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidCompressed, r.Err)
		}
		if length > maxUncompressedSize {
			return nil, fmt.Errorf("%w: value is too big (%d)", errInvalidCompressed, length)
		}
		data := source[len(source)-r.Len():]
		dest := make([]byte, length)
		size, err := lz4.UncompressBlock(data, dest)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidCompressed, err)
		}
		if uint64(size) != length {
			return nil, fmt.Errorf("%w: length mismatch", errInvalidCompressed)
		}
		return dest, nil
	default:
		return nil, fmt.Errorf("%w: unknown marker %d", errInvalidCompressed, source[0])
	}
}
