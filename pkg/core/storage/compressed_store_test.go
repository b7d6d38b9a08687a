package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newCompressedStoreForTesting(t testing.TB) Store {
	return NewCompressedStore(NewMemoryStore())
}

func TestCompressedStore(t *testing.T) {
	lower := NewMemoryStore()
	s := NewCompressedStore(lower)

	t.Run("compressible", func(t *testing.T) {
		value := bytes.Repeat([]byte{0x42}, 1024)
		require.NoError(t, s.Put([]byte("k1"), value))

		raw, err := lower.Get([]byte("k1"))
		require.NoError(t, err)
		require.Equal(t, lz4Value, raw[0])
		require.Less(t, len(raw), len(value))

		actual, err := s.Get([]byte("k1"))
		require.NoError(t, err)
		require.Equal(t, value, actual)
	})
	t.Run("incompressible", func(t *testing.T) {
		value := []byte{1, 2, 3}
		require.NoError(t, s.Put([]byte("k2"), value))

		raw, err := lower.Get([]byte("k2"))
		require.NoError(t, err)
		require.Equal(t, append([]byte{rawValue}, value...), raw)

		actual, err := s.Get([]byte("k2"))
		require.NoError(t, err)
		require.Equal(t, value, actual)
	})
	t.Run("empty", func(t *testing.T) {
		require.NoError(t, s.Put([]byte("k3"), []byte{}))
		actual, err := s.Get([]byte("k3"))
		require.NoError(t, err)
		require.Equal(t, []byte{}, actual)
	})
	t.Run("invalid", func(t *testing.T) {
		require.NoError(t, lower.Put([]byte("bad"), []byte{0x07, 1}))
		_, err := s.Get([]byte("bad"))
		require.ErrorIs(t, err, errInvalidCompressed)

		require.NoError(t, lower.Put([]byte("bad"), []byte{lz4Value, 0x10, 0xff}))
		_, err = s.Get([]byte("bad"))
		require.ErrorIs(t, err, errInvalidCompressed)

		require.NoError(t, lower.Put([]byte("bad"), []byte{}))
		_, err = s.Get([]byte("bad"))
		require.ErrorIs(t, err, errInvalidCompressed)
	})
}
