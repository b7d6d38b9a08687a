package mpt

import (
	"testing"

	"github.com/nspcc-dev/neo-mpt/pkg/crypto/hash"
	"github.com/stretchr/testify/require"
)

func newProofTrie(t *testing.T) *Trie {
	tr := newFilledTrie(t, testPairs)
	_, err := tr.Flush()
	require.NoError(t, err)
	return tr
}

func TestTrie_GetProof(t *testing.T) {
	tr := newProofTrie(t)

	t.Run("MissingKey", func(t *testing.T) {
		_, err := tr.GetProof([]byte{0x12})
		require.ErrorIs(t, err, ErrNotFound)
		_, err = tr.GetProof([]byte{0xAB})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Valid", func(t *testing.T) {
		proof, err := tr.GetProof([]byte{0x01, 0x02, 0x03})
		require.NoError(t, err)
		require.NotEmpty(t, proof)
	})

	t.Run("Dirty", func(t *testing.T) {
		tr := newFilledTrie(t, testPairs)
		proof, err := tr.GetProof([]byte{0xAB, 0xCD})
		require.NoError(t, err)
		h := rootHash(t, tr)
		v, ok := VerifyProof(nil, h, []byte{0xAB, 0xCD}, proof)
		require.True(t, ok)
		require.Equal(t, []byte("f"), v)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := newTestTrie(t).GetProof([]byte{1})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("TooLong", func(t *testing.T) {
		_, err := tr.GetProof(make([]byte, MaxKeyLength+1))
		require.ErrorIs(t, err, ErrKeyTooLong)
	})
}

func TestVerifyProof(t *testing.T) {
	tr := newProofTrie(t)
	h := rootHash(t, tr)

	t.Run("Simple", func(t *testing.T) {
		for _, p := range testPairs {
			proof, err := tr.GetProof(p.key)
			require.NoError(t, err)

			v, ok := VerifyProof(hash.DoubleSha256, h, p.key, proof)
			require.True(t, ok)
			require.Equal(t, p.value, v)
		}
	})

	t.Run("Bad", func(t *testing.T) {
		proof, err := tr.GetProof([]byte{0x01, 0x02})
		require.NoError(t, err)

		t.Run("another key", func(t *testing.T) {
			_, ok := VerifyProof(nil, h, []byte{0x01, 0x03}, proof)
			require.False(t, ok)
		})
		t.Run("missing node", func(t *testing.T) {
			_, ok := VerifyProof(nil, h, []byte{0x01, 0x02}, proof[:len(proof)-1])
			require.False(t, ok)
		})
		t.Run("tampered node", func(t *testing.T) {
			bad := make([][]byte, len(proof))
			copy(bad, proof)
			last := append([]byte{}, bad[len(bad)-1]...)
			last[len(last)-1] ^= 0xFF
			bad[len(bad)-1] = last
			_, ok := VerifyProof(nil, h, []byte{0x01, 0x02}, bad)
			require.False(t, ok)
		})
		t.Run("another hasher", func(t *testing.T) {
			_, ok := VerifyProof(hash.Keccak256, h, []byte{0x01, 0x02}, proof)
			require.False(t, ok)
		})
	})
}
