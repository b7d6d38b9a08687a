package statetrack

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-mpt/pkg/core/mpt"
	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/stretchr/testify/require"
)

func newTestTrie(t *testing.T) *mpt.Trie {
	tr := mpt.NewTrie(nil, mpt.Config{Store: storage.NewMemCachedStore(storage.NewMemoryStore())})
	require.NoError(t, tr.Put([]byte{0x01}, []byte("one")))
	require.NoError(t, tr.Put([]byte{0x02}, []byte("two")))
	return tr
}

func TestOverlay_GetPutDelete(t *testing.T) {
	tr := newTestTrie(t)
	h, err := tr.GetRootHash()
	require.NoError(t, err)

	o := StartTracking(tr)
	require.NoError(t, o.Put([]byte{0x03}, []byte("three")))
	require.NoError(t, o.Put([]byte{0x01}, []byte("uno")))
	require.NoError(t, o.Delete([]byte{0x02}))
	require.Equal(t, 3, o.Len())

	v, err := o.Get([]byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte("uno"), v)
	v, err = o.Get([]byte{0x03})
	require.NoError(t, err)
	require.Equal(t, []byte("three"), v)
	_, err = o.Get([]byte{0x02})
	require.ErrorIs(t, err, mpt.ErrNotFound)
	_, err = o.Get([]byte{0x04})
	require.ErrorIs(t, err, mpt.ErrNotFound)

	// Parent is not touched.
	actual, err := tr.GetRootHash()
	require.NoError(t, err)
	require.Equal(t, h, actual)
	v, err = tr.Get([]byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)

	t.Run("empty value", func(t *testing.T) {
		o := StartTracking(tr)
		require.NoError(t, o.Put([]byte{0x01}, nil))
		_, err := o.Get([]byte{0x01})
		require.ErrorIs(t, err, mpt.ErrNotFound)
	})
	t.Run("limits", func(t *testing.T) {
		o := StartTracking(tr)
		require.ErrorIs(t, o.Put(make([]byte, mpt.MaxKeyLength+1), []byte{1}), mpt.ErrKeyTooLong)
		require.ErrorIs(t, o.Put([]byte{1}, make([]byte, mpt.MaxValueLength+1)), mpt.ErrValueTooLong)
		require.ErrorIs(t, o.Delete(make([]byte, mpt.MaxKeyLength+1)), mpt.ErrKeyTooLong)
		require.Zero(t, o.Len())
	})
}

func TestOverlay_Commit(t *testing.T) {
	tr := newTestTrie(t)
	o := StartTracking(tr)
	require.NoError(t, o.Put([]byte{0x03}, []byte("three")))
	require.NoError(t, o.Put([]byte{0x01}, []byte("uno")))
	require.NoError(t, o.Delete([]byte{0x02}))
	require.NoError(t, o.Delete([]byte{0x07}))
	require.NoError(t, o.Commit())
	require.Zero(t, o.Len())

	expected := mpt.NewTrie(nil, mpt.Config{Store: storage.NewMemoryStore()})
	require.NoError(t, expected.Put([]byte{0x01}, []byte("uno")))
	require.NoError(t, expected.Put([]byte{0x03}, []byte("three")))
	eh, err := expected.GetRootHash()
	require.NoError(t, err)
	h, err := tr.GetRootHash()
	require.NoError(t, err)
	require.Equal(t, eh, h)

	// Reusable after commit.
	require.NoError(t, o.Put([]byte{0x05}, []byte("five")))
	require.NoError(t, o.Commit())
	v, err := tr.Get([]byte{0x05})
	require.NoError(t, err)
	require.Equal(t, []byte("five"), v)
}

func TestOverlay_Discard(t *testing.T) {
	tr := newTestTrie(t)
	h, err := tr.GetRootHash()
	require.NoError(t, err)

	o := StartTracking(tr)
	require.NoError(t, o.Put([]byte{0x03}, []byte("three")))
	require.NoError(t, o.Delete([]byte{0x01}))
	o.Discard()
	require.Zero(t, o.Len())
	require.NoError(t, o.Commit())

	actual, err := tr.GetRootHash()
	require.NoError(t, err)
	require.Equal(t, h, actual)
	v, err := o.Get([]byte{0x01})
	require.NoError(t, err)
	require.Equal(t, []byte("one"), v)
}

func TestOverlay_Nested(t *testing.T) {
	tr := newTestTrie(t)
	outer := StartTracking(tr)
	require.NoError(t, outer.Put([]byte{0x03}, []byte("three")))

	inner := StartTracking(outer)
	v, err := inner.Get([]byte{0x03})
	require.NoError(t, err)
	require.Equal(t, []byte("three"), v)
	require.NoError(t, inner.Delete([]byte{0x03}))
	require.NoError(t, inner.Put([]byte{0x04}, []byte("four")))

	_, err = outer.Get([]byte{0x04})
	require.ErrorIs(t, err, mpt.ErrNotFound)

	require.NoError(t, inner.Commit())
	_, err = outer.Get([]byte{0x03})
	require.ErrorIs(t, err, mpt.ErrNotFound)
	_, err = tr.Get([]byte{0x04})
	require.ErrorIs(t, err, mpt.ErrNotFound)

	require.NoError(t, outer.Commit())
	v, err = tr.Get([]byte{0x04})
	require.NoError(t, err)
	require.Equal(t, []byte("four"), v)
	_, err = tr.Get([]byte{0x03})
	require.ErrorIs(t, err, mpt.ErrNotFound)
}

type orderBackend struct {
	Backend
	ops     []string
	failOn  string
	failErr error
}

func (b *orderBackend) Put(key, value []byte) error {
	if string(key) == b.failOn {
		return b.failErr
	}
	b.ops = append(b.ops, "put "+string(key))
	return nil
}

func (b *orderBackend) Delete(key []byte) error {
	if string(key) == b.failOn {
		return b.failErr
	}
	b.ops = append(b.ops, "del "+string(key))
	return nil
}

func TestOverlay_CommitOrder(t *testing.T) {
	b := &orderBackend{}
	o := StartTracking(b)
	require.NoError(t, o.Put([]byte("c"), []byte{1}))
	require.NoError(t, o.Delete([]byte("a")))
	require.NoError(t, o.Put([]byte("b"), []byte{1}))
	require.NoError(t, o.Commit())
	require.Equal(t, []string{"del a", "put b", "put c"}, b.ops)

	t.Run("failure", func(t *testing.T) {
		errBroken := errors.New("broken")
		b := &orderBackend{failOn: "b", failErr: errBroken}
		o := StartTracking(b)
		require.NoError(t, o.Put([]byte("a"), []byte{1}))
		require.NoError(t, o.Put([]byte("b"), []byte{1}))
		require.NoError(t, o.Put([]byte("c"), []byte{1}))
		require.ErrorIs(t, o.Commit(), errBroken)
		require.Equal(t, []string{"put a"}, b.ops)
		require.Equal(t, 2, o.Len())
	})
}
