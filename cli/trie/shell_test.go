package trie

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/nspcc-dev/neo-mpt/pkg/core/mpt"
	"github.com/nspcc-dev/neo-mpt/pkg/core/storage"
	"github.com/stretchr/testify/require"
)

type readCloser struct {
	bytes.Buffer
}

func (readCloser) Close() error {
	return nil
}

// runProg feeds the commands to a new shell over s and returns its output.
// The input is written before the shell is created since readline starts
// reading immediately.
func runProg(t *testing.T, s *session, commands ...string) string {
	in := new(readCloser)
	for _, c := range commands {
		in.WriteString(c + "\n")
	}
	out := bytes.NewBuffer(nil)
	sh, err := newShell(s, &readline.Config{
		Prompt: "",
		Stdin:  in,
		Stdout: out,
		Stderr: out,
		FuncIsTerminal: func() bool {
			return false
		},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- sh.Run()
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.Fail(t, "shell is not finished in time")
	}
	return out.String()
}

func TestShell(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestSession(t, store)

	full := mpt.NewTrie(nil, mpt.Config{Store: storage.NewMemoryStore()})
	require.NoError(t, full.Put([]byte{1, 2}, []byte{0xaa, 0xbb}))
	require.NoError(t, full.Put([]byte{1, 3}, []byte{0xcc}))
	fullRoot, err := full.GetRootHash()
	require.NoError(t, err)

	out := runProg(t, s,
		"put 0x0102 aabb",
		"put 0103 cc",
		"get 0102",
		"root",
		"delete 0102",
		"get 0102",
		"put zz 01",
		`put "01`,
		"",
		"exit",
		"put 01 02",
	)

	require.Contains(t, out, "aabb\n")
	require.Contains(t, out, fullRoot.StringLE()+"\n")
	require.Contains(t, out, "Error: item not found")
	require.Contains(t, out, "Error: invalid key")
	require.Contains(t, out, "Error: failed to parse arguments")

	// Every mutation is committed to the store.
	expected := mpt.NewTrie(nil, mpt.Config{Store: storage.NewMemoryStore()})
	require.NoError(t, expected.Put([]byte{1, 3}, []byte{0xcc}))
	expectedRoot, err := expected.GetRootHash()
	require.NoError(t, err)
	saved, err := mpt.LoadRootHash(store)
	require.NoError(t, err)
	require.Equal(t, expectedRoot, saved)

	// Commands after exit are not executed.
	_, err = s.trie.Get([]byte{1})
	require.ErrorIs(t, err, mpt.ErrNotFound)
}

func TestShellEOF(t *testing.T) {
	s := newTestSession(t, storage.NewMemoryStore())
	runProg(t, s, "put 01 02")

	v, err := s.trie.Get([]byte{1})
	require.NoError(t, err)
	require.Equal(t, []byte{2}, v)
}

func TestCompleter(t *testing.T) {
	var names []string
	for _, c := range completer.GetChildren() {
		names = append(names, strings.TrimSpace(string(c.GetName())))
	}
	for _, c := range []string{"put", "get", "delete", "root", "proof", "verify", "dump", "exit"} {
		require.Contains(t, names, c)
	}
	require.NotContains(t, names, "shell")
}
