package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-mpt/cli/app"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// ConfigFile is a path to the config with a persistent DB.
	ConfigFile string
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
}

func newExecutor(t *testing.T) *executor {
	return newExecutorWithDB(t, "leveldb")
}

// newExecutorWithDB creates an executor with a config file using a DB of the
// given type in a temporary directory.
func newExecutorWithDB(t *testing.T, dbType string) *executor {
	d := t.TempDir()
	cfgPath := filepath.Join(d, "mpt.yml")
	cfg := `ApplicationConfiguration:
  LogLevel: error
  LogPath: ` + filepath.Join(d, "mpt.log") + `
  DBConfiguration:
    Type: ` + dbType + `
    LevelDBOptions:
      DataDirectoryPath: ` + filepath.Join(d, "leveldb") + `
    BoltDBOptions:
      FilePath: ` + filepath.Join(d, "mpt.bolt") + `
  Trie:
    CacheSize: 100
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	e := &executor{
		CLI:        app.New(),
		ConfigFile: cfgPath,
		Out:        bytes.NewBuffer(nil),
		Err:        bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	return e
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

// RunWithConfig runs the command using the executor config file.
func (e *executor) RunWithConfig(t *testing.T, cmd ...string) {
	e.Run(t, e.withConfig(cmd)...)
}

// RunWithConfigError runs the command using the executor config file and
// checks that it fails.
func (e *executor) RunWithConfigError(t *testing.T, cmd ...string) {
	e.RunWithError(t, e.withConfig(cmd)...)
}

func (e *executor) withConfig(cmd []string) []string {
	return append([]string{"mpt-cli", "--config-file", e.ConfigFile}, cmd...)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	return e.CLI.Run(args)
}
