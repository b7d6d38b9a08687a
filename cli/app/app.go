package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/neo-mpt/cli/options"
	"github.com/nspcc-dev/neo-mpt/cli/trie"
	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "mpt-cli\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an mpt-cli instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "mpt-cli"
	ctl.Version = config.Version
	ctl.Usage = "Merkle Patricia Trie storage tool"
	ctl.ErrWriter = os.Stdout
	ctl.Flags = options.Config

	ctl.Commands = append(ctl.Commands, trie.NewCommands()...)
	return ctl
}
