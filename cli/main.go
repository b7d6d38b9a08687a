// Command mpt-cli manages a Merkle Patricia Trie kept in a local database.
package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-mpt/cli/app"
)

func main() {
	mpt := app.New()
	err := mpt.Run(os.Args)
	if err == nil {
		return
	}
	fmt.Fprintf(mpt.ErrWriter, "mpt-cli: %s\n", err)
	os.Exit(1)
}
