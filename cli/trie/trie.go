package trie

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nspcc-dev/neo-mpt/cli/options"
	"github.com/nspcc-dev/neo-mpt/pkg/core/mpt"
	"github.com/nspcc-dev/neo-mpt/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// KVPair represents a key-value pair of the dump.
type KVPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const sessionKey = "session"

var errMissingArg = errors.New("missing argument")

// trieCommands are usable both from the command line and from the shell.
var trieCommands = []cli.Command{
	{
		Name:      "put",
		Usage:     "Put a value into the trie",
		UsageText: "put KEY VALUE",
		Description: `Puts VALUE under KEY, both are hex strings (0x prefix is optional).
   An empty VALUE deletes the KEY.`,
		Action: withSession(true, handlePut),
	},
	{
		Name:      "get",
		Usage:     "Get a value from the trie",
		UsageText: "get KEY",
		Action:    withSession(false, handleGet),
	},
	{
		Name:      "delete",
		Usage:     "Delete a key from the trie",
		UsageText: "delete KEY",
		Action:    withSession(true, handleDelete),
	},
	{
		Name:      "root",
		Usage:     "Print the current root hash",
		UsageText: "root",
		Action:    withSession(false, handleRoot),
	},
	{
		Name:      "proof",
		Usage:     "Print the inclusion proof for a key",
		UsageText: "proof KEY",
		Description: `Prints hex-encoded nodes on the path from the root to KEY, one per
   line. They can be checked with the 'verify' command.`,
		Action: withSession(false, handleProof),
	},
	{
		Name:      "verify",
		Usage:     "Verify an inclusion proof",
		UsageText: "verify ROOT KEY NODE...",
		Action:    withSession(false, handleVerify),
	},
	{
		Name:      "dump",
		Usage:     "Dump all key-value pairs as JSON",
		UsageText: "dump [--out file]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "out, o",
				Usage: "Output file (stdout if not given)",
			},
		},
		Action: withSession(false, handleDump),
	},
}

// NewCommands returns trie-related commands.
func NewCommands() []cli.Command {
	cmds := make([]cli.Command, 0, len(trieCommands)+1)
	for _, c := range trieCommands {
		c.Flags = append(c.Flags, options.Config...)
		cmds = append(cmds, c)
	}
	shell := cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive trie shell",
		Action: startShell,
		Flags:  options.Config,
	}
	return append(cmds, shell)
}

// withSession runs f against the shell session if there is one or against a
// newly opened session otherwise. Mutating commands commit on success.
func withSession(mutating bool, f func(*cli.Context, *session) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if s, ok := ctx.App.Metadata[sessionKey].(*session); ok {
			return runInSession(ctx, s, mutating, f)
		}

		cfg, err := options.GetConfigFromContext(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		log, err := options.HandleLoggingParams(options.IsDebug(ctx), cfg.ApplicationConfiguration)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer func() { _ = log.Sync() }()

		s, err := newSession(cfg.ApplicationConfiguration, log)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer func() {
			if err := s.close(); err != nil {
				log.Error("failed to close DB", zap.Error(err))
			}
		}()
		if err := runInSession(ctx, s, mutating, f); err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	}
}

func runInSession(ctx *cli.Context, s *session, mutating bool, f func(*cli.Context, *session) error) error {
	err := f(ctx, s)
	if mutating {
		if err == nil {
			err = s.commit()
		}
		if err != nil {
			if rerr := s.rollback(); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
	}
	return err
}

func handlePut(ctx *cli.Context, s *session) error {
	args := ctx.Args()
	if len(args) < 2 {
		return fmt.Errorf("%w: KEY and VALUE are required", errMissingArg)
	}
	key, err := parseHex(args[0])
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	value, err := parseHex(args[1])
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	return s.trie.Put(key, value)
}

func handleGet(ctx *cli.Context, s *session) error {
	key, err := keyArg(ctx)
	if err != nil {
		return err
	}
	value, err := s.trie.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(value))
	return nil
}

func handleDelete(ctx *cli.Context, s *session) error {
	key, err := keyArg(ctx)
	if err != nil {
		return err
	}
	return s.trie.Delete(key)
}

func handleRoot(ctx *cli.Context, s *session) error {
	h, err := s.trie.GetRootHash()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, h.StringLE())
	return nil
}

func handleProof(ctx *cli.Context, s *session) error {
	key, err := keyArg(ctx)
	if err != nil {
		return err
	}
	proof, err := s.trie.GetProof(key)
	if err != nil {
		return err
	}
	for _, p := range proof {
		fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(p))
	}
	return nil
}

func handleVerify(ctx *cli.Context, s *session) error {
	args := ctx.Args()
	if len(args) < 3 {
		return fmt.Errorf("%w: ROOT, KEY and at least one NODE are required", errMissingArg)
	}
	root, err := util.Uint256DecodeStringLE(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	key, err := parseHex(args[1])
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	proof := make([][]byte, 0, len(args)-2)
	for _, a := range args[2:] {
		p, err := parseHex(a)
		if err != nil {
			return fmt.Errorf("invalid proof node: %w", err)
		}
		proof = append(proof, p)
	}
	value, ok := mpt.VerifyProof(s.hasher, root, key, proof)
	if !ok {
		return errors.New("proof is invalid")
	}
	fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(value))
	return nil
}

func handleDump(ctx *cli.Context, s *session) error {
	w := ctx.App.Writer
	if out := ctx.String("out"); out != "" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("error creating file: %w", err)
		}
		defer file.Close()
		w = file
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	var encErr error
	err := s.trie.ForEach(func(k, v []byte) bool {
		encErr = encoder.Encode(KVPair{
			Key:   hex.EncodeToString(k),
			Value: hex.EncodeToString(v),
		})
		return encErr == nil
	})
	if err != nil {
		return err
	}
	return encErr
}

func keyArg(ctx *cli.Context) ([]byte, error) {
	if !ctx.Args().Present() {
		return nil, fmt.Errorf("%w: KEY is required", errMissingArg)
	}
	key, err := parseHex(ctx.Args().First())
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return key, nil
}

// parseHex decodes a hex string with an optional 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
