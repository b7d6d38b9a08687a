package trie

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/nspcc-dev/neo-mpt/cli/options"
	"github.com/nspcc-dev/neo-mpt/pkg/config"
	"github.com/nspcc-dev/neo-mpt/pkg/services/metrics"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

const (
	readlineInstanceKey = "readlineKey"
	exitKey             = "exit"
)

var shellCommands = append(trieCommands[:len(trieCommands):len(trieCommands)],
	cli.Command{
		Name:   "exit",
		Usage:  "Exit the shell",
		Action: handleExit,
	},
)

var completer *readline.PrefixCompleter

func init() {
	var pcItems []readline.PrefixCompleterInterface
	for _, c := range shellCommands {
		var flagsItems []readline.PrefixCompleterInterface
		for _, f := range c.Flags {
			names := strings.SplitN(f.GetName(), ", ", 2) // only long name will be offered
			flagsItems = append(flagsItems, readline.PcItem("--"+names[0]))
		}
		pcItems = append(pcItems, readline.PcItem(c.Name, flagsItems...))
	}
	completer = readline.NewPrefixCompleter(pcItems...)
}

// Shell is an interactive trie shell, all commands work with the same open
// trie.
type Shell struct {
	shell *cli.App
}

func newShell(s *session, c *readline.Config) (*Shell, error) {
	if c.AutoComplete == nil {
		// Autocomplete commands/flags on TAB.
		c.AutoComplete = completer
	}
	l, err := readline.NewEx(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	ctl := cli.NewApp()
	ctl.Name = "MPT shell"

	// Empty HelpName and UsageText are needed, otherwise the binary name is
	// used in the help output.
	ctl.HelpName = ""
	ctl.UsageText = ""

	ctl.Writer = l.Stdout()
	ctl.ErrWriter = l.Stderr()
	ctl.Version = config.Version
	ctl.Usage = "Interactive MPT shell"

	// Override default error handler in order not to exit on error.
	ctl.ExitErrHandler = func(context *cli.Context, err error) {}

	ctl.Commands = shellCommands
	ctl.Metadata = map[string]any{
		sessionKey:          s,
		readlineInstanceKey: l,
		exitKey:             false,
	}
	return &Shell{shell: ctl}, nil
}

func getReadlineInstanceFromContext(app *cli.App) *readline.Instance {
	return app.Metadata[readlineInstanceKey].(*readline.Instance)
}

func handleExit(c *cli.Context) error {
	c.App.Metadata[exitKey] = true
	return nil
}

// Run waits for user input from Stdin and executes the passed command.
func (c *Shell) Run() error {
	l := getReadlineInstanceFromContext(c.shell)
	defer l.Close()
	for !c.shell.Metadata[exitKey].(bool) {
		line, err := l.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil // OK, stop execution.
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err) // Critical error, stop execution.
		}

		args, err := shellquote.Split(line)
		if err != nil {
			writeErr(c.shell.ErrWriter, fmt.Errorf("failed to parse arguments: %w", err))
			continue // Not a critical error, continue execution.
		}
		if len(args) == 0 {
			continue
		}

		err = c.shell.Run(append([]string{"mpt"}, args...))
		if err != nil {
			writeErr(c.shell.ErrWriter, err) // Various command/flags parsing errors and execution errors.
		}
	}
	return nil
}

func writeErr(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}

func startShell(ctx *cli.Context) error {
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

	services := []*metrics.Service{
		metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log),
		metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log),
	}
	for _, srv := range services {
		if err := srv.Start(); err != nil {
			return cli.NewExitError(err, 1)
		}
		defer srv.ShutDown()
	}

	sh, err := newShell(s, &readline.Config{Prompt: "\033[32mmpt>\033[0m "})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := sh.Run(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}
