// Command flashvm is the CLI entry point for the dual-VM core: a thin
// shell around internal/avm1 (VM2 has no standalone program format here,
// so the CLI does not run it) that loads a config file,
// wires up a storage backend, and runs or REPLs a hand-assembled action
// program. SWF tag decoding is out of scope for this module, so "a program"
// here means a file of newline-separated hex
// bytes -- one avm1 DoAction payload -- rather than a .swf; this mirrors
// the role a source-level REPL plays elsewhere in this lineage, adapted to
// the one input shape this core actually consumes.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/flashruntime/corevm/internal/avm1"
	"github.com/flashruntime/corevm/internal/config"
	"github.com/flashruntime/corevm/internal/diag"
	"github.com/flashruntime/corevm/internal/host"
)

const buildVersion = "0.1.0"

func main() {
	app := &cli.Command{
		Name:  "flashvm",
		Usage: "Flash-legacy dual-VM bytecode core",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a flashvm.yaml config file",
			},
		},
		Commands: []*cli.Command{
			runCommand,
			replCommand,
			versionCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "flashvm: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) config.Config {
	path := cmd.String("config")
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashvm: %v, falling back to defaults\n", err)
		return config.Default()
	}
	return cfg
}

// newHostContext builds an ActionContext wired to cfg's storage backend,
// closing over it so callers can defer the returned func to release it.
func newHostContext(cfg config.Config) (*host.Context, func(), error) {
	ctx := host.NewTestContext(cfg.PlayerVersion)
	backend, err := cfg.OpenStorage()
	if err != nil {
		return nil, nil, err
	}
	ctx.Storage = backend
	closer, ok := backend.(interface{ Close() error })
	cleanup := func() {
		if ok {
			_ = closer.Close()
		}
	}
	return ctx, cleanup, nil
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "execute a hex-encoded action program and print its trace output",
	ArgsUsage: "<file>",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.Args().First()
		if path == "" {
			return fmt.Errorf("run requires a file argument")
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		code, err := decodeHexProgram(string(raw))
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}

		cfg := loadConfig(cmd)
		hostCtx, cleanup, err := newHostContext(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sink := diag.NewMultiSink(diag.NewStdlibSink(nil))
		driver := avm1.NewDriver(hostCtx, sink)
		if cfg.OpcodeBudget > 0 {
			driver.SetExecutionBudget(int64(cfg.OpcodeBudget))
		}
		return driver.RunFromNothing(cfg.PlayerVersion, avm1.NewBytecode(code))
	},
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print the flashvm build version",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		fmt.Println(buildVersion)
		return nil
	},
}

var replCommand = &cli.Command{
	Name:  "repl",
	Usage: "read hex-encoded action programs one at a time and execute each against a persistent VM1 state",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		cfg := loadConfig(cmd)
		hostCtx, cleanup, err := newHostContext(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sink := diag.NewMemorySink()
		driver := avm1.NewDriver(hostCtx, sink)
		if cfg.OpcodeBudget > 0 {
			driver.SetExecutionBudget(int64(cfg.OpcodeBudget))
		}

		if isatty.IsTerminal(os.Stdin.Fd()) {
			return runInteractive(driver, sink, cfg.PlayerVersion)
		}
		return runBatched(driver, sink, cfg.PlayerVersion)
	},
}

// runInteractive attaches a line-edited prompt (history, arrow-key
// recall) when stdin is a real terminal, the way an interactive ">"
// prompt only makes sense when a human is typing into it.
func runInteractive(driver *avm1.Driver, sink *diag.MemorySink, version uint8) error {
	rl, err := readline.New("flashvm > ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		evalLine(driver, sink, version, line)
	}
}

// runBatched reads one hex program per line from stdin without attaching a
// line editor, for piped/scripted invocations.
func runBatched(driver *avm1.Driver, sink *diag.MemorySink, version uint8) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		evalLine(driver, sink, version, line)
	}
	return scanner.Err()
}

func evalLine(driver *avm1.Driver, sink *diag.MemorySink, version uint8, line string) {
	code, err := decodeHexProgram(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flashvm: %v\n", err)
		return
	}
	before := len(sink.Lines())
	if err := driver.RunFromNothing(version, avm1.NewBytecode(code)); err != nil {
		fmt.Fprintf(os.Stderr, "flashvm: %v\n", err)
	}
	for _, l := range sink.Lines()[before:] {
		fmt.Println(l)
	}
}

// decodeHexProgram accepts either a single hex blob or whitespace-separated
// hex bytes, matching whatever a quick handwritten fixture happens to use.
func decodeHexProgram(src string) ([]byte, error) {
	src = strings.Join(strings.Fields(src), "")
	if src == "" {
		return nil, fmt.Errorf("empty program")
	}
	return hex.DecodeString(src)
}
