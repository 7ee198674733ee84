// atconsole runs the command interpreter against your own terminal
// instead of a serial channel. It is the quickest way to poke at the
// grammar: type AT command lines, see the rendered responses a host
// would receive.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"go.uber.org/zap"

	"github.com/collab-project/atcmd/at"
	"github.com/collab-project/atcmd/commands"
	"github.com/collab-project/atcmd/registers"
)

func main() {
	dbPath := flag.String("db-path", defaultPath("atconsole.db"), "Path to the profile database")
	pin := flag.String("sim-pin", "", "PIN the simulated SIM accepts (empty leaves it unlocked)")
	strict := flag.Bool("strict", false, "Reject bare '=' SET commands")
	verbose := flag.Bool("verbose", false, "Enable debug logging to stderr")
	flag.Parse()

	if err := run(*dbPath, *pin, *strict, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "atconsole: %v\n", err)
		os.Exit(1)
	}
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, "."+name)
}

func run(dbPath, pin string, strict, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	store, err := registers.Open(dbPath, logger.Named("registers"))
	if err != nil {
		return err
	}
	defer store.Close()

	registry := at.NewRegistry()
	set := &commands.Set{
		Device: commands.Device{
			Manufacturer: "collab",
			Model:        "atconsole",
			Revision:     "dev",
		},
		Store:  store,
		Logger: logger.Named("commands"),
		PIN:    pin,
	}
	if err := set.Attach(registry); err != nil {
		return err
	}

	dispatcher := at.NewDispatcher(registry, at.Options{
		StrictEmptySet: strict,
		Unsolicited: func(line string) {
			fmt.Printf("?? %s\n", line)
		},
	})

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:       "AT> ",
		HistoryFile:  defaultPath("atconsole_history"),
		HistoryLimit: 500,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("atconsole: type AT command lines, Ctrl-D to quit")

	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		display(dispatcher.HandleRendered(ctx, line))
	}
}

// display shows each rendered line with a marker for its kind, so data
// lines stand apart from the final result codes.
func display(rendered string) {
	for _, line := range strings.Split(rendered, at.CRLF) {
		if line == "" {
			continue
		}
		switch at.Classify(line) {
		case at.TypeFinal:
			fmt.Printf("<< %s\n", line)
		case at.TypeURC:
			fmt.Printf("** %s\n", line)
		default:
			fmt.Printf("   %s\n", line)
		}
	}
}
