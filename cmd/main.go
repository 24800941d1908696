package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

const usage = `usage: %s [command] [flags]

commands:
  serve   run the ledger HTTP server (default)
  submit  send a transaction batch to a server and wait for the block
  chain   print the chain held by a server
  verify  check a snapshot offline

run "%s <command> -h" for the flags of a command
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	name := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if name == "help" {
		fmt.Fprintf(os.Stderr, usage, os.Args[0], os.Args[0])
		return nil
	}
	cfg, err := parseFlags(name, args, os.Stderr)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch name {
	case "serve":
		renderBanner()
		return serve(ctx, cfg, logger)
	case "submit":
		return submit(ctx, cfg)
	case "chain":
		return showChain(ctx, cfg)
	default:
		return verify(cfg, os.Stdin)
	}
}

// newLogger builds the slog logger on top of the pterm logger.
func newLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(pterm.LogLevelDebug)))
	}
	return slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
}
