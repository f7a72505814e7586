package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/yamaton/condax/cmd/condax"
	"github.com/yamaton/condax/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := condax.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(errors.ExitCode(err))
	}
}

func printError(err error) {
	msg := err.Error()
	fd := os.Stderr.Fd()
	if os.Getenv("NO_COLOR") == "" && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		pterm.Error.WithWriter(os.Stderr).Println(msg)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}
