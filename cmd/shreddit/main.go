package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newCLIApp(newRedditAccount)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorPrefix(os.Stderr), err)
		stop()
		os.Exit(1)
	}
}

// errorPrefix returns "error:", in bold red when f is a terminal.
func errorPrefix(f *os.File) string {
	if !isatty.IsTerminal(f.Fd()) {
		return "error:"
	}
	c := color.New(color.FgRed, color.Bold)
	c.EnableColor()
	return c.Sprint("error:")
}
