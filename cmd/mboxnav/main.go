package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/randelsr/mbox-navigator/cmd/mboxnav/cmd"
)

// Exit codes follow shell convention: 130 is 128 + SIGINT.
const (
	exitErr         = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx)
	stop()
	os.Exit(code)
}

func run(ctx context.Context) int {
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled:
		return exitInterrupted
	default:
		return exitErr
	}
}
