package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/BuzzLyutic/taskflow/internal/cli"
)

func main() {
	// Ctrl+C cancels in-flight requests and stops the dispatch loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
