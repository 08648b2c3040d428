package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var (
	// Version is set at build time via ldflags
	// Example: go build -ldflags="-X main.Version=v1.2.3"
	Version = "dev"
)

const (
	defaultConfigPath = "playlistdl.yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, RunnerOpts{})
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, opts RunnerOpts) int {
	r := NewRunner(opts)
	if err := newApp(r).Run(ctx, args); err != nil {
		return r.fail(err)
	}
	return ExitSuccess
}
