package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/docstream/internal/config"
	"github.com/jacoelho/docstream/internal/logging"
	"github.com/jacoelho/docstream/internal/runner"
)

func main() {
	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	logger := logging.New(os.Stderr, cfg.Debug)
	defer func() { _ = logger.Sync() }()

	stdout := bufio.NewWriter(os.Stdout)
	defer stdout.Flush()

	r, exitResult := runner.New(cfg, logger, os.Stdin, stdout, os.Stderr)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
