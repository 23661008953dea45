package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"

	"github.com/ryanmoran/dockerdev/internal"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	if err := run(os.Args, os.Environ()); err != nil {
		log.Fatal(err)
	}
}

func run(args, env []string) error {
	// Create context with cancellation so external commands stop on a signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	ctx = clog.WithLogger(ctx, clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cleanupMgr := internal.NewCleanupManager()
	defer cleanupMgr.Execute(ctx)

	cmd := newRootCommand(application{
		env:      internal.Environment(env),
		writer:   internal.NewStandardWriter(),
		cleanup:  cleanupMgr,
		logLevel: level,
	})
	cmd.SetArgs(args[1:])

	return cmd.ExecuteContext(ctx)
}
