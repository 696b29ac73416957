package main

import (
	"log/slog"
	"os"

	"github.com/embedded-ossdev/barbican/internal/cli"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("BARBICAN_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(cli.GetExitCode(err))
	}
}
