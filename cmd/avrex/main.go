package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/usestring/avrex/internal/cli"
	"github.com/usestring/avrex/internal/config"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load .env file if it exists; variables already set in the environment win
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	// Configuration is loaded from environment variables:
	// - AV_USERNAME, AV_PASSWORD, AV_URL: portal credentials
	// - HTTP_CLIENT_TIMEOUT_MS, AV_USER_AGENT: HTTP settings
	// - LOG_LEVEL, LOG_FILE, ...: logging (see internal/config)
	app, root := cli.New(config.Load())

	err := root.ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error: closing log:", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
