// Command insectopedia answers insect questions from a local encyclopedia.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/cli"
	"github.com/insectopedia/insectopedia/internal/app"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	// API keys are commonly kept in a .env file next to the corpus.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBackendFactory(app.NewBackend)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
