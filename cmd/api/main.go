package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync"

	"github.com/i-christian/fileDrop/internal/config"
	"github.com/i-christian/fileDrop/internal/filestore"
	"github.com/i-christian/fileDrop/internal/vcs"
	_ "github.com/joho/godotenv/autoload"
)

type application struct {
	config  config.Config
	version string
	logger  *slog.Logger
	store   filestore.FileStorage
	wg      sync.WaitGroup
}

func newLogger(env string) *slog.Logger {
	if env == config.EnvTesting {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	store, err := filestore.New(context.Background(), cfg.FileStore())
	if err != nil {
		logger.Error("failed to initialise file storage", "type", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	logger.Info("initialised file storage", "type", cfg.Storage.Type, "location", store.Location())

	app := &application{
		config:  cfg,
		version: vcs.Version(),
		logger:  logger,
		store:   store,
	}

	if err := app.serve(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
