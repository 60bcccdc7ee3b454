package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/library-circulation/internal/cli"
	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/logging"
	"github.com/segyhp/library-circulation/internal/platform"
	"github.com/segyhp/library-circulation/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)

	store, closeStore, err := sessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cli.Deps{Config: cfg, Store: store, Logger: logger})
	if err := cli.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		closeStore()
		os.Exit(1)
	}
}

func sessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.Client.SessionStore == config.SessionStoreRedis {
		client, err := platform.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		profile := os.Getenv("USER")
		if profile == "" {
			profile = "default"
		}
		return session.NewRedisStore(client, profile), func() { _ = client.Close() }, nil
	}

	path := cfg.Client.SessionFile
	if path == "" {
		p, err := session.DefaultFilePath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	return session.NewFileStore(path), func() {}, nil
}
