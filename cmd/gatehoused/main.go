package main

import (
	"context"
	"os"

	"github.com/avral/gatehouse/internal/auth"
	"github.com/avral/gatehouse/internal/config"
	"github.com/avral/gatehouse/internal/fsx"
	"github.com/avral/gatehouse/internal/logger"
	"github.com/avral/gatehouse/internal/server"
	"github.com/avral/gatehouse/internal/session"
	"github.com/avral/gatehouse/internal/userstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Loading configuration: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Warn("File logging disabled: %v", err)
	}
	defer logger.Close()

	if err := fsx.EnsureDir(cfg.DataDir, 0o755); err != nil {
		logger.Error("Creating data directory %s: %v", cfg.DataDir, err)
		os.Exit(1)
	}

	secret, err := auth.ResolveSecret(cfg.TokenSecret, cfg.SecretFile())
	if err != nil {
		logger.Error("Resolving token secret: %v", err)
		os.Exit(1)
	}

	users, err := userstore.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Opening credential store %s: %v", cfg.DBPath, err)
		os.Exit(1)
	}
	defer func() { _ = users.Close() }()

	if err := users.Initialize(context.Background()); err != nil {
		logger.Error("Initializing credential store: %v", err)
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.SessionFile, session.NewCodec(secret))

	srv := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		Secret:     secret,
		Users:      users,
		Sessions:   sessions,
	})

	logger.Info("gatehouse listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
