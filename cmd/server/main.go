package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/backend"
	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core"
	"github.com/agenthands/synapse/internal/logging"
	"github.com/agenthands/synapse/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	b, err := backend.Open(ctx, cfg, nil, logger)
	if err != nil {
		logger.Fatal("failed to open backends", zap.Error(err))
	}
	defer b.Close(ctx)

	if b.Store != nil {
		if err := b.Store.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build indices", zap.Error(err))
		}
	}

	analyzer := core.NewAnalyzer(b.Synapses, b.Connectors, b.Realigner, cfg, logger)
	srv := server.NewServer(analyzer, logger.Named("http"))
	r := srv.SetupRouter()

	logger.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("synapses", cfg.Backend.Synapses),
		zap.String("connectors", cfg.Backend.Connectors))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
