package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"onlinestore/internal/config"
	"onlinestore/internal/db"
	"onlinestore/internal/logging"
	"onlinestore/internal/repository/product"
	"onlinestore/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New("seed", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	count, err := seed.Apply(ctx, product.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("products", count))
}
