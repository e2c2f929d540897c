package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"onlinestore/internal/config"
	"onlinestore/internal/db"
	"onlinestore/internal/httpserver"
	"onlinestore/internal/logging"
	orderrepo "onlinestore/internal/repository/order"
	productrepo "onlinestore/internal/repository/product"
	catalogsvc "onlinestore/internal/service/catalog"
	ordersvc "onlinestore/internal/service/order"
	"onlinestore/internal/session"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New("api", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	catalogService := catalogsvc.New(productRepo)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), cfg.CurrencySymbol, logger)

	sessions := session.New(cfg.SessionTTL, cfg.CurrencySymbol, logger)
	stopSweep := make(chan struct{})
	go sessions.Run(cfg.SessionSweep, stopSweep)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:        catalogService,
		Sessions:       sessions,
		Orders:         orderService,
		CurrencySymbol: cfg.CurrencySymbol,
		AllowOrigins:   cfg.CORSAllowOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
