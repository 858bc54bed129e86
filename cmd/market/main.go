package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/nexus_market/internal/config"
	"github.com/Skotchmaster/nexus_market/internal/events"
	"github.com/Skotchmaster/nexus_market/internal/httpserver"
	"github.com/Skotchmaster/nexus_market/internal/imageresolver"
	"github.com/Skotchmaster/nexus_market/internal/repo"
	"github.com/Skotchmaster/nexus_market/internal/search"
	"github.com/Skotchmaster/nexus_market/internal/service"
	pkgdb "github.com/Skotchmaster/nexus_market/pkg/db"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	guard, err := service.NewAdminGuard(cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("admin guard: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)

	var index service.ProductIndex
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	es, err := search.NewClient(ctx, search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
	})
	cancel()
	switch {
	case err != nil:
		logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
	case es != nil:
		index = search.NewIndex(es, cfg.ESIndex)
	}

	repo := &repo.GormRepo{DB: db}
	resolver := imageresolver.New(imageresolver.Config{
		Timeout:      cfg.ImageResolveTimeout,
		MaxBodyBytes: cfg.ImageMaxBodyBytes,
	})

	e := httpserver.New(logger, cfg.AllowedOrigins)
	httpserver.Register(e, &httpserver.Deps{
		AccountHandler: &httpserver.AccountHTTP{Svc: &service.AccountService{
			Repo:      repo,
			Events:    producer,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.TokenTTL,
		}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:     repo,
			Guard:    guard,
			Resolver: resolver,
			Events:   producer,
			Index:    index,
		}},
		Ready:     func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
		StaticDir: cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if err := producer.Close(); err != nil {
		logger.Warn("producer_close_error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}
