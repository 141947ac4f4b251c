package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"tookjai-pos/internal/config"
	"tookjai-pos/internal/database"
	"tookjai-pos/internal/logger"
	"tookjai-pos/internal/printer"
	"tookjai-pos/internal/render"
	"tookjai-pos/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight settlements get 30 seconds to finish printing
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func newRenderer(cfg *config.Config, log *zap.Logger) (*render.Renderer, error) {
	logo, err := render.LoadLogo(cfg.Render.LogoPath)
	if err != nil {
		log.Warn("Receipt logo not loaded", zap.String("path", cfg.Render.LogoPath), zap.Error(err))
		logo = nil
	}

	renderer, err := render.New(render.Options{
		FontPaths: cfg.Render.FontPaths,
		FontSize:  cfg.Render.FontSize,
		Logo:      logo,
		Location:  cfg.Shop.Location(),
	})
	if err != nil {
		return nil, err
	}

	log.Info("Renderer ready", zap.String("font", renderer.FontName()))
	return renderer, nil
}

func newRedisClient(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("Redis disabled, print routes are not rate limited")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting fails open until it recovers", zap.Error(err))
	}

	return client
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting POS API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("printer", cfg.Printer.Address),
	)

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if version, err := database.MigrationVersion(context.Background(), dbService.DB()); err == nil {
		log.Info("Database schema ready", zap.Int64("version", version))
	}

	renderer, err := newRenderer(cfg, log)
	if errors.Is(err, render.ErrFontUnavailable) {
		log.Fatal("No usable Thai font found", zap.Strings("candidates", cfg.Render.FontPaths), zap.Error(err))
	} else if err != nil {
		log.Fatal("Failed to initialize renderer", zap.Error(err))
	}

	artifacts, err := printer.OpenBlobArtifactStore(context.Background(), cfg.Artifacts.BucketURL)
	if err != nil {
		log.Fatal("Failed to open receipt artifact store", zap.String("url", cfg.Artifacts.BucketURL), zap.Error(err))
	}

	srv := server.NewServer(cfg, log, server.Dependencies{
		Database:  dbService,
		Renderer:  renderer,
		Printer:   printer.NewNetworkPrinter(cfg.Printer, logger.Component(log, "printer")),
		Artifacts: artifacts,
		Redis:     newRedisClient(cfg.Redis, log),
	})

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
