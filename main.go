package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/atlas/cliparse"
	"github.com/danielhkuo/atlas/db"
	"github.com/danielhkuo/atlas/ink"
	"github.com/danielhkuo/atlas/middleware"
	"github.com/danielhkuo/atlas/router"
	"github.com/danielhkuo/atlas/storage"
)

const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real environment variables win
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// run serves the API until ctx is cancelled, then drains in-flight requests
func run(ctx context.Context, cfg cliparse.Config) error {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed (%s): %w", cfg.DatabaseType, err)
	}
	defer conn.Close()

	if err := db.CreateSchema(conn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store, err := storage.New(cfg.StorageDir)
	if err != nil {
		return err
	}

	mux := router.NewRouter(conn, cfg, store, ink.NewCache(cfg.RenderCacheSize))
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           middleware.CORS(cfg.CORSOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Listening", "port", cfg.Port, "storage", store.Dir(), "render_cache", cfg.RenderCacheSize)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "grace", shutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
