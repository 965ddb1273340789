/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the KPI scoring server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, then .env)
  2. Open the configured fact store (sqlite, postgres or memory)
  3. Build the engine and apply TEMPLATES_FILE overrides
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  See config/config.go for every key. Common ones:
    PORT=8080 STORE_DRIVER=sqlite SQLITE_PATH=kpi.db
    STORE_DRIVER=postgres DATABASE_URL=postgres://...
    TEMPLATES_FILE=./templates.json

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings
  - factory/template.go: Template override format
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/teddinata/odoo-pitcar-sub000/api"
	"github.com/teddinata/odoo-pitcar-sub000/config"
	"github.com/teddinata/odoo-pitcar-sub000/factory"
	"github.com/teddinata/odoo-pitcar-sub000/store/memory"
	"github.com/teddinata/odoo-pitcar-sub000/store/postgres"
	"github.com/teddinata/odoo-pitcar-sub000/store/sqlite"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.Level(cfg.Level()).With().Str("service", "kpi-engine").Logger()

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer store.Close()

	engine := workshop.NewEngine(store, logger)
	engine.Location = cfg.Location()
	engine.Break, _ = cfg.Break()
	engine.Parallelism = cfg.MetricParallelism

	if cfg.TemplatesFile != "" {
		if err := applyTemplates(engine, cfg.TemplatesFile); err != nil {
			logger.Fatal().Err(err).Str("file", cfg.TemplatesFile).Msg("failed to load templates")
		}
		logger.Info().Str("file", cfg.TemplatesFile).Msg("template overrides applied")
	}

	handler := api.NewHandler(store, engine, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins(),
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("driver", cfg.StoreDriver).
			Str("timezone", engine.Location.String()).
			Str("break", engine.Break.String()).
			Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (workshop.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return sqlite.New(cfg.SQLitePath)
	}
}

func applyTemplates(engine *workshop.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	templates, err := factory.NewTemplateFactory().ParseTemplates(string(data))
	if err != nil {
		return err
	}
	return engine.Templates.Override(templates...)
}
