// Package server initializes and runs the backend: configuration, logging,
// database and migrations, storage backend, services and the HTTP endpoint,
// with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tgcatalog/backend/internal/config"
	"github.com/tgcatalog/backend/internal/httpapi"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
	"github.com/tgcatalog/backend/internal/services"
	"github.com/tgcatalog/backend/internal/storage"
	"github.com/tgcatalog/backend/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	server      *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return nil, fmt.Errorf("repomanager init error: %w", err)
	}

	st, err := newStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	verifier := telegram.NewInitDataVerifier(cfg.TelegramBotToken)
	bot := telegram.NewBotClient(cfg.TelegramBotToken)
	notifier := services.NewNotificationService(bot, cfg.AdminUserIDs, logger)

	authSvc := services.NewAuthService(db, m, verifier, cfg)
	userSvc := services.NewUserService(db, m, logger)
	catalogSvc := services.NewCatalogService(db, m, logger)
	fileSvc := services.NewFileService(db, m, st, cfg.MaxFileSize, logger)
	ticketSvc := services.NewTicketService(db, m, notifier, logger)

	srv := httpapi.NewServer(authSvc, userSvc, catalogSvc, fileSvc, ticketSvc, logger)

	return &App{config: cfg, logger: logger, db: db, repomanager: m, server: srv}, nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.UseS3() {
		return storage.NewS3Storage(context.Background(), storage.S3Options{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			BaseEndpoint:    cfg.S3BaseEndpoint,
		})
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Run migrates the schema, starts the HTTP endpoint and blocks until the
// context is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	httpServer := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddrHTTP)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	return nil
}
