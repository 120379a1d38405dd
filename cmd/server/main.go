// @title           LegalFlow API
// @version         1.0
// @description     Case management API for a legal practice: clients, cases, case documents, reminders and dashboard statistics.
// @contact.name    Aldo Rifki Putra
// @contact.email   aldoetobex@gmail.com
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	// Docs
	_ "github.com/aldoetobex/legalflow-backend/docs"
	"github.com/aldoetobex/legalflow-backend/internal/server"
	"github.com/aldoetobex/legalflow-backend/internal/storage"
	"github.com/aldoetobex/legalflow-backend/internal/store"
	"github.com/aldoetobex/legalflow-backend/pkg/config"
	"github.com/aldoetobex/legalflow-backend/pkg/database"
	"github.com/aldoetobex/legalflow-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory fallback always
	sel := store.NewSelector(openPrimary(ctx, cfg, zl), store.NewMemory(), zl.Named("store"))
	if err := sel.Init(ctx); err != nil {
		zl.Fatal("store init failed", zap.Error(err))
	}

	objects, err := storage.New(ctx, cfg)
	if err != nil {
		zl.Fatal("object storage init failed", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}

	app := server.New(cfg, sel, objects, zl)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("server running",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.Bool("primary", sel.Connected()),
		zap.String("storage_driver", cfg.StorageDriver),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("listen", zap.Error(err))
	}
}

// openPrimary returns the relational store, or nil when no database is
// configured or the schema cannot be migrated. The selector's startup probe
// decides whether a returned store is actually used.
func openPrimary(ctx context.Context, cfg config.Config, zl *zap.Logger) store.Store {
	if cfg.DatabaseURL == "" {
		return nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		zl.Warn("database config rejected", zap.Error(err))
		return nil
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		zl.Warn("migration failed", zap.Error(err))
		return nil
	}
	return pg
}
