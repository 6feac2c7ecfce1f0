package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/account"
	"github.com/innkeeper/server/internal/auth"
	"github.com/innkeeper/server/internal/config"
	"github.com/innkeeper/server/internal/db"
	httphandler "github.com/innkeeper/server/internal/http"
	"github.com/innkeeper/server/internal/http/handlers"
	"github.com/innkeeper/server/internal/repo"
)

func main() {
	// .env is optional; real env vars take precedence.
	_ = godotenv.Load(".env")

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	database, err := db.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	accounts := repo.NewAccountRepo(database)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	svc := account.NewService(accounts, hasher, tokens, log)

	authHandler := handlers.NewAuthHandler(svc, log)
	accountHandler := handlers.NewAccountHandler(svc, log)

	router := httphandler.NewRouter(authHandler, accountHandler, tokens, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
