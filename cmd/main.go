package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Emmymoks/swift-emc-marketplace/config"
	"github.com/Emmymoks/swift-emc-marketplace/internal/postgres"
	"github.com/Emmymoks/swift-emc-marketplace/internal/security"
	"github.com/Emmymoks/swift-emc-marketplace/internal/service"
	httpx "github.com/Emmymoks/swift-emc-marketplace/internal/transport/http"
	"github.com/Emmymoks/swift-emc-marketplace/internal/transport/ws"
	"github.com/Emmymoks/swift-emc-marketplace/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting marketplace messaging",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	msgRepo := postgres.NewMessageRepository(db.Pool)
	listingRepo := postgres.NewListingRepository(db.Pool)
	userRepo := postgres.NewUserRepository(db.Pool)

	// --- identity ---
	verifier := security.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.ClockSkewDuration())
	resolver := security.NewResolver(verifier, cfg.Auth.AdminSecret, userRepo)

	// --- WS Hub & services ---
	hub := ws.NewHub()
	chatSvc := service.NewChatService(msgRepo, listingRepo, hub)
	wsServer := ws.NewServer(hub, resolver, chatSvc)

	// --- HTTP ---
	handler := httpx.NewHandler(chatSvc)
	router := httpx.NewRouter(handler, resolver, wsServer, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
