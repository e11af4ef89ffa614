// Command lagrange-onebot runs the Forward-WebSocket service alongside its
// admin HTTP API: the connector that bridges a single upstream bot
// session to OneBot-v11-compatible WebSocket clients (spec §1).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-acme/lego/v4/lego"

	"github.com/lagrange-go/lagrange/internal/adapters"
	"github.com/lagrange-go/lagrange/internal/api/handlers"
	"github.com/lagrange-go/lagrange/internal/api/router"
	"github.com/lagrange-go/lagrange/internal/config"
	"github.com/lagrange-go/lagrange/internal/core/domain"
	"github.com/lagrange-go/lagrange/internal/core/services"
	"github.com/lagrange-go/lagrange/internal/db/postgres"
	"github.com/lagrange-go/lagrange/internal/forwardws"
	"github.com/lagrange-go/lagrange/internal/infrastructure/crypto"
	"github.com/lagrange-go/lagrange/internal/telemetry"
	"github.com/lagrange-go/lagrange/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	sqlxDB, err := postgres.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sqlx connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlxDB.Close()

	var cipher domain.CryptoService
	if hexKey := os.Getenv("AUDIT_ENCRYPTION_KEY_HEX"); hexKey != "" {
		svc, err := crypto.NewAESCryptoService(hexKey)
		if err != nil {
			logger.Error("failed to initialize audit encryption", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cipher = svc
	}

	auditRepo := postgres.NewAuditRepository(pool, cipher)
	sessionRepo := postgres.NewSessionRepository(sqlxDB)

	registry := services.NewConnectionRegistry()
	sender := services.NewBroadcastSender(registry)
	validator := services.NewAccessTokenValidator(cfg.AccessToken)
	bot := services.NewStaticBotContext(cfg.BotUIN)
	hub := telemetry.NewHub()

	wsCfg := domain.ServiceConfig{
		Host:              cfg.Host,
		Port:              cfg.Port,
		AccessToken:       cfg.AccessToken,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}

	if cfg.ACMEEnabled {
		provider := adapters.NewACMEProvider(logger, lego.LEDirectoryProduction, ":80")
		cert, err := provider.Obtain(cfg.ACMEEmail, cfg.ACMEDomain)
		if err != nil {
			logger.Error("ACME certificate provisioning failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		tlsCfg, err := adapters.TLSConfig(cert)
		if err != nil {
			logger.Error("failed to build TLS config from issued certificate", slog.String("error", err.Error()))
			os.Exit(1)
		}
		wsCfg.TLSConfig = tlsCfg
	}

	svc := forwardws.New(wsCfg, logger, registry, sender, validator, bot, auditRepo)
	svc.OnMessageReceived(func(message string, id domain.SessionID) {
		hub.Publish(id, message)
	})

	supervisor := worker.NewSupervisor(svc, logger)
	go supervisor.Run(ctx)

	go runSnapshotWorker(ctx, logger, registry, sessionRepo, 30*time.Second)

	tokens := services.NewAdminTokenService(cfg.AdminJWTSecret, 12*time.Hour)
	authSvc := services.NewAdminAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, tokens)
	adminHandler := handlers.NewAdminHandler(authSvc, registry, svc, hub)

	adminMux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: cfg.AdminCORSOrigins,
		AdminHandler:   adminHandler,
		Tokens:         tokens,
		Logger:         logger,
	})
	adminServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AdminPort),
		Handler: adminMux,
	}

	go func() {
		logger.Info("admin API listening", slog.Int("port", cfg.AdminPort))
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin API crashed", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = adminServer.Shutdown(shutdownCtx)
	_ = svc.Stop(shutdownCtx)
}

// runSnapshotWorker periodically replaces the session_snapshots table with
// the Registry's current contents (SPEC_FULL.md item 3).
func runSnapshotWorker(ctx context.Context, logger *slog.Logger, registry domain.Registry, repo *postgres.SessionRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var snaps []domain.SessionSnapshot
			registry.Range(func(s *domain.Session) {
				snaps = append(snaps, domain.SessionSnapshot{
					ID:          s.ID,
					PathClass:   s.PathClass.String(),
					ConnectedAt: s.CreatedAt,
				})
			})
			if err := repo.ReplaceAll(ctx, snaps); err != nil {
				logger.Error("session snapshot sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
