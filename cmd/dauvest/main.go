package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"dauvest/internal/amqp"
	"dauvest/internal/auth"
	"dauvest/internal/backend"
	"dauvest/internal/cache"
	"dauvest/internal/cli"
	apphttp "dauvest/internal/http"
	"dauvest/internal/ledger"
	"dauvest/internal/log"
	"dauvest/internal/services"
	"dauvest/internal/social"
)

const tokenIssuer = "dauvest"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	startCtx := context.Background()
	factory := backend.NewFactory(logger)

	ledgerRes, err := factory.CreateLedger(startCtx, bcfg)
	if err != nil {
		logger.Error("Failed to create ledger backend", log.FieldError, err, "backend", bcfg.Ledger)
		os.Exit(1)
	}
	socialRes, err := factory.CreateSocial(startCtx, bcfg)
	if err != nil {
		logger.Error("Failed to create community backend", log.FieldError, err, "backend", bcfg.Social)
		_ = ledgerRes.Cleanup()
		os.Exit(1)
	}

	txs, err := ledger.OpenTransactions(startCtx, ledgerRes.KV)
	if err != nil {
		logger.Error("Failed to load transactions", log.FieldError, err)
		os.Exit(1)
	}
	goals, err := ledger.OpenGoals(startCtx, ledgerRes.KV)
	if err != nil {
		logger.Error("Failed to load goals", log.FieldError, err)
		os.Exit(1)
	}

	// AMQP is optional; without it ledger writes are not propagated.
	var publisher services.ChangePublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change propagation", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	identities := cache.NewLRUCache[string](cfg.IdentityCacheSize, cfg.IdentityCacheTTL)
	janitor := cache.NewJanitor(identities)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             services.NewLedgerService(txs, goals, publisher),
		Social:             social.NewEngine(socialRes.Store, identities, social.WithFeedLimit(cfg.FeedLimit)),
		Tokens:             auth.NewTokens(cfg.AuthSecret, tokenIssuer),
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks: map[string]apphttp.ReadinessCheck{
			"ledger": apphttp.ReadinessCheck(ledgerRes.Ping),
			"social": apphttp.ReadinessCheck(socialRes.Ping),
		},
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		closers := map[string]func() error{
			"ledger backend":    ledgerRes.Cleanup,
			"community backend": socialRes.Cleanup,
		}
		if amqpClient != nil {
			closers["amqp client"] = amqpClient.Close
		}
		cli.CloseAll(logger, closers)
	})
	go janitor.Run(ctx, time.Minute)

	logger.Info("Starting dauvest server",
		"port", cfg.Port,
		"ledger_backend", bcfg.Ledger,
		"social_backend", bcfg.Social,
		"amqp_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	<-janitor.Done()
	logger.Info("Server stopped gracefully")
}
