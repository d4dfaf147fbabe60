package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vip-content-platform/internal/config"
	"vip-content-platform/internal/infra/db/postgres"
	"vip-content-platform/internal/infra/logging"
	"vip-content-platform/internal/infra/metrics"
	"vip-content-platform/internal/infra/payment"
	red "vip-content-platform/internal/infra/redis"
	"vip-content-platform/internal/infra/sched"
	"vip-content-platform/internal/infra/security"
	"vip-content-platform/internal/infra/web"
	"vip-content-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	chatCache := red.NewListingCache(redisClient, "listing", cfg.Redis.TTL, nil)

	// ---- Encryption ----
	var encSvc *security.EncryptionService
	if key := cfg.Security.EncryptionKey; key != "" {
		encSvc, err = security.NewEncryptionService(key)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
	} else {
		logger.Warn().Msg("security.encryption_key not set; messages stored in plaintext")
	}

	// ---- Repositories ----
	userRepo := postgres.NewUserRepo(pool)
	payRepo := postgres.NewPaymentRepo(pool)
	chatRepo := postgres.NewChatRepo(pool)
	chatReqRepo := postgres.NewChatRequestRepo(pool)
	msgRepo := postgres.NewMessageRepo(pool, encSvc)
	postRepo := postgres.NewPostRepo(pool)
	activityRepo := postgres.NewActivityLogRepo(pool)
	notifRepo := postgres.NewNotificationRepo(pool)
	txManager := postgres.NewTxManager(pool)

	// ---- Gateway ----
	gateway := payment.NewOxaPayGateway(cfg.Payment.OxaPay.MerchantKey, cfg.Payment.OxaPay.BaseURL, cfg.Payment.OxaPay.Sandbox)

	// ---- Use cases ----
	notifyUC := usecase.NewNotificationUseCase(notifRepo, logger)
	paymentUC := usecase.NewPaymentUseCase(
		payRepo, userRepo, activityRepo, notifyUC, gateway, txManager,
		cfg.Payment.OxaPay.VIPPriceUSD, cfg.Payment.OxaPay.CallbackURL, cfg.Payment.OxaPay.ReturnURL,
		logger,
	)
	chatUC := usecase.NewChatUseCase(chatRepo, chatReqRepo, msgRepo, userRepo, txManager, chatCache, logger)
	feedUC := usecase.NewFeedUseCase(postRepo, userRepo, chatCache, logger)
	userUC := usecase.NewUserUseCase(userRepo, activityRepo, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Server.JWTSecret, 24*time.Hour)
	srv := web.NewServer(
		paymentUC, chatUC, feedUC, userUC,
		auth, cfg.Server.AdminKey, cfg.Payment.OxaPay.WebhookSecret, rateLimiter,
		logger,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Workers ----
	publishWorker := sched.NewPublishWorker(cfg.Scheduler.PublishInterval, feedUC, logger)
	go func() { _ = publishWorker.Run(ctx) }()

	staleWorker := sched.NewStalePaymentWorker(10*time.Minute, 24*time.Hour, payRepo, logger)
	go func() { _ = staleWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
