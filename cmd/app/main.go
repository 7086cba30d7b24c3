// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"souksync/internal/bot"
	"souksync/internal/config"
	"souksync/internal/domain/ports/adapter"
	"souksync/internal/domain/ports/repository"
	"souksync/internal/infra/auth"
	pg "souksync/internal/infra/db/postgres"
	"souksync/internal/infra/i18n"
	"souksync/internal/infra/kv"
	"souksync/internal/infra/logging"
	"souksync/internal/infra/metrics"
	red "souksync/internal/infra/redis"
	tele "souksync/internal/infra/telegram"
	"souksync/internal/infra/web"
	"souksync/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted phones)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- OTP storage: Redis when reachable, in-process otherwise ----
	var primary repository.KeyValueStore
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup; OTP storage starts on the in-process fallback")
		} else {
			defer redisClient.Close()
			primary = kv.NewRedisStore(redisClient)
		}
	} else {
		logger.Info().Msg("redis.url not set; OTP storage is in-process only")
	}
	store := kv.NewFailoverStore(primary, kv.NewMemoryStore(), logger)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	orderRepo := pg.NewPostgresOrderRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Localization ----
	copyTable, err := i18n.NewCopy()
	if err != nil {
		logger.Fatal().Err(err).Msg("locales")
	}

	// ---- Messenger ----
	var messenger adapter.Messenger
	if cfg.Bot.Token != "" {
		client, err := tele.NewClient(&cfg.Bot, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		messenger = client
	} else {
		logger.Warn().Msg("bot.token not set; outbound messages are logged, not sent")
		messenger = tele.NewNoop(logger)
	}

	// ---- Conversation state machine ----
	machine := bot.NewMachine(bot.NewStore(), copyTable, messenger, orderRepo, logger)

	// ---- Auth ----
	otpUC := usecase.NewOTPUseCase(store, userRepo, txManager, cfg.Auth, cfg.Runtime.Dev, logger)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// ---- HTTP server ----
	srv := web.NewServer(otpUC, tokens, machine, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
