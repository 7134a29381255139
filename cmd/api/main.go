package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/muneebexotic/portfolio-api/internal/config"
	"github.com/muneebexotic/portfolio-api/internal/content"
	"github.com/muneebexotic/portfolio-api/internal/form"
	"github.com/muneebexotic/portfolio-api/internal/logging"
	"github.com/muneebexotic/portfolio-api/internal/notify"
	"github.com/muneebexotic/portfolio-api/internal/ratelimit"
	"github.com/muneebexotic/portfolio-api/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PORTFOLIO_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	catalog, err := content.Load(cfg.Content.Path)
	if err != nil {
		logger.Error("failed to load content catalog", "err", err)
		os.Exit(1)
	}

	store, closeStore, err := newLimiterStore(cfg)
	if err != nil {
		logger.Error("failed to init rate limit store", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	sender := newSender(cfg, logger)
	pipeline := form.NewPipeline(store, sender)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           server.New(cfg, logger, pipeline, store, catalog).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("portfolio api listening",
		"addr", cfg.Server.ListenAddr,
		"limiter", cfg.Limiter.Backend,
		"projects", len(catalog.Projects),
		"posts", len(catalog.Posts),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

func newLimiterStore(cfg *config.Config) (ratelimit.Store, func(), error) {
	switch cfg.Limiter.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Limiter.Redis.Addr,
			Password: cfg.Limiter.Redis.Password,
			DB:       cfg.Limiter.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, nil, err
		}
		store := ratelimit.NewRedisStore(client, cfg.Limiter.Max, cfg.Limiter.Window)
		return store, func() { _ = client.Close() }, nil
	default:
		store := ratelimit.NewMemoryStore(cfg.Limiter.Max, cfg.Limiter.Window)
		return store, func() {}, nil
	}
}

func newSender(cfg *config.Config, logger *slog.Logger) notify.Sender {
	emailSender := notify.NewEmailSender(notify.SMTPConfig{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		User:          cfg.SMTP.User,
		Pass:          cfg.SMTP.Pass,
		SSL:           cfg.SMTP.SSL,
		From:          cfg.SMTP.From,
		To:            cfg.SMTP.To,
		SubjectPrefix: cfg.SMTP.SubjectPrefix,
		Timeout:       cfg.SMTP.Timeout,
	})

	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return emailSender
	}
	tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Warn("telegram notifier disabled", "err", err)
		return emailSender
	}
	return notify.NewFanout(logger, emailSender, tg)
}
