package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trend-watch/alerts"
	"trend-watch/config"
	"trend-watch/internal/api"
	"trend-watch/internal/app"
	"trend-watch/internal/session"
	"trend-watch/observability"
	"trend-watch/repository"
	"trend-watch/services"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Database
	if !cfg.HasDatabase() {
		observability.Fatal("DATABASE_URL is required")
	}
	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		observability.Fatal("failed to run migrations", "error", err)
	}
	observability.Info("database ready")

	// Session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		observability.Fatal("failed to connect to redis", "error", err)
	}
	sessions := session.New(redisClient, time.Duration(cfg.Auth.SessionTTLHours)*time.Hour)
	observability.Info("session store ready", "addr", cfg.Redis.Addr)

	// Market data provider: Alpha Vantage when configured, Alpaca otherwise
	var provider services.MarketDataProvider
	switch {
	case cfg.HasAlphaVantage():
		provider = services.NewAlphaVantageService(cfg.AlphaVantage.APIKey)
	case cfg.HasAlpaca():
		provider = services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	default:
		observability.Fatal("no market data provider configured; set ALPHA_VANTAGE_API_KEY or ALPACA_API_KEY")
	}
	observability.Info("market data provider ready", "provider", provider.Name())

	// Alerts need outgoing mail; without SMTP, analysis still works
	var mailer services.MailSender
	if cfg.HasSMTP() {
		mailer = services.NewSMTPMailer(cfg.SMTP)
		observability.Info("alert mailer ready", "host", cfg.SMTP.Host)
	} else {
		observability.Warn("SMTP not configured, crossover alerts disabled")
	}
	dispatcher := alerts.NewDispatcher(repo, repo, mailer)

	application := app.New(cfg, repo, provider, sessions, dispatcher)

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, application, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("server stopped")
}
