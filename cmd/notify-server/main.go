package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sungwon/ion-notify/internal/announcements"
	"github.com/sungwon/ion-notify/internal/api"
	"github.com/sungwon/ion-notify/internal/auth"
	"github.com/sungwon/ion-notify/internal/config"
	"github.com/sungwon/ion-notify/internal/delivery"
	"github.com/sungwon/ion-notify/internal/logger"
	"github.com/sungwon/ion-notify/internal/msgstore"
	"github.com/sungwon/ion-notify/internal/provider"
	"github.com/sungwon/ion-notify/internal/storage"
	"github.com/sungwon/ion-notify/internal/twitter"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewFromConfig(cfg.Logging)
	log.Info().Msg("starting notification server")

	// Connect to database
	ctx := context.Background()
	db, err := storage.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("database connection established")

	dir := storage.New(db.Pool, cfg.Site.SchoolEmailDomain)

	// Mail provider
	mailProvider, err := provider.NewProvider(provider.ConfigFromMail(cfg.Mail))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mail provider")
	}
	log.Info().Str("provider", mailProvider.GetName()).Msg("mail provider ready")

	archive, err := msgstore.New(cfg.Archive, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open message archive")
	}

	renderer, err := delivery.NewRenderer(cfg.Mail.TemplateDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load email templates")
	}
	mailer := delivery.NewMailer(mailProvider, renderer, archive, cfg.Mail, log)

	tw := twitter.NewClient(cfg.Twitter)
	if !tw.Enabled() {
		log.Info().Msg("twitter credentials not configured; tweets disabled")
	}

	links, err := announcements.NewLinks(cfg.Site.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid site base URL")
	}
	dispatcher := announcements.NewDispatcher(dir, mailer, tw, links, cfg.Announcements, log)

	if cfg.Auth.SigningKey == "" || cfg.Auth.SigningKey == "change-me-in-production-use-a-strong-secret" {
		log.Warn().Msg("JWT signing key is not set or using default value; set ION_NOTIFY_AUTH_SIGNING_KEY in production")
	}

	router := api.NewRouter(api.Deps{
		Directory:  dir,
		Dispatcher: dispatcher,
		JWT:        auth.NewJWTService(cfg.Auth),
		Readiness: []api.ReadinessCheck{
			{Name: "database", Check: db.Ping},
			{Name: "mail provider", Check: mailProvider.HealthCheck},
		},
		Log: log,
	})

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("notification server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	// Graceful shutdown with 30-second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
