package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/config"
	"github.com/campus-hub/campus-events-api/internal/database"
	"github.com/campus-hub/campus-events-api/internal/handlers"
	"github.com/campus-hub/campus-events-api/internal/metrics"
	"github.com/campus-hub/campus-events-api/internal/notifier"
	"github.com/campus-hub/campus-events-api/internal/reminder"
	"github.com/campus-hub/campus-events-api/internal/services"
	"github.com/campus-hub/campus-events-api/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db := database.Connect(cfg, logger)
	m := metrics.New(prometheus.DefaultRegisterer)

	// Notification channels degrade to no-ops when unconfigured.
	var batch notifier.Notifier = notifier.Noop{}
	if cfg.SMTPHost != "" {
		batch = notifier.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	}

	var announcer notifier.Announcer = notifier.Noop{}
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("discord announcer not initialized", zap.Error(err))
		} else {
			announcer = notifier.NewDiscordAnnouncer(session, cfg.DiscordAnnounceChannelID, logger)
		}
	}

	store, err := storage.NewDiskStore(cfg.AttachmentDir)
	if err != nil {
		logger.Fatal("failed to initialize attachment store", zap.Error(err))
	}

	eventService := services.NewEventService(db, services.NewGormHistory(db), batch, announcer, m, logger)
	registrationService := services.NewRegistrationService(db, m, logger)
	authHandler := auth.NewAuthHandler(cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := reminder.NewWorker(db, batch, m, logger, cfg.ReminderInterval)
	workerDone := worker.Start(ctx)

	r := chi.NewRouter()
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:          authHandler,
		Events:        handlers.NewEventHandler(eventService, authHandler, store, logger),
		Registrations: handlers.NewRegistrationHandler(registrationService, authHandler),
		Locations:     handlers.NewLocationHandler(db, authHandler),
		Settings:      handlers.NewSettingHandler(db, authHandler),
		Messages:      handlers.NewMessageHandler(db, authHandler),
		Users:         handlers.NewUserHandler(db, authHandler),
		APIKeys:       handlers.NewAPIKeyHandler(db, authHandler),
		Attachments:   handlers.NewAttachmentHandler(db, store, logger),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	<-workerDone
}
