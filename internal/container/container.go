package container

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/traininginparks/trainbot/internal/analytics"
	"github.com/traininginparks/trainbot/internal/calendar"
	"github.com/traininginparks/trainbot/internal/config"
	"github.com/traininginparks/trainbot/internal/handlers"
	"github.com/traininginparks/trainbot/internal/models"
	"github.com/traininginparks/trainbot/internal/notify"
	"github.com/traininginparks/trainbot/internal/syncer"
	"github.com/traininginparks/trainbot/internal/telegram"
	"github.com/traininginparks/trainbot/internal/venues"
)

// Container holds all application dependencies
type Container struct {
	Logger        *slog.Logger
	Config        *config.Config
	MongoDBClient *mongo.Client
	EventRepo     models.EventRepo
	Venues        venues.Table
	Tracker       analytics.Tracker
	Mailer        notify.Mailer
	Calendar      *calendar.Client
	Syncer        *syncer.Syncer
	Bot           *telegram.Bot
	Handler       *handlers.BotHandler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, logger *slog.Logger, cfg *config.Config, mongoDBClient *mongo.Client) (*Container, error) {
	repo := models.MongodbNewRepo(mongoDBClient)

	venueTable, err := venues.ParseTable(cfg.VenuesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue table: %w", err)
	}

	var tracker analytics.Tracker = analytics.NoopTracker{}
	if cfg.AmplitudeAPIKey != "" {
		tracker = analytics.NewAmplitudeTracker(logger, cfg.AmplitudeAPIKey)
	}

	var mailer notify.Mailer = notify.NewDisabledMailer(logger)
	if cfg.FeedbackEnabled() {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort,
			cfg.SMTPUsername, cfg.SMTPPassword, cfg.FeedbackFrom, cfg.FeedbackTo)
	}

	bot, err := telegram.NewBot(logger, cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	cal, err := calendar.NewClient(ctx, logger, cfg.GoogleCredentialsFile, cfg.CalendarID)
	if err != nil {
		return nil, err
	}

	handler := handlers.NewBotHandler(logger, repo, bot, venueTable, tracker, mailer,
		cfg.TrainListLimit, cfg.AttendeesListLimit)
	sync := syncer.New(logger, cal, repo, cfg.SyncPeriod, cfg.SyncBatch)

	return &Container{
		Logger:        logger,
		Config:        cfg,
		MongoDBClient: mongoDBClient,
		EventRepo:     repo,
		Venues:        venueTable,
		Tracker:       tracker,
		Mailer:        mailer,
		Calendar:      cal,
		Syncer:        sync,
		Bot:           bot,
		Handler:       handler,
	}, nil
}

// Close flushes and releases sinks that buffer in the background.
func (c *Container) Close() {
	if tracker, ok := c.Tracker.(*analytics.AmplitudeTracker); ok {
		tracker.Close()
	}
}
