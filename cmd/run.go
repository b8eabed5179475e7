package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"nuggies/bot"
	"nuggies/bot/features/assistant"
	"nuggies/bot/features/media"
	"nuggies/config"
	"nuggies/database"
	"nuggies/events"
	"nuggies/infrastructure"
	"nuggies/repository"
	"nuggies/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()

	if err := configureLogging(cfg.LogLevel, cfg.Environment); err != nil {
		return err
	}
	log.Info("Starting nuggies bot...")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Schema first; an up-to-date database is a no-op
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	economyService := service.NewEconomyService(uowFactory,
		service.WithClock(service.NewZoneClock(loc, nil)),
	)

	deps := bot.Dependencies{
		Economy:  economyService,
		EventBus: eventBus,
	}

	var ai assistant.Completer
	if cfg.GeminiAPIKey != "" {
		gemini, err := infrastructure.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		ai = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, AI commands will answer with their fallback")
	}
	deps.AI = ai

	var gifs media.GifSearcher
	if cfg.TenorAPIKey != "" {
		gifs = infrastructure.NewTenorClient(cfg.TenorAPIKey, "", cfg.UpstreamTimeout)
	} else {
		log.Warn("TENOR_API_KEY not set, /fox will always post the default GIF")
	}
	deps.Gifs = gifs

	discordBot, err := bot.New(bot.Config{
		Token:               cfg.DiscordToken,
		AdminDiscordID:      cfg.AdminDiscordID,
		UpstreamTimeout:     cfg.UpstreamTimeout,
		MaxConcurrentTasks:  cfg.MaxConcurrentTasks,
		ConstantinopleImage: cfg.ConstantinopleImage,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithFields(log.Fields{
		"environment":    cfg.Environment,
		"claim_timezone": loc.String(),
	}).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	return nil
}
