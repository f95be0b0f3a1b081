package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pawelm/flashgen-api/internal/config"
	"github.com/pawelm/flashgen-api/internal/generation"
	"github.com/pawelm/flashgen-api/internal/platform/openrouter"
	"github.com/pawelm/flashgen-api/internal/platform/postgres"
	"github.com/pawelm/flashgen-api/internal/service"
	"github.com/pawelm/flashgen-api/internal/service/auth"
	"github.com/pawelm/flashgen-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore       store.UserStore
	flashcardStore  store.FlashcardStore
	generationStore store.GenerationStore
	errorLogStore   store.GenerationErrorLogStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	generator        generation.Generator

	generationService service.GenerationService
	flashcardService  service.FlashcardService
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logger, and database connection must be
// established before this is called.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger, cfg.Auth.BcryptCost)
	app.flashcardStore = postgres.NewPostgresFlashcardStore(db, logger)
	app.generationStore = postgres.NewPostgresGenerationStore(db, logger)
	app.errorLogStore = postgres.NewPostgresGenerationErrorLogStore(db, logger)

	app.generator, err = openrouter.NewClient(logger, openrouter.Config{
		APIKey:       cfg.LLM.APIKey,
		Endpoint:     cfg.LLM.Endpoint,
		DefaultModel: cfg.LLM.DefaultModel,
		ModelParams: openrouter.ModelParams{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	logger.Info("Completion client initialized", "model", cfg.LLM.DefaultModel)

	app.generationService, err = service.NewGenerationService(
		app.generator,
		app.generationStore,
		app.errorLogStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.flashcardService, err = service.NewFlashcardService(
		db,
		app.flashcardStore,
		app.generationStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
