package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vicu/vicu-api/internal/config"
	"github.com/vicu/vicu-api/internal/db"
	"github.com/vicu/vicu-api/internal/llm"
	"github.com/vicu/vicu-api/internal/metrics"
	"github.com/vicu/vicu-api/internal/planner"
	"github.com/vicu/vicu-api/internal/repository"
	"github.com/vicu/vicu-api/internal/service"
	"github.com/vicu/vicu-api/internal/whatsapp"
)

type App struct {
	Cfg                   *config.Config
	DB                    *sqlx.DB
	Registry              *prometheus.Registry
	Metrics               *metrics.Metrics
	AuthService           *service.AuthService
	ExperimentService     *service.ExperimentService
	CheckinService        *service.CheckinService
	RecommendationService *service.RecommendationService
	StageService          *service.StageService
	StatsService          *service.StatsService
	ProfileService        *service.ProfileService
	LandingService        *service.LandingService
	ReminderService       *service.ReminderService
	EmailService          *service.EmailService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := NewWithDB(cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return app, nil
}

// NewWithDB wires the services over an open, migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB) (*App, error) {
	caps, err := db.DetectCapabilities(context.Background(), database, cfg.DBOptionalColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to detect schema capabilities: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Repositories
	experimentRepository := repository.NewExperimentRepository(database, caps)
	actionRepository := repository.NewActionRepository(database)
	checkinRepository := repository.NewCheckinRepository(database, caps)
	recommendationRepository := repository.NewRecommendationRepository(database)
	userStatsRepository := repository.NewUserStatsRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	landingRepository := repository.NewLandingRepository(database)
	reminderRepository := repository.NewReminderRepository(database)

	// Generation: without a model every request is served from fallbacks.
	var completer llm.Completer
	if cfg.LLMEnabled() {
		completer = llm.New(llm.Config{
			BaseURL:    cfg.LLMBaseURL,
			APIKey:     cfg.LLMAPIKey,
			Model:      cfg.LLMModel,
			Timeout:    cfg.LLMTimeout,
			MaxRetries: cfg.LLMMaxRetries,
		})
	} else {
		slog.Info("llm not configured, using fallback plans")
	}
	plan := planner.New(completer, m, slog.Default())

	sender := whatsapp.New(whatsapp.Config{
		APIURL:        cfg.WhatsAppAPIURL,
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
	}, slog.Default())

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(cfg.AuthJWTSecret)
	profileService := service.NewProfileService(profileRepository, cfg.WhatsAppDefaultCountryCode)
	statsService := service.NewStatsService(userStatsRepository, profileService, m, cfg.StatsFetchTimeout, cfg.DefaultDailyGoal)
	experimentService := service.NewExperimentService(experimentRepository, actionRepository, checkinRepository, recommendationRepository, plan)
	checkinService := service.NewCheckinService(experimentRepository, checkinRepository, profileService, statsService, plan)
	recommendationService := service.NewRecommendationService(experimentRepository, actionRepository, landingRepository, recommendationRepository)
	stageService := service.NewStageService(
		experimentRepository,
		checkinRepository,
		checkinService,
		recommendationService,
		statsService,
		profileService,
		emailService,
		m,
	)
	landingService := service.NewLandingService(experimentRepository, landingRepository, cfg.WhatsAppDefaultCountryCode)
	reminderService, err := service.NewReminderService(
		experimentRepository,
		checkinRepository,
		profileRepository,
		reminderRepository,
		checkinService,
		sender,
		emailService,
		m,
		cfg.AppURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reminders: %w", err)
	}

	return &App{
		Cfg:                   cfg,
		DB:                    database,
		Registry:              registry,
		Metrics:               m,
		AuthService:           authService,
		ExperimentService:     experimentService,
		CheckinService:        checkinService,
		RecommendationService: recommendationService,
		StageService:          stageService,
		StatsService:          statsService,
		ProfileService:        profileService,
		LandingService:        landingService,
		ReminderService:       reminderService,
		EmailService:          emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
