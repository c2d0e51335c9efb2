package routes

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vicu/vicu-api/internal/app"
	"github.com/vicu/vicu-api/internal/handler"
	"github.com/vicu/vicu-api/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	me := handler.NewMeHandler(app.StatsService, app.ProfileService)
	experiment := handler.NewExperimentHandler(app.ExperimentService, app.LandingService)
	checkin := handler.NewCheckinHandler(app.CheckinService, app.StageService)
	recommendation := handler.NewRecommendationHandler(app.RecommendationService)
	landing := handler.NewLandingHandler(app.LandingService)
	whatsapp := handler.NewWhatsAppHandler(app.ReminderService, app.Cfg.WhatsAppAppSecret, app.Cfg.WhatsAppVerifyToken)
	scheduler := handler.NewSchedulerHandler(app.ReminderService, app.Cfg.SchedulerWebhookSecret)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	// ============================================================================
	// API (bearer token; stats and rhythm also answer anonymous callers)
	// ============================================================================

	mux.HandleFunc("GET /api/me/stats", me.Stats)
	mux.HandleFunc("GET /api/me/xp-events", middleware.RequireAuth(me.XPEvents))
	mux.HandleFunc("GET /api/me/profile", middleware.RequireAuth(me.Profile))
	mux.HandleFunc("PUT /api/me/profile", middleware.RequireAuth(me.UpdateProfile))

	mux.HandleFunc("GET /api/rhythm", handler.Rhythm)

	// Goals
	mux.HandleFunc("POST /api/experiments", middleware.RequireAuth(experiment.Create))
	mux.HandleFunc("GET /api/experiments", middleware.RequireAuth(experiment.List))
	mux.HandleFunc("GET /api/experiments/{id}", middleware.RequireAuth(experiment.Get))
	mux.HandleFunc("PATCH /api/experiments/{id}", middleware.RequireAuth(experiment.Update))
	mux.HandleFunc("DELETE /api/experiments/{id}", middleware.RequireAuth(experiment.Delete))
	mux.HandleFunc("PUT /api/experiments/{id}/self-result", middleware.RequireAuth(experiment.SetSelfResult))
	mux.HandleFunc("POST /api/experiments/{id}/actions/{actionID}/complete", middleware.RequireAuth(experiment.CompleteAction))
	mux.HandleFunc("GET /api/experiments/{id}/landing", middleware.RequireAuth(experiment.LandingCounts))

	// Steps and stages
	mux.HandleFunc("POST /api/experiments/{id}/steps/generate", middleware.RequireAuth(checkin.GenerateSteps))
	mux.HandleFunc("POST /api/experiments/{id}/steps/{checkinID}/complete", middleware.RequireAuth(checkin.CompleteStep))
	mux.HandleFunc("POST /api/experiments/{id}/transition", middleware.RequireAuth(checkin.Transition))

	// Recommendations
	mux.HandleFunc("GET /api/experiments/{id}/recommendation", middleware.RequireAuth(recommendation.Current))
	mux.HandleFunc("POST /api/experiments/{id}/recommendation/refresh", middleware.RequireAuth(recommendation.Refresh))
	mux.HandleFunc("GET /api/experiments/{id}/recommendation/history", middleware.RequireAuth(recommendation.History))

	// ============================================================================
	// PUBLIC LANDING PAGES (rate limited)
	// ============================================================================

	publicLimit := middleware.RateLimit(60, time.Minute)
	mux.HandleFunc("POST /public/landing/{id}/visit", publicLimit(landing.Visit))
	mux.HandleFunc("POST /public/landing/{id}/lead", publicLimit(landing.Lead))

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	webhookLimit := middleware.RateLimit(600, time.Minute)
	mux.HandleFunc("GET /webhooks/whatsapp", webhookLimit(whatsapp.Verify))
	mux.HandleFunc("POST /webhooks/whatsapp", webhookLimit(whatsapp.Receive))
	if app.Cfg.RemindersEnabled {
		mux.HandleFunc("POST /webhooks/scheduler", webhookLimit(scheduler.Webhook))
	}

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging(app.Metrics),
		middleware.SecurityHeaders,
		middleware.Auth(app.AuthService),
	)
}
