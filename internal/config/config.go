package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	// DBOptionalColumns is "auto" (probe the schema), "all" or "none"
	DBOptionalColumns string

	// Managed auth provider
	AuthJWTSecret string

	// LLM (OpenAI-compatible chat completions)
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// WhatsApp Business Cloud API
	WhatsAppAPIURL             string
	WhatsAppToken              string
	WhatsAppPhoneNumberID      string
	WhatsAppAppSecret          string
	WhatsAppVerifyToken        string
	WhatsAppDefaultCountryCode string
	RemindersEnabled           bool

	// External scheduler pushing reminder sweeps (standard-webhooks)
	SchedulerWebhookSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Decision core
	StatsFetchTimeout time.Duration
	DefaultDailyGoal  int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Vicu"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		DBDriver:          envString("DB_DRIVER", "sqlite"),
		DBConnection:      envString("DB_CONNECTION", "./data/vicu.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),
		DBOptionalColumns: envString("DB_OPTIONAL_COLUMNS", "auto"),

		AuthJWTSecret: envRequired("AUTH_JWT_SECRET"),

		LLMBaseURL:    envString("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:     envString("LLM_API_KEY", ""),
		LLMModel:      envString("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:    envDuration("LLM_TIMEOUT", 45*time.Second),
		LLMMaxRetries: envInt("LLM_MAX_RETRIES", 2),

		WhatsAppAPIURL:             envString("WHATSAPP_API_URL", "https://graph.facebook.com/v21.0"),
		WhatsAppToken:              envString("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID:      envString("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppAppSecret:          envString("WHATSAPP_APP_SECRET", ""),
		WhatsAppVerifyToken:        envString("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppDefaultCountryCode: envString("WHATSAPP_DEFAULT_COUNTRY_CODE", "52"),
		RemindersEnabled:           envBool("REMINDERS_ENABLED", true),

		SchedulerWebhookSecret: envString("SCHEDULER_WEBHOOK_SECRET", ""),

		EmailFrom:    envString("EMAIL_FROM", "Vicu <hola@example.com>"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		SentryDSN: envString("SENTRY_DSN", ""),

		StatsFetchTimeout: envDuration("STATS_FETCH_TIMEOUT", 5*time.Second),
		DefaultDailyGoal:  envInt("DEFAULT_DAILY_GOAL", 3),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures webhook secrets are set outside development,
// where unsigned payloads are accepted for local testing.
func validateProduction(cfg *Config) {
	if cfg.WhatsAppAppSecret == "" {
		slog.Error("production deployment requires WHATSAPP_APP_SECRET",
			"hint", "set APP_ENV=development to accept unsigned webhooks locally")
		os.Exit(1)
	}
	if cfg.SchedulerWebhookSecret == "" {
		slog.Error("production deployment requires SCHEDULER_WEBHOOK_SECRET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LLMEnabled reports whether a generator is configured. Without one every
// generation request is served from fallback content.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != ""
}
