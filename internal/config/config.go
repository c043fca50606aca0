package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port            int
	CORSAllowOrigin string

	// Upstream trading API
	TradingAPIURL     string
	TradingAPITimeout time.Duration

	// Page defaults
	Locale              string
	DateRangeDays       int
	DatesLimitDefault   int
	ResultsLimitDefault int

	// Sessions
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	// Alerts
	WebhookURL    string
	BotName       string
	AlertCooldown time.Duration

	// Logging
	LogLevel string
	LogFile  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:            envInt("PORT", 8000),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		TradingAPIURL:     strings.TrimRight(envStr("TRADING_API_URL", "http://localhost:8001"), "/"),
		TradingAPITimeout: envDuration("TRADING_API_TIMEOUT", 10*time.Second),

		Locale:              strings.ToLower(envStr("UI_LOCALE", "ru")),
		DateRangeDays:       envInt("DATE_RANGE_DAYS", 7),
		DatesLimitDefault:   envInt("DATES_LIMIT_DEFAULT", 5),
		ResultsLimitDefault: envInt("RESULTS_LIMIT_DEFAULT", 10),

		SessionIdleTimeout:   envDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionSweepInterval: envDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		WebhookURL:    envStr("WEBHOOK_URL", ""),
		BotName:       envStr("BOT_NAME", "SpimexView"),
		AlertCooldown: envDuration("ALERT_COOLDOWN", 10*time.Minute),

		LogLevel: strings.ToLower(envStr("LOG_LEVEL", "info")),
		LogFile:  envStr("LOG_FILE", "logs/server.log"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	if u, err := url.Parse(c.TradingAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("TRADING_API_URL %q is not an absolute URL", c.TradingAPIURL))
	}
	if c.TradingAPITimeout <= 0 {
		errs = append(errs, "TRADING_API_TIMEOUT must be positive")
	}
	if c.DateRangeDays < 0 {
		errs = append(errs, "DATE_RANGE_DAYS must not be negative")
	}
	if c.SessionIdleTimeout <= 0 || c.SessionSweepInterval <= 0 {
		errs = append(errs, "SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Locale != "ru" && c.Locale != "en" {
		slog.Warn("unknown UI_LOCALE, falling back to ru", "locale", c.Locale)
		c.Locale = "ru"
	}
	if c.WebhookURL == "" {
		slog.Warn("WEBHOOK_URL not set, upstream failure alerts are log-only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	slog.Info("configuration",
		"port", c.Port,
		"trading_api_url", c.TradingAPIURL,
		"trading_api_timeout", c.TradingAPITimeout,
		"locale", c.Locale,
		"date_range_days", c.DateRangeDays,
		"dates_limit_default", c.DatesLimitDefault,
		"results_limit_default", c.ResultsLimitDefault,
		"session_idle_timeout", c.SessionIdleTimeout,
		"alerts", boolLabel(c.WebhookURL != "", "webhook", "log only"),
		"log_level", c.LogLevel,
		"log_file", c.LogFile,
	)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
