package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Market data provider credentials
	ProviderBaseURL  string
	ProviderAPIKey   string
	ProviderClient   string
	ProviderPassword string
	ProviderTOTP     string
	SymbolSuffix     string

	// Screening rules
	MinVolume          int64
	TrendLookback      int
	CrossConfirmWindow int
	TroughRadius       int
	TroughTolerance    float64
	BacktestHorizon    int
	RiskTierCutoffs    string

	// Run shape
	Workers    int
	FetchDelay time.Duration
	MaxSymbols int
	BarCount   int

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string

	// Notification targets (any subset may be empty)
	SlackWebhookURL   string
	DiscordWebhookURL string
	TelegramBotToken  string
	TelegramChatID    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	c := &Config{
		ProviderBaseURL:  getEnv("PROVIDER_BASE_URL", "https://api.kabu-station.example"),
		ProviderAPIKey:   getEnv("PROVIDER_API_KEY", ""),
		ProviderClient:   getEnv("PROVIDER_CLIENT_CODE", ""),
		ProviderPassword: getEnv("PROVIDER_PASSWORD", ""),
		ProviderTOTP:     getEnv("PROVIDER_TOTP_SECRET", ""),
		SymbolSuffix:     getEnv("SYMBOL_SUFFIX", ".T"),

		MinVolume:          getEnvInt64("MIN_VOLUME", 1_000_000),
		TrendLookback:      getEnvInt("TREND_LOOKBACK", 5),
		CrossConfirmWindow: getEnvInt("CROSS_CONFIRM_WINDOW", 3),
		TroughRadius:       getEnvInt("TROUGH_RADIUS", 5),
		TroughTolerance:    getEnvFloat("TROUGH_TOLERANCE", 0.005),
		BacktestHorizon:    getEnvInt("BACKTEST_HORIZON", 5),
		RiskTierCutoffs:    getEnv("RISK_TIER_CUTOFFS", "100000000,10000000"),

		Workers:    getEnvInt("WORKERS", 8),
		FetchDelay: time.Duration(getEnvInt("FETCH_DELAY_MS", 150)) * time.Millisecond,
		MaxSymbols: getEnvInt("MAX_SYMBOLS", 0),
		BarCount:   getEnvInt("BAR_COUNT", 260),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/screener.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnv("TELEGRAM_CHAT_ID", ""),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", c.Workers)
	}
	if c.BacktestHorizon <= 0 {
		return fmt.Errorf("BACKTEST_HORIZON must be positive, got %d", c.BacktestHorizon)
	}
	if c.TrendLookback < 2 {
		return fmt.Errorf("TREND_LOOKBACK must be at least 2, got %d", c.TrendLookback)
	}
	if c.CrossConfirmWindow < 1 {
		return fmt.Errorf("CROSS_CONFIRM_WINDOW must be at least 1, got %d", c.CrossConfirmWindow)
	}
	if c.TroughRadius < 1 {
		return fmt.Errorf("TROUGH_RADIUS must be at least 1, got %d", c.TroughRadius)
	}
	if _, _, err := c.ParseCutoffs(); err != nil {
		return err
	}
	return nil
}

// ParseCutoffs parses RISK_TIER_CUTOFFS into (stable, standard) thresholds
// in JPY of 30-day mean traded value. The stable cutoff must be the larger.
func (c *Config) ParseCutoffs() (stable, standard float64, err error) {
	parts := strings.Split(c.RiskTierCutoffs, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("RISK_TIER_CUTOFFS wants two values, got %q", c.RiskTierCutoffs)
	}
	stable, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("RISK_TIER_CUTOFFS: %w", err)
	}
	standard, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("RISK_TIER_CUTOFFS: %w", err)
	}
	if stable <= standard {
		return 0, 0, fmt.Errorf("RISK_TIER_CUTOFFS: stable cutoff %.0f must exceed standard cutoff %.0f", stable, standard)
	}
	return stable, standard, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using default %g", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
