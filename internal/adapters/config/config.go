package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stocksense/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Redis         RedisConfig
	Agent         AgentConfig
	Focus         FocusConfig
	Providers     ProviderConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"stocksense"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	// Enabled selects the Redis-backed stores; when false the service
	// keeps all state in memory (demo mode, mirrors a fresh browser)
	Enabled bool `envconfig:"REDIS_ENABLED" default:"false"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AgentConfig struct {
	CycleInterval time.Duration `envconfig:"AGENT_CYCLE_INTERVAL" default:"5s"`
	AutoStart     bool          `envconfig:"AGENT_AUTO_START" default:"true"`
}

type FocusConfig struct {
	WorkDuration          time.Duration `envconfig:"FOCUS_WORK_DURATION" default:"25m"`
	ShortBreakDuration    time.Duration `envconfig:"FOCUS_SHORT_BREAK_DURATION" default:"5m"`
	LongBreakDuration     time.Duration `envconfig:"FOCUS_LONG_BREAK_DURATION" default:"15m"`
	SessionsUntilLongBreak int          `envconfig:"FOCUS_SESSIONS_UNTIL_LONG_BREAK" default:"4"`
	BreakReminderInterval time.Duration `envconfig:"FOCUS_BREAK_REMINDER_INTERVAL" default:"25m"`
	AutoChain             bool          `envconfig:"FOCUS_AUTO_CHAIN" default:"false"`
}

// ProviderConfig holds credentials for third-party market data APIs.
// All providers degrade to canned payloads when a key is missing or a
// call fails, so none of these are required.
type ProviderConfig struct {
	FinnhubAPIKey string        `envconfig:"FINNHUB_API_KEY" default:"demo"`
	IEXAPIKey     string        `envconfig:"IEX_API_KEY" default:"pk_demo"`
	NewsAPIKey    string        `envconfig:"NEWS_API_KEY" default:"demo"`
	HTTPTimeout   time.Duration `envconfig:"PROVIDER_HTTP_TIMEOUT" default:"10s"`
	RatePerSecond float64       `envconfig:"PROVIDER_RATE_PER_SECOND" default:"5"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Enabled reports whether the Telegram notifier should be wired in
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// WorkerConfig contains intervals for all background workers
type WorkerConfig struct {
	InsightRefreshInterval time.Duration `envconfig:"WORKER_INSIGHT_REFRESH_INTERVAL" default:"1m"`
	NewsRefreshInterval    time.Duration `envconfig:"WORKER_NEWS_REFRESH_INTERVAL" default:"5m"`
	FocusScoreInterval     time.Duration `envconfig:"WORKER_FOCUS_SCORE_INTERVAL" default:"30s"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
