package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Remote backends for the authoritative tier
const (
	BackendNone     = ""
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the process configuration, read from the environment
type Config struct {
	LogMode  string `env:"LOG_MODE" envDefault:"development"`
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`

	// Local tier, always available
	LocalDBPath string `env:"LOCAL_DB_PATH" envDefault:"data/petwords.db"`

	// Authoritative tier
	RemoteBackend string        `env:"REMOTE_BACKEND"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"petwords"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"3s"`

	VocabularyPath  string `env:"VOCABULARY_PATH" envDefault:"data/words.xlsx"`
	VocabularySheet string `env:"VOCABULARY_SHEET" envDefault:"Sheet1"`

	// Reminders. REMINDER_CHATS maps account ids to Telegram chat ids: "alice:123,bob:456"
	TelegramToken         string           `env:"TELEGRAM_BOT_TOKEN"`
	ReminderChats         map[string]int64 `env:"REMINDER_CHATS" envKeyValSeparator:":"`
	NotificationStartHour int              `env:"NOTIFICATION_START_HOUR" envDefault:"8"`
	NotificationEndHour   int              `env:"NOTIFICATION_END_HOUR" envDefault:"22"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional dotenv files (".env" when none are given) into the
// environment, then parses and validates a Config. Variables already set in
// the environment win over dotenv values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	switch c.RemoteBackend {
	case BackendNone:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for remote backend %q", c.RemoteBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for remote backend %q", c.RemoteBackend)
		}
	default:
		return fmt.Errorf("unknown remote backend %q", c.RemoteBackend)
	}

	if c.LocalDBPath == "" {
		return fmt.Errorf("LOCAL_DB_PATH must not be empty")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %s", c.RemoteTimeout)
	}
	if !validHour(c.NotificationStartHour) || !validHour(c.NotificationEndHour) {
		return fmt.Errorf("notification hours must be within 0-23, got %d-%d", c.NotificationStartHour, c.NotificationEndHour)
	}
	if c.NotificationStartHour > c.NotificationEndHour {
		return fmt.Errorf("notification start hour %d is after end hour %d", c.NotificationStartHour, c.NotificationEndHour)
	}
	return nil
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// RemindersEnabled reports whether reminders can be delivered
func (c *Config) RemindersEnabled() bool {
	return c.TelegramToken != "" && len(c.ReminderChats) > 0
}
