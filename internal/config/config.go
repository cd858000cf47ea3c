package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// ErrInvalidToken is returned when TELEGRAM_TOKEN does not look like a bot token.
var ErrInvalidToken = errors.New("TELEGRAM_TOKEN has an invalid format")

type Config struct {
	// Telegram
	TelegramToken string `env:"TELEGRAM_TOKEN,required" validate:"required"`
	BotMode       string `env:"BOT_MODE" envDefault:"polling" validate:"oneof=polling webhook"`
	WebhookURL    string `env:"WEBHOOK_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	WebAppURL     string `env:"WEBAPP_URL"`

	// Storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres" validate:"oneof=postgres memory"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"partnerkin"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	RedisURL    string `env:"REDIS_URL"`

	// Admin
	JWTSecret         string        `env:"JWT_SECRET,required" validate:"required"`
	AdminPassword     string        `env:"ADMIN_PASSWORD" validate:"omitempty,min=8"`
	AdminSessionTTL   time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"1h" validate:"gt=0"`
	AdminSessionSweep time.Duration `env:"ADMIN_SESSION_SWEEP" envDefault:"30m" validate:"gt=0"`
	AdminLoginLimit   int           `env:"ADMIN_LOGIN_LIMIT" envDefault:"5" validate:"gte=1"`
	AdminLoginWindow  time.Duration `env:"ADMIN_LOGIN_WINDOW" envDefault:"15m" validate:"gt=0"`

	// Economy
	GiftMinAmount       int64 `env:"GIFT_MIN_AMOUNT" envDefault:"1" validate:"gte=1"`
	GiftDailyCap        int64 `env:"GIFT_DAILY_CAP" envDefault:"50" validate:"gtefield=GiftMinAmount"`
	PVPStake            int64 `env:"PVP_STAKE" envDefault:"10" validate:"gte=1"`
	PVPEnergyCost       int   `env:"PVP_ENERGY_COST" envDefault:"20" validate:"gte=0,ltefield=EnergyMax"`
	EnergyMax           int   `env:"ENERGY_MAX" envDefault:"100" validate:"gte=1"`
	EnergyRegenPerHour  int   `env:"ENERGY_REGEN_PER_HOUR" envDefault:"10" validate:"gte=0"`
	VacationDaysPerYear int   `env:"VACATION_DAYS_PER_YEAR" envDefault:"28" validate:"gte=0,lte=366"`
	GraduationCount     int   `env:"COURSE_GRADUATION_COUNT" envDefault:"4" validate:"gte=1"`

	// Dialogues
	DialogueRetryBudget   int           `env:"DIALOGUE_RETRY_BUDGET" envDefault:"3" validate:"gte=1"`
	DialogueIdleTimeout   time.Duration `env:"DIALOGUE_IDLE_TIMEOUT" envDefault:"24h" validate:"gt=0"`
	DialogueSweepInterval time.Duration `env:"DIALOGUE_SWEEP_INTERVAL" envDefault:"1h" validate:"gt=0"`

	// Inbound flood control
	RateLimitEvents int           `env:"RATE_LIMIT_EVENTS" envDefault:"30" validate:"gte=1"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10s" validate:"gt=0"`

	// Server
	Port             string `env:"PORT" envDefault:"3000"`
	CORSOrigins      string `env:"CORS_ORIGINS" envDefault:"*"`
	SentryDSN        string `env:"SENTRY_DSN"`
	AppEnv           string `env:"APP_ENV" envDefault:"development"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30" validate:"gte=1"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !telegramTokenPattern.MatchString(c.TelegramToken) {
		return ErrInvalidToken
	}
	if c.StoreDriver == "postgres" && c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if c.BotMode == "webhook" && (c.WebhookURL == "" || c.WebhookSecret == "") {
		return errors.New("WEBHOOK_URL and WEBHOOK_SECRET are required in webhook mode")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
