package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string `mapstructure:"ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	// Empty DATABASE_URL runs on the in-memory sample catalogue.
	DBUrl     string `mapstructure:"DATABASE_URL"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Empty REDIS_ADDR keeps sessions in memory and disables reminders.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	DefaultTimezone  string        `mapstructure:"DEFAULT_TIMEZONE"`
	FreeIntroMinutes int           `mapstructure:"FREE_INTRO_MINUTES"`
	ReminderLead     time.Duration `mapstructure:"REMINDER_LEAD"`

	RateLimitPerMin   int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
	SeedFixtures      bool   `mapstructure:"SEED_FIXTURES"`
	VerifyEmailDomain bool   `mapstructure:"VERIFY_EMAIL_DOMAIN"`
}

var defaults = map[string]any{
	"ENV":                 "development",
	"SERVER_PORT":         "8080",
	"DATABASE_URL":        "",
	"JWT_SECRET":          "changeme",
	"REDIS_ADDR":          "",
	"REDIS_PASSWORD":      "",
	"REDIS_SESSION_DB":    0,
	"REDIS_QUEUE_DB":      1,
	"SESSION_TTL":         "30m",
	"DEFAULT_TIMEZONE":    "UTC",
	"FREE_INTRO_MINUTES":  15,
	"REMINDER_LEAD":       "24h",
	"RATE_LIMIT_PER_MIN":  120,
	"CORS_ORIGINS":        "*",
	"SEED_FIXTURES":       true,
	"VERIFY_EMAIL_DOMAIN": false,
}

// Load reads .env (when present), an optional config.yaml and the
// environment, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.FreeIntroMinutes <= 0 {
		return nil, fmt.Errorf("FREE_INTRO_MINUTES must be positive, got %d", cfg.FreeIntroMinutes)
	}

	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Origins splits CORS_ORIGINS on commas. "*" allows any origin.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
