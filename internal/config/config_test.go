package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %s", cfg.Addr())
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.ReminderLead != 24*time.Hour {
		t.Fatalf("durations = %s %s", cfg.SessionTTL, cfg.ReminderLead)
	}
	if cfg.FreeIntroMinutes != 15 || cfg.DefaultTimezone != "UTC" {
		t.Fatalf("intro/tz = %d %s", cfg.FreeIntroMinutes, cfg.DefaultTimezone)
	}
	if cfg.DBUrl != "" || cfg.RedisAddr != "" {
		t.Fatal("storage should default to in-memory")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("FREE_INTRO_MINUTES", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("VERIFY_EMAIL_DOMAIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.IsProduction() || cfg.Addr() != ":9090" {
		t.Fatalf("env/port = %s %s", cfg.Env, cfg.Addr())
	}
	if cfg.SessionTTL != 45*time.Minute || cfg.FreeIntroMinutes != 20 {
		t.Fatalf("ttl/intro = %s %d", cfg.SessionTTL, cfg.FreeIntroMinutes)
	}
	if !cfg.VerifyEmailDomain {
		t.Fatal("VERIFY_EMAIL_DOMAIN not read")
	}

	origins := cfg.Origins()
	if len(origins) != 2 || origins[1] != "https://b.example" {
		t.Fatalf("origins = %v", origins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FREE_INTRO_MINUTES", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero intro minutes")
	}
}
