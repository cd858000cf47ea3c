package config

import (
	"errors"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123456:ABC-def_ghi")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.GiftDailyCap != 50 || cfg.PVPStake != 10 || cfg.PVPEnergyCost != 20 {
		t.Fatalf("unexpected economy defaults: %+v", cfg)
	}
	if cfg.DialogueRetryBudget != 3 {
		t.Fatalf("expected retry budget 3, got %d", cfg.DialogueRetryBudget)
	}
	if cfg.AdminSessionTTL != time.Hour {
		t.Fatalf("expected 1h session ttl, got %s", cfg.AdminSessionTTL)
	}
	if cfg.BotMode != "polling" || cfg.StoreDriver != "postgres" {
		t.Fatalf("unexpected mode defaults: %s %s", cfg.BotMode, cfg.StoreDriver)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"malformed token", map[string]string{"TELEGRAM_TOKEN": "not-a-token"}},
		{"unknown mode", map[string]string{"BOT_MODE": "carrier-pigeon"}},
		{"short admin password", map[string]string{"ADMIN_PASSWORD": "short"}},
		{"cap below minimum", map[string]string{"GIFT_MIN_AMOUNT": "10", "GIFT_DAILY_CAP": "5"}},
		{"webhook without url", map[string]string{"BOT_MODE": "webhook"}},
		{"postgres without password", map[string]string{"DB_PASSWORD": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadMemoryStoreNeedsNoPassword(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("STORE_DRIVER", "memory")

	if _, err := Load(); err != nil {
		t.Fatalf("expected memory store to load without DB_PASSWORD, got %v", err)
	}
}

func TestInvalidTokenSentinel(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "abc:def")

	_, err := Load()
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC"
	if got := cfg.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
