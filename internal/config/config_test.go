package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/ticketdesk")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when AUTH_JWT_SECRET is missing")
	}
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when POSTGRES_DSN is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/ticketdesk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.SessionTTL() != 72*time.Hour {
		t.Errorf("expected 72h session TTL, got %v", cfg.Auth.SessionTTL())
	}
	if !cfg.Auth.CookieSecure {
		t.Error("cookies should default to secure")
	}
	if cfg.App.Addr() == "" {
		t.Error("expected a bind address")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/ticketdesk")
	t.Setenv("AUTH_SESSION_TTL_HOURS", "24")
	t.Setenv("AUTH_BCRYPT_COST", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.SessionTTL() != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %v", cfg.Auth.SessionTTL())
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Logger.Level)
	}
}
