package config

import (
	"strings"
	"testing"
	"time"

	"kinship/database"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestParseDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Dialect() != database.DialectMySQL {
		t.Fatalf("dialect = %q", cfg.Dialect())
	}
	tokens := cfg.TokenConfig()
	if tokens.AccessTokenDuration != 7*24*time.Hour || tokens.RefreshTokenDuration != 7*24*time.Hour {
		t.Fatalf("durations = %v / %v", tokens.AccessTokenDuration, tokens.RefreshTokenDuration)
	}
	if tokens.AccessSecret != "access" || tokens.RefreshSecret != "refresh" {
		t.Fatalf("secrets = %+v", tokens)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestParseOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "/tmp/kinship.db")
	t.Setenv("ACCESS_TOKEN_DURATION", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr() != ":9000" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if !strings.HasPrefix(cfg.DatabaseDSN(), "file:/tmp/kinship.db?") {
		t.Fatalf("dsn = %q", cfg.DatabaseDSN())
	}
	if cfg.AccessTokenDuration != 15*time.Minute {
		t.Fatalf("access duration = %v", cfg.AccessTokenDuration)
	}
	if cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %q", cfg.CORSAllowedOrigins)
	}
}

func TestParseRejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
	}{
		{"missing access", "", "refresh"},
		{"missing refresh", "access", ""},
		{"same secret", "shared", "shared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_ACCESS_SECRET", tt.access)
			t.Setenv("JWT_REFRESH_SECRET", tt.refresh)
			if _, err := Parse(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "postgres")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error")
	}
}
