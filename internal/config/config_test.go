package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SESSION_TIMEOUT", "")
	t.Setenv("PRODUCE_OWNERSHIP_ENFORCED", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("DatabaseDriver = %q, want postgres", cfg.DatabaseDriver)
	}
	if cfg.SessionTimeout != 3600 {
		t.Errorf("SessionTimeout = %d, want 3600", cfg.SessionTimeout)
	}
	if cfg.ProduceOwnershipEnforced {
		t.Error("ownership enforcement should be off by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "MySQL")
	t.Setenv("SESSION_TIMEOUT", "60")
	t.Setenv("PRODUCE_OWNERSHIP_ENFORCED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("WHATSAPP_API_URL", "http://wa.test")
	t.Setenv("OPERATOR_PHONE", "0812")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.DatabaseDriver != "mysql" {
		t.Errorf("DatabaseDriver = %q, want mysql", cfg.DatabaseDriver)
	}
	if cfg.SessionTimeout != 60 {
		t.Errorf("SessionTimeout = %d, want 60", cfg.SessionTimeout)
	}
	if !cfg.ProduceOwnershipEnforced {
		t.Error("ownership enforcement should be on")
	}
	want := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.CORSOrigins, want)
	}
	if !cfg.NotificationsEnabled() {
		t.Error("notifications should be enabled")
	}
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		env     string
		secret  string
		wantErr bool
	}{
		{"production", "", true},
		{"production", "your_jwt_secret", true},
		{"production", "s3cr3t-from-vault", false},
		{"development", "", false},
	}

	for _, tt := range tests {
		t.Setenv("ENV", tt.env)
		t.Setenv("JWT_SECRET", tt.secret)

		err := Load().Validate()
		if tt.wantErr && !errors.Is(err, ErrDefaultJWTSecret) {
			t.Errorf("ENV=%s JWT_SECRET=%q: expected ErrDefaultJWTSecret, got %v", tt.env, tt.secret, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ENV=%s JWT_SECRET=%q: unexpected error %v", tt.env, tt.secret, err)
		}
	}
}
