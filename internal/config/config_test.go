package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_IDLE_TTL", "15")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-number")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example ")

	Load()

	if AppEnv.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", AppEnv.Port)
	}
	if AppEnv.SessionIdleTTL != 15*time.Minute {
		t.Fatalf("expected 15m idle ttl, got %s", AppEnv.SessionIdleTTL)
	}
	if AppEnv.AccessTokenTTL != time.Hour {
		t.Fatalf("expected default token ttl on bad input, got %s", AppEnv.AccessTokenTTL)
	}
	if len(AppEnv.CORSOrigins) != 2 || AppEnv.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", AppEnv.CORSOrigins)
	}
}

func TestValidateRejectsPartialSettings(t *testing.T) {
	cfg := Config{
		MongoURI:   "mongodb://localhost",
		AdminEmail: "admin@example.com",
		R2Bucket:   "receipts",
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"JWT_SECRET", "ADMIN_PASSWORD", "R2_ACCESS_KEY, R2_ENDPOINT, R2_SECRET_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidateAcceptsInMemoryDefaults(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("expected empty config to be valid, got %v", err)
	}
}
