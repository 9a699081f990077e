package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "djforge",
			Password: "secret", Name: "djforge", SSLMode: "disable", MaxConns: 25,
		},
		NATS: NATSConfig{URL: "nats://localhost:4222"},
		LLM: LLMConfig{
			APIKey:      "sk-test",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     30 * time.Second,
		},
		Conversation: ConversationConfig{
			MaxEntries:    8,
			TTLSeconds:    30 * 24 * 3600,
			MaxFieldLen:   500,
			MaxResponseSz: 4096,
		},
		JWT: JWTConfig{
			AccessSecret: "access-secret-that-is-at-least-32-chars!",
			AccessExpiry: 15 * time.Minute,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_JWTAccessSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected JWT_ACCESS_SECRET error, got: %v", err)
	}
}

func TestValidate_LLMAPIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("expected LLM_API_KEY error, got: %v", err)
	}
}

func TestValidate_DBPasswordOnlyWhenAuditEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error with audit disabled, got: %v", err)
	}

	cfg.Audit.Enabled = true
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error with audit enabled, got: %v", err)
	}
}

func TestValidate_PortRanges(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got: %v", err)
	}

	cfg = validConfig()
	cfg.Redis.Port = 70000
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "REDIS_PORT") {
		t.Fatalf("expected REDIS_PORT error, got: %v", err)
	}
}

func TestValidate_ConversationBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Conversation.MaxEntries = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "CONVERSATION_MAX_ENTRIES") {
		t.Fatalf("expected CONVERSATION_MAX_ENTRIES error, got: %v", err)
	}
}

func TestValidate_TemperatureRange(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 3.5
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "LLM_TEMPERATURE") {
		t.Fatalf("expected LLM_TEMPERATURE error, got: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	cfg.LLM.APIKey = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") || !strings.Contains(err.Error(), "LLM_API_KEY") {
		t.Fatalf("expected both errors reported, got: %v", err)
	}
}
