package config

import (
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "OTP_VALIDITY", "OTP_MIXING_CONSTANT",
		"SESSION_SECRET_KEY", "SESSION_EXPIRY", "AUDIT_TOKEN",
		"REDIS_ENDPOINT", "REDIS_PASSWORD", "REDIS_DB",
		"DYNAMODB_ENDPOINT", "DYNAMODB_REGION", "DYNAMODB_AUDIT_TABLE", "AUDIT_RETENTION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET_KEY", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "3000")
	}
	if cfg.OTP.Validity != 5*time.Minute {
		t.Errorf("OTP.Validity = %v, want 5m", cfg.OTP.Validity)
	}
	if cfg.OTP.MixingConstant != 982451653 {
		t.Errorf("OTP.MixingConstant = %d, want 982451653", cfg.OTP.MixingConstant)
	}
	if cfg.Session.Expiry != 15*time.Minute {
		t.Errorf("Session.Expiry = %v, want 15m", cfg.Session.Expiry)
	}
	if cfg.Redis.Endpoint != "" {
		t.Errorf("Redis.Endpoint = %q, want empty", cfg.Redis.Endpoint)
	}
	if cfg.DynamoDB.AuditTable != "" {
		t.Errorf("DynamoDB.AuditTable = %q, want empty", cfg.DynamoDB.AuditTable)
	}
	if cfg.DynamoDB.AuditRetention != 720*time.Hour {
		t.Errorf("DynamoDB.AuditRetention = %v, want 720h", cfg.DynamoDB.AuditRetention)
	}
	if cfg.Audit.Token != "" {
		t.Errorf("Audit.Token = %q, want empty", cfg.Audit.Token)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET_KEY", testSecret)
	t.Setenv("PORT", "8080")
	t.Setenv("OTP_VALIDITY", "90s")
	t.Setenv("OTP_MIXING_CONSTANT", "1000003")
	t.Setenv("REDIS_ENDPOINT", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DYNAMODB_AUDIT_TABLE", "OTPAudit")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.OTP.Validity != 90*time.Second {
		t.Errorf("OTP.Validity = %v, want 90s", cfg.OTP.Validity)
	}
	if cfg.OTP.MixingConstant != 1000003 {
		t.Errorf("OTP.MixingConstant = %d, want 1000003", cfg.OTP.MixingConstant)
	}
	if cfg.Redis.Endpoint != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.DynamoDB.AuditTable != "OTPAudit" {
		t.Errorf("DynamoDB.AuditTable = %q, want OTPAudit", cfg.DynamoDB.AuditTable)
	}
}

func TestLoad_UnparsableValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET_KEY", testSecret)
	t.Setenv("OTP_VALIDITY", "five minutes")
	t.Setenv("OTP_MIXING_CONSTANT", "prime")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OTP.Validity != 5*time.Minute {
		t.Errorf("OTP.Validity = %v, want 5m", cfg.OTP.Validity)
	}
	if cfg.OTP.MixingConstant != 982451653 {
		t.Errorf("OTP.MixingConstant = %d, want default", cfg.OTP.MixingConstant)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"SESSION_SECRET_KEY": "short"}},
		{"negative validity", map[string]string{"SESSION_SECRET_KEY": testSecret, "OTP_VALIDITY": "-1m"}},
		{"sub-millisecond validity", map[string]string{"SESSION_SECRET_KEY": testSecret, "OTP_VALIDITY": "500us"}},
		{"short audit token", map[string]string{"SESSION_SECRET_KEY": testSecret, "AUDIT_TOKEN": "operator"}},
		{"zero mixing constant", map[string]string{"SESSION_SECRET_KEY": testSecret, "OTP_MIXING_CONSTANT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load should fail")
			}
		})
	}
}

func TestLoad_OneMillisecondValidity(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET_KEY", testSecret)
	t.Setenv("OTP_VALIDITY", "1ms")
	t.Setenv("AUDIT_TOKEN", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OTP.Validity.Milliseconds() != 1 {
		t.Errorf("OTP.Validity = %v, want 1ms", cfg.OTP.Validity)
	}
	if cfg.Audit.Token != testSecret {
		t.Errorf("Audit.Token = %q, want %q", cfg.Audit.Token, testSecret)
	}
}
