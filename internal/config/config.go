package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	OTP      OTPConfig
	Session  SessionConfig
	Audit    AuditConfig
	Redis    RedisConfig
	DynamoDB DynamoDBConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type OTPConfig struct {
	Validity       time.Duration
	MixingConstant int64
}

type SessionConfig struct {
	SecretKey string
	Expiry    time.Duration
}

// AuditConfig guards the operator audit endpoint. An empty Token leaves the
// endpoint unregistered.
type AuditConfig struct {
	Token string
}

// RedisConfig is optional; an empty Endpoint disables outcome counters.
type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

// DynamoDBConfig is optional; an empty AuditTable disables the audit log.
type DynamoDBConfig struct {
	Endpoint       string
	Region         string
	AuditTable     string
	AuditRetention time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OTP: OTPConfig{
			Validity:       getEnvAsDuration("OTP_VALIDITY", 5*time.Minute),
			MixingConstant: getEnvAsInt64("OTP_MIXING_CONSTANT", 982451653),
		},
		Session: SessionConfig{
			SecretKey: getEnv("SESSION_SECRET_KEY", ""),
			Expiry:    getEnvAsDuration("SESSION_EXPIRY", 15*time.Minute),
		},
		Audit: AuditConfig{
			Token: getEnv("AUDIT_TOKEN", ""),
		},
		Redis: RedisConfig{
			Endpoint: getEnv("REDIS_ENDPOINT", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		DynamoDB: DynamoDBConfig{
			Endpoint:       getEnv("DYNAMODB_ENDPOINT", ""),
			Region:         getEnv("DYNAMODB_REGION", "us-east-1"),
			AuditTable:     getEnv("DYNAMODB_AUDIT_TABLE", ""),
			AuditRetention: getEnvAsDuration("AUDIT_RETENTION", 30*24*time.Hour),
		},
	}

	if cfg.Session.SecretKey == "" {
		return nil, fmt.Errorf("SESSION_SECRET_KEY environment variable is required")
	}

	if len(cfg.Session.SecretKey) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET_KEY must be at least 32 bytes (256 bits)")
	}

	if cfg.OTP.Validity < time.Millisecond {
		return nil, fmt.Errorf("OTP_VALIDITY must be at least 1ms")
	}

	if cfg.Audit.Token != "" && len(cfg.Audit.Token) < 32 {
		return nil, fmt.Errorf("AUDIT_TOKEN must be at least 32 bytes")
	}

	if cfg.OTP.MixingConstant <= 0 {
		return nil, fmt.Errorf("OTP_MIXING_CONSTANT must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
