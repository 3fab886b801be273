// Package config reads service configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Addr        string
	Environment string

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// PostgresDSN empty means in-memory stores (local runs, tests).
	PostgresDSN string
	// RedisURL empty means the in-process remark lock.
	RedisURL string

	// SendGridKey empty means the console mailer.
	SendGridKey string
	MailFrom    string
	MailName    string

	// KafkaBrokers empty disables the audit fan-out sink.
	KafkaBrokers string
	KafkaTopic   string

	AuditBuffer int
}

// FromEnv builds the configuration, defaulting every knob to a working
// local setup.
func FromEnv() Config {
	return Config{
		Addr:        envOr("SKILLAUDIT_ADDR", ":8080"),
		Environment: envOr("SKILLAUDIT_ENV", "development"),

		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "skillaudit"),
		TokenTTL:      durationOr("TOKEN_TTL", 12*time.Hour),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SendGridKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:    envOr("MAIL_FROM", "audits@skillaudit.local"),
		MailName:    envOr("MAIL_FROM_NAME", "Center Audit Desk"),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   envOr("KAFKA_AUDIT_TOPIC", "skillaudit.audit-events"),

		AuditBuffer: 256,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
