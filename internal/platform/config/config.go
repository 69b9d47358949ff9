// Package config reads all runtime settings from the environment once at
// startup into an immutable struct that is injected into constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"votp_backend/internal/platform/password"
)

// Config holds every runtime setting the server needs.
//
// PartitionDSNs is the ordered list of partition connection strings. Index 0
// is the fallback/master partition that also hosts accounts; indexes 1..N are
// the comment data partitions. The list is fixed for the lifetime of the
// process; adding partitions is a deployment-time operation.
type Config struct {
	Addr          string
	PartitionDSNs []string
	RunMigrations bool

	// StorageTimeout bounds every database call issued by the repositories.
	StorageTimeout time.Duration

	RedisAddr     string
	RedisPassword string

	JWTSecret     string
	TokenValidity time.Duration
	CodeExpiry    time.Duration
	Argon2        password.Params

	SMTP SMTPConfig
}

// SMTPConfig holds settings for the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds a single dispatch to the relay.
	Timeout time.Duration
	// SkipVerify disables TLS certificate verification, for relays with
	// self-signed certificates in development.
	SkipVerify bool
}

// Load builds a Config from environment variables, applying development
// defaults for everything except the partition DSN list.
func Load() (*Config, error) {
	dsns := splitDSNs(os.Getenv("DB_DSNS"))
	if len(dsns) == 0 {
		return nil, fmt.Errorf("DB_DSNS must list at least the fallback partition DSN")
	}

	cfg := &Config{
		Addr:           envOr("ADDR", ":8080"),
		PartitionDSNs:  dsns,
		RunMigrations:  os.Getenv("RUN_MIGRATIONS") == "true",
		StorageTimeout: envDurationOr("DB_TIMEOUT", 5*time.Second),
		RedisAddr:      redisAddr(),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      envOr("JWT_SECRET", ""),
		TokenValidity:  envDurationOr("TOKEN_VALIDITY", 24*time.Hour),
		CodeExpiry:     envDurationOr("CODE_EXPIRY", 10*time.Minute),
		Argon2:         argon2Params(),
		SMTP: SMTPConfig{
			Host:       os.Getenv("SMTP_HOST"),
			Port:       envIntOr("SMTP_PORT", 587),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			From:       envOr("SMTP_FROM", "noreply@votp.com"),
			Timeout:    envDurationOr("SMTP_TIMEOUT", 10*time.Second),
			SkipVerify: os.Getenv("SMTP_SKIP_VERIFY") == "true",
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

// DataPartitions returns the number of data partitions, excluding the
// fallback/master.
func (c *Config) DataPartitions() int {
	return len(c.PartitionDSNs) - 1
}

func splitDSNs(raw string) []string {
	var dsns []string
	for _, dsn := range strings.Split(raw, ",") {
		if dsn = strings.TrimSpace(dsn); dsn != "" {
			dsns = append(dsns, dsn)
		}
	}
	return dsns
}

func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return ""
	}
	return host + ":" + envOr("REDIS_PORT", "6379")
}

func argon2Params() password.Params {
	p := password.DefaultParams()
	if v := envIntOr("ARGON2_MEMORY_KIB", 0); v > 0 {
		p.Memory = uint32(v)
	}
	if v := envIntOr("ARGON2_TIME", 0); v > 0 {
		p.Time = uint32(v)
	}
	if v := envIntOr("ARGON2_THREADS", 0); v > 0 {
		p.Threads = uint8(v)
	}
	return p
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
