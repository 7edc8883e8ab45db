// Package config provides environment-driven configuration for the audit
// ledger daemon.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	// DatabaseURL points at the archive database. Empty runs the ledger
	// in memory-only mode: fully functional, nothing survives restarts.
	DatabaseURL Secret

	// APIKey authenticates every request to the HTTP API.
	APIKey Secret

	Port             string
	ListenHost       string
	CORSOrigins      []string
	LogLevel         string
	ArchiveQueueSize int
	EventBufferSize  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		APIKey:      Secret(envOrDefault("API_KEY", "")),
		Port:        envOrDefault("PORT", "8080"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
	}

	queueSize, err := strconv.Atoi(envOrDefault("ARCHIVE_QUEUE_SIZE", "1024"))
	if err != nil || queueSize < 1 || queueSize > 100000 {
		return nil, fmt.Errorf("ARCHIVE_QUEUE_SIZE must be an integer between 1 and 100000")
	}
	cfg.ArchiveQueueSize = queueSize

	bufferSize, err := strconv.Atoi(envOrDefault("EVENT_BUFFER_SIZE", "256"))
	if err != nil || bufferSize < 1 || bufferSize > 65536 {
		return nil, fmt.Errorf("EVENT_BUFFER_SIZE must be an integer between 1 and 65536")
	}
	cfg.EventBufferSize = bufferSize

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// ArchiveEnabled reports whether an archive database is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL.Value() != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
