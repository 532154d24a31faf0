package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	JWTSecret    string
	// NotifyURLs are shoutrrr service URLs escalated alerts are sent to.
	NotifyURLs []string
	// AuditKey is the 32-byte key used by the audit trail encryptor.
	AuditKey []byte
	Security SecurityConfig
}

// SecurityConfig holds the tunables of the request-security pipeline.
type SecurityConfig struct {
	// MaxRequests is the per-identity request budget inside Window.
	MaxRequests int
	// Window is the trailing rate-limit window duration.
	Window time.Duration
	// Patterns overrides the built-in suspicious content rules when set.
	// Each entry is "id:pattern"; the order is the evaluation order.
	Patterns []string
	// ThreatThreshold is the score at which an assessment escalates.
	ThreatThreshold float64
	// CorrelationWindow bounds how far apart grouped alert events may be.
	CorrelationWindow time.Duration
	// SignalWeights maps signal names to their scoring weight.
	SignalWeights map[string]float64
	// BlockTTL makes swept blocks expire; zero keeps blocks permanent.
	BlockTTL time.Duration
	// BackgroundWorkers bounds concurrent scoring/audit tasks.
	BackgroundWorkers int
	// BackgroundTimeout bounds a single background task.
	BackgroundTimeout time.Duration
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:  getEnv("ARGUS_ENV", "development"),
		HTTPPort:     getEnv("ARGUS_HTTP_PORT", "8080"),
		DatabasePath: getEnv("ARGUS_DB_PATH", filepath.Join("data", "argus.db")),
		JWTSecret:    getEnv("ARGUS_JWT_SECRET", ""),
		Security: SecurityConfig{
			MaxRequests:       getEnvInt("ARGUS_RATE_MAX_REQUESTS", 100),
			Window:            getEnvDuration("ARGUS_RATE_WINDOW", time.Minute),
			ThreatThreshold:   getEnvFloat("ARGUS_THREAT_THRESHOLD", 0.7),
			CorrelationWindow: getEnvDuration("ARGUS_CORRELATION_WINDOW", 5*time.Minute),
			SignalWeights: map[string]float64{
				"pattern":  getEnvFloat("ARGUS_SIGNAL_WEIGHT_PATTERN", 0.5),
				"rate":     getEnvFloat("ARGUS_SIGNAL_WEIGHT_RATE", 0.3),
				"behavior": getEnvFloat("ARGUS_SIGNAL_WEIGHT_BEHAVIOR", 0.2),
			},
			BlockTTL:          getEnvDuration("ARGUS_BLOCK_TTL", 0),
			BackgroundWorkers: getEnvInt("ARGUS_BG_WORKERS", 32),
			BackgroundTimeout: getEnvDuration("ARGUS_BG_TIMEOUT", 5*time.Second),
		},
	}

	if raw := os.Getenv("ARGUS_SUSPICIOUS_PATTERNS"); raw != "" {
		for _, p := range strings.Split(raw, ";") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.Security.Patterns = append(cfg.Security.Patterns, p)
			}
		}
	}

	if raw := os.Getenv("ARGUS_NOTIFY_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				cfg.NotifyURLs = append(cfg.NotifyURLs, u)
			}
		}
	}

	key, err := loadAuditKey(cfg.Environment)
	if err != nil {
		return Config{}, err
	}
	cfg.AuditKey = key

	// Negative weights would break scorer monotonicity; clamp at load time.
	for name, w := range cfg.Security.SignalWeights {
		if w < 0 {
			cfg.Security.SignalWeights[name] = 0
		}
	}

	return cfg, nil
}

// loadAuditKey reads ARGUS_AUDIT_KEY (hex, 32 bytes). Production requires an
// explicit key; development derives a fixed one so the server boots unconfigured.
func loadAuditKey(environment string) ([]byte, error) {
	if raw := os.Getenv("ARGUS_AUDIT_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode ARGUS_AUDIT_KEY: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("ARGUS_AUDIT_KEY must be 32 bytes, got %d", len(key))
		}
		return key, nil
	}
	if environment != "development" {
		return nil, fmt.Errorf("ARGUS_AUDIT_KEY is required outside development")
	}
	sum := sha256.Sum256([]byte("argus-development-audit-key"))
	return sum[:], nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}

	return fallback
}
