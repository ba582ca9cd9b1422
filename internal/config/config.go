package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Addr        string
	DBDSN       string
	LogLevel    string
	CORSOrigins []string

	FCMProjectID   string
	FCMCredentials string

	RequestRetention time.Duration
}

// Load reads .env from the working directory, if present, then the process environment.
func Load() (Config, error) {
	if err := loadDotEnvFile(".env", os.Setenv, os.Getenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf(".env: %w", err)
	}
	return LoadFromEnv(os.Getenv)
}

// loadDotEnvFile copies variables from path into the environment. Variables that are already set
// win, and empty values are skipped.
func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, v := range vars {
		if v == "" || getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:            getenv("APP_ENV"),
		Addr:           getenv("APP_ADDR"),
		DBDSN:          getenv("APP_DB_DSN"),
		LogLevel:       getenv("APP_LOG_LEVEL"),
		FCMProjectID:   strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentials: strings.TrimSpace(getenv("APP_FCM_CREDENTIALS")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	origins, err := parseOrigins(getenv("APP_CORS_ORIGINS"))
	if err != nil {
		return Config{}, err
	}
	cfg.CORSOrigins = origins

	retentionRaw := getenv("APP_REQUEST_RETENTION")
	if retentionRaw == "" {
		cfg.RequestRetention = 30 * 24 * time.Hour
	} else {
		d, err := time.ParseDuration(retentionRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_REQUEST_RETENTION: %w", err)
		}
		if d <= 0 {
			return Config{}, errors.New("APP_REQUEST_RETENTION: must be > 0")
		}
		cfg.RequestRetention = d
	}

	if cfg.FCMProjectID != "" && cfg.FCMCredentials == "" {
		return Config{}, errors.New("APP_FCM_CREDENTIALS: required when APP_FCM_PROJECT_ID is set")
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.CORSOrigins) == 0 {
			return Config{}, errors.New("APP_CORS_ORIGINS: required in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) PushEnabled() bool { return c.FCMCredentials != "" }

// parseOrigins accepts "*" or a comma separated list of absolute http(s) origins.
func parseOrigins(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" || seen[p] {
			continue
		}
		if p != "*" {
			u, err := url.Parse(p)
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				return nil, fmt.Errorf("APP_CORS_ORIGINS: invalid origin %q", p)
			}
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}
