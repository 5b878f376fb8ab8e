package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	BaseURL   string
	UserAgent string

	TimeoutSec      int
	RetryMax        int
	MaxConnsPerHost int

	MaxConcurrency int

	RedisURL string

	// ExtraHeaders come from an optional YAML file (key: value) and are
	// sent with every API request, overriding the defaults.
	HeadersFile  string
	ExtraHeaders map[string]string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		UserAgent:       "chess-guru/0.1.0",
		TimeoutSec:      20,
		RetryMax:        5,
		MaxConnsPerHost: 64,
		MaxConcurrency:  10,
	}

	cfg.BaseURL = strings.TrimSpace(os.Getenv("CHESSCOM_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_USER_AGENT")); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_RETRY_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RetryMax = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_MAX_CONNS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConnsPerHost = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_MAX_CONCURRENCY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrency = n
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.HeadersFile = strings.TrimSpace(os.Getenv("CHESSCOM_HEADERS_FILE"))
	if cfg.HeadersFile != "" {
		headers, err := loadHeadersFile(cfg.HeadersFile)
		if err != nil {
			return nil, err
		}
		cfg.ExtraHeaders = headers
	}

	return cfg, nil
}

func loadHeadersFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read headers file: %w", err)
	}
	var headers map[string]string
	if err := yaml.Unmarshal(raw, &headers); err != nil {
		return nil, fmt.Errorf("parse headers file %s: %w", path, err)
	}
	for k := range headers {
		if strings.TrimSpace(k) == "" {
			delete(headers, k)
		}
	}
	return headers, nil
}
