package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/jub0bs/cors"
	"github.com/tradebot/dashboard/internal/ui/client"
)

// UI server config - read from the environment when the tradebot-ui server starts
type Config struct {
	Environment     string        `env:"ENVIRONMENT,default=dev"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=debug"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	APIBaseURL      string        `env:"API_BASE_URL,default=http://tradebot-api:8000"`
	APIRoot         string        `env:"API_ROOT,default=/api"`
	APITimeout      time.Duration `env:"API_TIMEOUT,default=10s"`
	APIProxyEnabled bool          `env:"API_PROXY_ENABLED,default=true"` // forward /api/* to API_BASE_URL
	Language        string        `env:"UI_LANGUAGE,default=en"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS,separator=|"`
	RateLimitRPS    int32         `env:"RATE_LIMIT_RPS,default=50"`
	RateLimitBurst  int32         `env:"RATE_LIMIT_BURST,default=20"`
	MaxRequestSize  int64         `env:"MAX_REQUEST_SIZE,default=65536"` // 64KB
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

const CORSMaxAgeInSeconds = 3600

func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %v", cfg.APITimeout)
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must use http or https: %s", cfg.APIBaseURL)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("API_BASE_URL does not include a host: %s", cfg.APIBaseURL)
	}

	if !strings.HasPrefix(cfg.APIRoot, "/") {
		return fmt.Errorf("API_ROOT must start with '/', got %q", cfg.APIRoot)
	}

	if _, ok := client.SupportedLanguages[cfg.Language]; !ok {
		return fmt.Errorf("invalid UI_LANGUAGE '%s'. Valid languages: en, de", cfg.Language)
	}

	if cfg.MaxRequestSize <= 0 {
		return fmt.Errorf("max request size must be positive, got %d", cfg.MaxRequestSize)
	}

	if cfg.Environment == "prod" || cfg.Environment == "staging" {
		if len(cfg.AllowedOrigins) == 0 {
			return fmt.Errorf("ALLOWED_ORIGINS must be set in %v", cfg.Environment)
		}
		if cfg.AllowedOrigins[0] == "*" {
			return fmt.Errorf("ALLOWED_ORIGINS must not be set to '*' in %v", cfg.Environment)
		}
	}

	// default to all origins when not in prod/staging
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return nil
}

// ClientConfig returns the settings used to reach the trading bot API
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL: c.APIBaseURL,
		APIRoot: c.APIRoot,
		Timeout: c.APITimeout,
	}
}

// NewCORS creates the CORS middleware used for the proxied /api routes
func (c *Config) NewCORS() (*cors.Middleware, error) {
	// Trim whitespace from all origins
	origins := make([]string, len(c.AllowedOrigins))
	for i, origin := range c.AllowedOrigins {
		origins[i] = strings.TrimSpace(origin)
	}

	corsConfig := cors.Config{
		Origins: origins,
		Methods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		RequestHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		MaxAgeInSeconds: CORSMaxAgeInSeconds,
	}

	middleware, err := cors.NewMiddleware(corsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create CORS middleware: %w", err)
	}
	return middleware, nil
}
