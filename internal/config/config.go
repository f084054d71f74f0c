package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type StorageConfig struct {
	Driver  string
	DataDir string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type RideHailConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	ServerToken  string
	Timeout      time.Duration
	Platform     string
}

// Enabled reports whether any credentials are configured.
func (c RideHailConfig) Enabled() bool {
	return c.ServerToken != "" || (c.ClientID != "" && c.ClientSecret != "")
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type Config struct {
	Environment string
	Timezone    string
	Location    *time.Location
	HTTP        HTTPConfig
	Storage     StorageConfig
	DB          DBConfig
	Auth        AuthConfig
	RideHail    RideHailConfig
	RateLimit   RateLimitConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Timezone:    v.GetString("APP_TIMEZONE"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			DataDir: v.GetString("STORAGE_DATA_DIR"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		RideHail: RideHailConfig{
			BaseURL:      v.GetString("RIDEHAIL_BASE_URL"),
			TokenURL:     v.GetString("RIDEHAIL_TOKEN_URL"),
			ClientID:     v.GetString("RIDEHAIL_CLIENT_ID"),
			ClientSecret: v.GetString("RIDEHAIL_CLIENT_SECRET"),
			ServerToken:  v.GetString("RIDEHAIL_SERVER_TOKEN"),
			Platform:     v.GetString("RIDEHAIL_PLATFORM"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
			Burst:     v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Warsaw"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFile
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "user_data"
	}
	if cfg.RideHail.BaseURL == "" {
		cfg.RideHail.BaseURL = "https://sandbox-api.uber.com/v1.2"
	}
	if cfg.RideHail.TokenURL == "" {
		cfg.RideHail.TokenURL = "https://sandbox-login.uber.com/oauth/v2/token"
	}
	if cfg.RideHail.Platform == "" {
		cfg.RideHail.Platform = "Uber"
	}
	if cfg.RateLimit.PerMinute == 0 {
		cfg.RateLimit.PerMinute = 6
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 3
	}

	timeout := v.GetString("RIDEHAIL_TIMEOUT")
	if timeout == "" {
		timeout = "30s"
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid RIDEHAIL_TIMEOUT: %w", err)
	}
	cfg.RideHail.Timeout = d

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Storage.Driver {
	case StorageFile:
	case StoragePostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required for %s storage", StoragePostgres)
		}
		if cfg.DB.ConnMaxLifetime != "" {
			if _, err := time.ParseDuration(cfg.DB.ConnMaxLifetime); err != nil {
				return fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.RideHail.Timeout <= 0 {
		return fmt.Errorf("RIDEHAIL_TIMEOUT must be positive")
	}
	if cfg.RateLimit.PerMinute < 0 || cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
