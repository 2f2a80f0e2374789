package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gradebook service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseDriver    string
	DatabaseURL       string
	RedisURL          string
	DashboardCacheTTL time.Duration
	JWTSecret         string
	JWTTTL            time.Duration
	NATSURL           string
	NATSSubject       string
	AuthRateLimit     int
	AuthRateWindow    time.Duration
	CORSAllowOrigins  []string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Gradebook API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file:data/gradebook.db?_busy_timeout=5000")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("nats.subject", "gradebook.grade.updated")
	v.SetDefault("auth.rate_limit", 10)
	v.SetDefault("auth.rate_window", "1m")
	v.SetDefault("cors.allow_origins", "*")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	ttl, err := parseDuration(v.GetString("dashboard.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("auth.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseDriver:    strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		DashboardCacheTTL: ttl,
		JWTSecret:         v.GetString("jwt.secret"),
		JWTTTL:            jwtTTL,
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		AuthRateLimit:     v.GetInt("auth.rate_limit"),
		AuthRateWindow:    window,
		CORSAllowOrigins:  splitList(v.GetString("cors.allow_origins")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
