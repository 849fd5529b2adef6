package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Env  string
	Port int

	DBURL         string
	DBMaxConns    int32
	StorageDriver string
	AutoMigrate   bool

	JWTSecret    string
	JWTAccessTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTelEnabled  bool
	OTelEndpoint string
}

// raw mirrors the environment; it is converted into Config once validated.
type raw struct {
	AppEnv              string `mapstructure:"APP_ENV"`
	Port                int    `mapstructure:"PORT"`
	DBHost              string `mapstructure:"DB_HOST"`
	DBPort              string `mapstructure:"DB_PORT"`
	DBUser              string `mapstructure:"DB_USER"`
	DBPassword          string `mapstructure:"DB_PASSWORD"`
	DBName              string `mapstructure:"DB_NAME"`
	DBSSLMode           string `mapstructure:"DB_SSLMODE"`
	DBMaxConns          int32  `mapstructure:"DB_MAX_CONNS"`
	StorageDriver       string `mapstructure:"STORAGE_DRIVER"`
	AutoMigrate         bool   `mapstructure:"AUTO_MIGRATE"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `mapstructure:"JWT_ACCESS_TTL_MINUTES"`
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int    `mapstructure:"REDIS_DB"`
	CacheTTLSeconds     int    `mapstructure:"CACHE_TTL_SECONDS"`
	CORSAllowedOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	MaxBodyBytes        int64  `mapstructure:"MAX_BODY_BYTES"`
	OTelEnabled         bool   `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint        string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var defaults = map[string]any{
	"APP_ENV":                     "dev",
	"PORT":                        8080,
	"DB_HOST":                     "127.0.0.1",
	"DB_PORT":                     "5432",
	"DB_USER":                     "bookmarkhub",
	"DB_PASSWORD":                 "bookmarkhub",
	"DB_NAME":                     "bookmarkhub",
	"DB_SSLMODE":                  "disable",
	"DB_MAX_CONNS":                5,
	"STORAGE_DRIVER":              StorageDriverPostgres,
	"AUTO_MIGRATE":                true,
	"JWT_SECRET":                  "",
	"JWT_ACCESS_TTL_MINUTES":      15,
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"CACHE_TTL_SECONDS":           30,
	"CORS_ALLOWED_ORIGINS":        "",
	"MAX_BODY_BYTES":              1 << 20,
	"OTEL_ENABLED":                false,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
}

// Load reads an optional .env file and the process environment.
func Load() (Config, error) {
	// a missing .env is fine, the environment is the source of truth
	_ = godotenv.Load()

	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// The dev secret fallback needs APP_ENV set on purpose, not just defaulted.
	_, envSet := os.LookupEnv("APP_ENV")
	cfg := fromRaw(r, envSet)

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func fromRaw(r raw, envSet bool) Config {
	secret := r.JWTSecret
	if secret == "" && envSet && isLocal(r.AppEnv) {
		secret = "dev-secret-change-me"
	}

	return Config{
		Env:                r.AppEnv,
		Port:               r.Port,
		DBURL:              buildDBURL(r),
		DBMaxConns:         r.DBMaxConns,
		StorageDriver:      strings.ToLower(strings.TrimSpace(r.StorageDriver)),
		AutoMigrate:        r.AutoMigrate,
		JWTSecret:          secret,
		JWTAccessTTL:       time.Duration(r.JWTAccessTTLMinutes) * time.Minute,
		RedisAddr:          r.RedisAddr,
		RedisPassword:      r.RedisPassword,
		RedisDB:            r.RedisDB,
		CacheTTL:           time.Duration(r.CacheTTLSeconds) * time.Second,
		CORSAllowedOrigins: splitList(r.CORSAllowedOrigins),
		MaxBodyBytes:       r.MaxBodyBytes,
		OTelEnabled:        r.OTelEnabled,
		OTelEndpoint:       r.OTelEndpoint,
	}
}

func validate(cfg Config) error {
	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if cfg.JWTAccessTTL <= 0 {
		return errors.New("JWT_ACCESS_TTL_MINUTES must be positive")
	}

	if cfg.Port <= 0 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	return nil
}

func buildDBURL(r raw) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(r.DBUser, r.DBPassword),
		Host:     r.DBHost + ":" + r.DBPort,
		Path:     "/" + r.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(r.DBSSLMode),
	}

	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLocal(env string) bool {
	return env == "dev" || env == "test"
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
