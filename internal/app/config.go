package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/catalog-backend/internal/data/db"
	"github.com/yungbote/catalog-backend/internal/observability"
	"github.com/yungbote/catalog-backend/internal/platform/gcp"
	"github.com/yungbote/catalog-backend/internal/platform/logger"
	"github.com/yungbote/catalog-backend/internal/services"
)

// ErrMissingDatabaseConfig is returned when neither a URL nor a host is set.
var ErrMissingDatabaseConfig = errors.New("missing database configuration: set POSTGRES_URL or POSTGRES_HOST")

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Config struct {
	Port        string
	LogMode     string
	Environment string

	Postgres db.PostgresConfig
	Storage  gcp.StorageSettings
	Redis    RedisConfig

	ListingCacheTTL    time.Duration
	UploadMaxBytes     int64
	CORSAllowedOrigins []string

	MetricsEnabled bool
	MetricsAddr    string
	Otel           observability.OtelConfig
}

// LoadDotEnv loads .env.local then .env when present. Variables already in the
// environment win.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("OBJECT_STORAGE_MODE", "")
	v.SetDefault("PRODUCTS_GCS_BUCKET_NAME", "products")
	v.SetDefault("LEGACY_GCS_BUCKET_NAME", "images")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "catalog:")
	v.SetDefault("LISTING_CACHE_TTL_SECONDS", int(services.DefaultListingTTL/time.Second))
	v.SetDefault("UPLOAD_MAX_BYTES", services.DefaultUploadMaxBytes)
	v.SetDefault("METRICS_ENABLED", false)
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "catalog-backend")
	v.SetDefault("OTEL_SAMPLER_RATIO", 1.0)
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	LoadDotEnv()
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	pgURL := strings.TrimSpace(v.GetString("POSTGRES_URL"))
	if pgURL == "" {
		pgURL = strings.TrimSpace(v.GetString("DATABASE_URL"))
	}

	credsJSON := v.GetString("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	cfg := Config{
		Port:        strings.TrimSpace(v.GetString("PORT")),
		LogMode:     strings.TrimSpace(v.GetString("LOG_MODE")),
		Environment: strings.TrimSpace(v.GetString("APP_ENV")),
		Postgres: db.PostgresConfig{
			URL:      pgURL,
			Host:     strings.TrimSpace(v.GetString("POSTGRES_HOST")),
			Port:     strings.TrimSpace(v.GetString("POSTGRES_PORT")),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			Name:     strings.TrimSpace(v.GetString("POSTGRES_NAME")),
			SSLMode:  strings.TrimSpace(v.GetString("POSTGRES_SSLMODE")),
		},
		Storage: gcp.StorageSettings{
			Mode:            v.GetString("OBJECT_STORAGE_MODE"),
			EmulatorHost:    v.GetString("STORAGE_EMULATOR_HOST"),
			PublicBaseURL:   v.GetString("OBJECT_STORAGE_PUBLIC_BASE_URL"),
			ProductsBucket:  v.GetString("PRODUCTS_GCS_BUCKET_NAME"),
			ProductsCDN:     v.GetString("PRODUCTS_CDN_DOMAIN"),
			LegacyBucket:    v.GetString("LEGACY_GCS_BUCKET_NAME"),
			LegacyCDN:       v.GetString("LEGACY_CDN_DOMAIN"),
			CredentialsJSON: credsJSON,
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_KEY_PREFIX"),
		},
		ListingCacheTTL:    time.Duration(v.GetInt("LISTING_CACHE_TTL_SECONDS")) * time.Second,
		UploadMaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		MetricsAddr:        strings.TrimSpace(v.GetString("METRICS_ADDR")),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
			Endpoint:    strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
			Headers:     v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLER_RATIO"),
		},
	}

	if cfg.ListingCacheTTL <= 0 {
		cfg.ListingCacheTTL = services.DefaultListingTTL
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = services.DefaultUploadMaxBytes
	}
	if cfg.Postgres.URL == "" && cfg.Postgres.Host == "" {
		return cfg, ErrMissingDatabaseConfig
	}

	if log != nil {
		log.Info(
			"Configuration loaded",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"postgres_host", cfg.Postgres.Host,
			"postgres_url_set", cfg.Postgres.URL != "",
			"storage_mode", cfg.Storage.Mode,
			"redis_enabled", cfg.Redis.Addr != "",
			"listing_cache_ttl", cfg.ListingCacheTTL.String(),
			"metrics_enabled", cfg.MetricsEnabled,
			"otel_enabled", cfg.Otel.Enabled,
		)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
