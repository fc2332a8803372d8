package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	ArtifactBackendLocal = "local"
	ArtifactBackendS3    = "s3"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	AI            AIConfig
	Forecast      ForecastConfig
	Artifact      ArtifactConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	TLSCAPath       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

type ForecastConfig struct {
	ModelKey       string
	DefaultPeriods int
	RetrainCron    string
}

type ArtifactConfig struct {
	Backend       string
	LocalDir      string
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKeyID string
	S3SecretKey   string
	S3UseSSL      bool
	S3Prefix      string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("ASKWIND_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid ASKWIND_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "ASKWIND_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_DB_HOST", &cfg.Database.Host); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKWIND_DB_PORT", &cfg.Database.Port); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_DB_USER", &cfg.Database.User); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_DB_PASSWORD", &cfg.Database.Password); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_DB_NAME", &cfg.Database.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_DB_TLS_CA_PATH", &cfg.Database.TLSCAPath); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKWIND_DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKWIND_DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_DB_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "ASKWIND_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKWIND_AI_MAX_RETRIES", &cfg.AI.MaxRetries); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "ASKWIND_AI_RETRY_DELAY", &cfg.AI.RetryDelay); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_FORECAST_MODEL_KEY", &cfg.Forecast.ModelKey); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "ASKWIND_FORECAST_DEFAULT_PERIODS", &cfg.Forecast.DefaultPeriods); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_FORECAST_RETRAIN_CRON", &cfg.Forecast.RetrainCron); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_BACKEND", &cfg.Artifact.Backend); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_LOCAL_DIR", &cfg.Artifact.LocalDir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_ENDPOINT", &cfg.Artifact.S3Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_REGION", &cfg.Artifact.S3Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_BUCKET", &cfg.Artifact.S3Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_ACCESS_KEY", &cfg.Artifact.S3AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_SECRET_KEY", &cfg.Artifact.S3SecretKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ASKWIND_ARTIFACT_S3_USE_SSL", &cfg.Artifact.S3UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_ARTIFACT_S3_PREFIX", &cfg.Artifact.S3Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ASKWIND_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "ASKWIND_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "ASKWIND_AUTH_REQUIRED", &cfg.Auth.Required); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "ASKWIND_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Database.Name == "" {
		return Config{}, fmt.Errorf("database name is required")
	}
	switch cfg.Artifact.Backend {
	case ArtifactBackendLocal, ArtifactBackendS3:
	default:
		return Config{}, fmt.Errorf("invalid ASKWIND_ARTIFACT_BACKEND: %q", cfg.Artifact.Backend)
	}
	if cfg.Artifact.Backend == ArtifactBackendS3 && cfg.Artifact.S3Bucket == "" {
		return Config{}, fmt.Errorf("s3 artifact backend requires ASKWIND_ARTIFACT_S3_BUCKET")
	}
	if cfg.Auth.Required && strings.TrimSpace(cfg.Auth.StaticKeys) == "" {
		return Config{}, fmt.Errorf("auth is required but no static keys are configured")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "askwind-api"},
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			Name:            "northwind",
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		AI: AIConfig{
			BaseURL:     "https://api.groq.com/openai",
			Model:       "llama-3.1-8b-instant",
			Temperature: 0.1,
			Timeout:     15 * time.Second,
			MaxRetries:  3,
			RetryDelay:  time.Second,
		},
		Forecast: ForecastConfig{
			ModelKey:       "sales_forecast.json",
			DefaultPeriods: 30,
		},
		Artifact: ArtifactConfig{
			Backend:  ArtifactBackendLocal,
			LocalDir: "artifacts",
			S3Region: "us-east-1",
			S3Bucket: "askwind",
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18000"
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Observability.LogJSON = false
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Artifact.S3UseSSL = true
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
