package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Stream   StreamConfig
	HubSpot  HubSpotConfig
	Support  SupportConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	ClientTimeoutSeconds  int
	EventSinkTimeoutMS    int
}

// PostgresConfig holds DB connection values for the registration ledger.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	EventsChannel string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StreamConfig holds chat platform credentials.
type StreamConfig struct {
	APIKey          string
	APISecret       string
	BaseURL         string
	TokenTTLMinutes int
}

// HubSpotConfig holds CRM credentials and the fixed contact property.
type HubSpotConfig struct {
	APIKey         string
	BaseURL        string
	CustomProperty string
	CustomValue    string
}

// SupportConfig is the admin identity every customer channel is opened with.
type SupportConfig struct {
	UserID   string
	UserName string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "chat-registration-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 0),
			ClientTimeoutSeconds:  getEnvAsInt("HTTP_CLIENT_TIMEOUT_SECONDS", 30),
			EventSinkTimeoutMS:    getEnvAsInt("EVENT_SINK_TIMEOUT_MS", 500),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          os.Getenv("REDIS_ADDR"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			EventsChannel: getEnv("REDIS_EVENTS_CHANNEL", "registrations"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stream: StreamConfig{
			APIKey:          os.Getenv("STREAM_API_KEY"),
			APISecret:       os.Getenv("STREAM_API_SECRET"),
			BaseURL:         getEnv("STREAM_BASE_URL", "https://chat.stream-io-api.com"),
			TokenTTLMinutes: getEnvAsInt("STREAM_TOKEN_TTL_MINUTES", 0),
		},
		HubSpot: HubSpotConfig{
			APIKey:         os.Getenv("HUBSPOT_API_KEY"),
			BaseURL:        getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
			CustomProperty: getEnv("HUBSPOT_CUSTOM_PROPERTY", "your_custom_property"),
			CustomValue:    getEnv("HUBSPOT_CUSTOM_VALUE", "anything you want, even a multi-line \n string"),
		},
		Support: SupportConfig{
			UserID:   getEnv("SUPPORT_USER_ID", "adminId"),
			UserName: getEnv("SUPPORT_USER_NAME", "unique-admin-name"),
		},
	}

	return cfg, nil
}

// Validate reports missing credentials required to serve registrations.
func (c *Config) Validate() error {
	var errs []error
	if c.Stream.APIKey == "" {
		errs = append(errs, errors.New("STREAM_API_KEY is required"))
	}
	if c.Stream.APISecret == "" {
		errs = append(errs, errors.New("STREAM_API_SECRET is required"))
	}
	if c.HubSpot.APIKey == "" {
		errs = append(errs, errors.New("HUBSPOT_API_KEY is required"))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ClientTimeout bounds each outbound call to the CRM and chat platform.
func (a AppConfig) ClientTimeout() time.Duration {
	if a.ClientTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.ClientTimeoutSeconds) * time.Second
}

// EventSinkTimeout bounds the ledger write and event publish for one registration.
func (a AppConfig) EventSinkTimeout() time.Duration {
	if a.EventSinkTimeoutMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(a.EventSinkTimeoutMS) * time.Millisecond
}

// TokenTTL returns zero when customer tokens should not expire.
func (s StreamConfig) TokenTTL() time.Duration {
	if s.TokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
