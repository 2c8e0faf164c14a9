package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LegacySigningKey is the base64 HMAC key tokens were historically signed with.
// Deployments should override it through AUTH_JWT_SECRET.
const LegacySigningKey = "413F442847284862506553685660597033733676397924422645294848406351"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Seed         SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the
// principal cache.
type RedisConfig struct {
	Addr                     string
	Password                 string
	DB                       int
	PrincipalCacheTTLSeconds int
}

// LoggerConfig configures logging behavior. A non-empty File adds a rotated
// JSON log file next to stdout.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret     string
	BcryptCost    int
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// NotificationConfig holds notification endpoints. Email is only sent when
// SMTPHost and at least one recipient are set; otherwise it is logged.
type NotificationConfig struct {
	EmailFrom    string
	EmailTo      []string
	WebhookURL   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// SeedConfig lists the departments created when the store has none.
type SeedConfig struct {
	Departments []string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:                     os.Getenv("REDIS_ADDR"),
			Password:                 os.Getenv("REDIS_PASSWORD"),
			DB:                       redisDB,
			PrincipalCacheTTLSeconds: getEnvAsInt("PRINCIPAL_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 14),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", LegacySigningKey),
			BcryptCost:    getEnvAsInt("AUTH_BCRYPT_COST", 10),
			AdminUsername: getEnv("AUTH_ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("AUTH_ADMIN_PASSWORD", "admin"),
			AdminEmail:    getEnv("AUTH_ADMIN_EMAIL", "admin@test.com"),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			EmailTo:      getEnvAsList("NOTIFY_EMAIL_TO", nil),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
		},
		Seed: SeedConfig{
			Departments: getEnvAsList("SEED_DEPARTMENTS", domain.DefaultDepartments),
		},
	}

	return cfg, nil
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

// PrincipalCacheTTL returns how long re-hydrated principals stay cached.
func (r RedisConfig) PrincipalCacheTTL() time.Duration {
	if r.PrincipalCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.PrincipalCacheTTLSeconds) * time.Second
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

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
