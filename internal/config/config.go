package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Inference    InferenceConfig
	Calendar     CalendarConfig
	Assignment   AssignmentConfig
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
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// AuthConfig defines service token parameters.
type AuthConfig struct {
	JWTSecret              string
	ServiceTokenTTLMinutes int
}

// NotificationConfig holds outbound e-mail settings. An empty SMTPHost disables delivery.
type NotificationConfig struct {
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

// InferenceConfig configures the skill inference endpoint.
type InferenceConfig struct {
	APIKey           string
	Model            string
	TimeoutSeconds   int
	SkillMappingFile string
}

// CalendarConfig configures the free/busy endpoint.
type CalendarConfig struct {
	CredentialsFile string
	Endpoint        string
	TimeoutSeconds  int
}

// AssignmentConfig tunes the assignment engine.
type AssignmentConfig struct {
	WorkerPoolSize int
	FallbackName   string
	FallbackEmail  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-assignment-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Channel:  getEnv("ASSIGNMENT_REDIS_CHANNEL", "ticket-assignments"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			ServiceTokenTTLMinutes: getEnvAsInt("AUTH_SERVICE_TOKEN_TTL_MINUTES", 60*24),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     smtpPort,
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
		Inference: InferenceConfig{
			APIKey:           os.Getenv("GEMINI_API_KEY"),
			Model:            getEnv("INFERENCE_MODEL", "gemini-2.5-flash-lite"),
			TimeoutSeconds:   getEnvAsInt("INFERENCE_TIMEOUT_SECONDS", 20),
			SkillMappingFile: os.Getenv("INFERENCE_SKILL_MAPPING_FILE"),
		},
		Calendar: CalendarConfig{
			CredentialsFile: os.Getenv("CALENDAR_CREDENTIALS_FILE"),
			Endpoint:        os.Getenv("CALENDAR_ENDPOINT"),
			TimeoutSeconds:  getEnvAsInt("CALENDAR_TIMEOUT_SECONDS", 10),
		},
		Assignment: AssignmentConfig{
			WorkerPoolSize: getEnvAsInt("ASSIGNMENT_WORKER_POOL_SIZE", 8),
			FallbackName:   getEnv("ASSIGNMENT_FALLBACK_NAME", "Fallback Support"),
			FallbackEmail:  getEnv("ASSIGNMENT_FALLBACK_EMAIL", "fallback@company.com"),
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
	return seconds(a.RequestTimeoutSeconds)
}

// Timeout bounds a single inference call.
func (i InferenceConfig) Timeout() time.Duration {
	return seconds(i.TimeoutSeconds)
}

// Enabled reports whether an inference endpoint is configured.
func (i InferenceConfig) Enabled() bool {
	return i.APIKey != ""
}

// Timeout bounds a single free/busy query.
func (c CalendarConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds)
}

// Enabled reports whether calendar credentials are configured.
func (c CalendarConfig) Enabled() bool {
	return c.CredentialsFile != ""
}

// ServiceTokenTTL returns how long issued service tokens stay valid.
func (a AuthConfig) ServiceTokenTTL() time.Duration {
	return time.Duration(a.ServiceTokenTTLMinutes) * time.Minute
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
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
