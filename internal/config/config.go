package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database      DatabaseConfig
	Server        ServerConfig
	Auth          AuthConfig
	Contact       ContactConfig
	Storage       StorageConfig
	GitHub        GitHubConfig
	LoginAttempts LoginAttemptConfig
}

type DatabaseConfig struct {
	URL               string
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AuthConfig points at the hosted auth provider. Tokens it issues are
// verified locally with JWTSecret; only AdminEmails may use /admin routes.
type AuthConfig struct {
	ProviderURL     string
	ProviderAnonKey string
	JWTSecret       string
	AdminEmails     []string
	CronSecret      string
	LoginRateLimit  int
}

type ContactConfig struct {
	RateLimitMax    int
	RateLimitWindow time.Duration
	AWSRegion       string
	FromAddress     string
	Recipient       string
}

type StorageConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	MaxUploadBytes  int64
}

type GitHubConfig struct {
	Token             string
	Username          string
	APIURL            string
	RequestsPerMinute int
}

type LoginAttemptConfig struct {
	RetentionDays   int
	CleanupInterval time.Duration
	ListLimit       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			URL:               getEnv("DATABASE_URL", ""),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "portfolio"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			ProviderURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			ProviderAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
			JWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
			AdminEmails:     getEnvAsList("ADMIN_EMAILS"),
			CronSecret:      getEnv("CRON_SECRET", ""),
			LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 5),
		},
		Contact: ContactConfig{
			RateLimitMax:    getEnvAsInt("CONTACT_RATE_LIMIT_MAX", 5),
			RateLimitWindow: getEnvAsDuration("CONTACT_RATE_LIMIT_WINDOW", time.Hour),
			AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
			FromAddress:     getEnv("CONTACT_FROM_ADDRESS", ""),
			Recipient:       getEnv("CONTACT_RECIPIENT", ""),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", ""),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:          getEnv("STORAGE_BUCKET", "project-images"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:   strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			MaxUploadBytes:  int64(getEnvAsInt("STORAGE_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		GitHub: GitHubConfig{
			Token:             getEnv("GITHUB_TOKEN", ""),
			Username:          getEnv("GITHUB_USERNAME", ""),
			APIURL:            getEnv("GITHUB_GRAPHQL_URL", "https://api.github.com/graphql"),
			RequestsPerMinute: getEnvAsInt("GITHUB_REQUESTS_PER_MINUTE", 30),
		},
		LoginAttempts: LoginAttemptConfig{
			RetentionDays:   getEnvAsInt("LOGIN_ATTEMPT_RETENTION_DAYS", 90),
			CleanupInterval: getEnvAsDuration("LOGIN_ATTEMPT_CLEANUP_INTERVAL", 0),
			ListLimit:       getEnvAsInt("LOGIN_ATTEMPT_LIST_LIMIT", 100),
		},
	}

	if cfg.Database.URL == "" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}

	if cfg.Contact.RateLimitMax <= 0 {
		return nil, fmt.Errorf("CONTACT_RATE_LIMIT_MAX must be positive")
	}
	if cfg.Contact.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("CONTACT_RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.LoginAttempts.RetentionDays <= 0 {
		return nil, fmt.Errorf("LOGIN_ATTEMPT_RETENTION_DAYS must be positive")
	}

	return cfg, nil
}

// Validate checks settings only the HTTP server needs. The CLI skips it.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if err := validateJWTSecret(c.Auth.JWTSecret, c.Server.Env); err != nil {
		return err
	}
	if len(c.Auth.AdminEmails) == 0 {
		return fmt.Errorf("ADMIN_EMAILS must list at least one address")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SUPABASE_JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SUPABASE_JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (c *AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Enabled reports whether the object store is configured.
func (c *StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// getEnvAsList splits a comma-separated variable, lower-casing and dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return []string{}
	}
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
