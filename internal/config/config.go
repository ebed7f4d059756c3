// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	Host           string        `envconfig:"HOST" default:"0.0.0.0"`
	MetricsEnabled bool          `envconfig:"METRICS_ENABLED" default:"true"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type        string        `envconfig:"DB_TYPE" default:"postgres"` // "postgres" or "memory"
	URI         string        `envconfig:"DATABASE_URL"`
	Host        string        `envconfig:"DB_HOST" default:"localhost"`
	Port        int           `envconfig:"DB_PORT" default:"5432"`
	User        string        `envconfig:"DB_USER"`
	Password    string        `envconfig:"DB_PASSWORD"`
	Name        string        `envconfig:"DB_NAME" default:"postgres"`
	SSLMode     string        `envconfig:"DB_SSL_MODE" default:"require"`
	Timeout     time.Duration `envconfig:"DB_TIMEOUT" default:"3s"`
	AutoMigrate bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

// RedisConfig configures the page cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"20s"`
}

// StorageConfig configures image uploads. An empty Endpoint disables uploads.
type StorageConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"yatube"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	PublicURL string `envconfig:"MINIO_PUBLIC_URL"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"yatube_secret_key_should_be_loaded_from_env"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// WelcomeConfig names the system account that greets new users.
type WelcomeConfig struct {
	Sender string `envconfig:"WELCOME_SENDER" default:"admin"`
	Text   string `envconfig:"WELCOME_TEXT" default:"hello"`
}

// Config holds the complete application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Storage        StorageConfig
	Auth           AuthConfig
	Welcome        WelcomeConfig
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	Debug          bool     `envconfig:"DEBUG" default:"false"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",          // Current directory
		"../../.env",    // Project root when running from cmd/engine
		"../../../.env", // Even higher directory
		filepath.Join(os.Getenv("GOPATH"), "src/yatube/.env"),
	}

	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Database.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (d *DatabaseConfig) resolve() error {
	switch d.Type {
	case "memory":
		return nil
	case "postgres":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q: use postgres or memory", d.Type)
	}

	// Prioritize DATABASE_URL if provided
	if d.URI != "" {
		d.SSLMode = getSSLModeFromURI(d.URI, d.SSLMode)
		return nil
	}

	if d.User == "" {
		return fmt.Errorf("DB_USER environment variable is required when DB_TYPE is postgres and DATABASE_URL is not set")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required when DB_TYPE is postgres and DATABASE_URL is not set")
	}

	// Build connection string from individual parts
	d.URI = fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

// Helper function to extract sslmode from a DSN, falling back to def
func getSSLModeFromURI(uri, def string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return def
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		return mode
	}
	return def
}
