package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	ServerPort string `envconfig:"SERVER_PORT" default:"5000"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	DB DBConfig

	JWTSecret     string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRATION" default:"1h"`

	UploadsDir     string `envconfig:"UPLOADS_DIR" default:"uploads"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	// Optional backends; empty disables the feature
	RedisURL     string `envconfig:"REDIS_URL"`
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"mess_finder"`
}

// DBConfig holds database connection parameters
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" required:"true"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// DSN builds a postgres URL, escaping credentials
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Load reads an optional .env file and decodes the environment into Config.
// The bool result reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, dotenv, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTExpiration <= 0 {
		return nil, dotenv, fmt.Errorf("JWT_EXPIRATION must be positive, got %s", cfg.JWTExpiration)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, dotenv, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	return &cfg, dotenv, nil
}
