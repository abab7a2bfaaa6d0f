// Package config provides application configuration loaded from an optional
// YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Mail     MailConfig     `yaml:"mail"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Billing  Settings       `yaml:"billing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout  int    `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60"`   // seconds
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres" env-description:"postgres or sqlite"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"billing"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"billing123"`
	DBName   string `yaml:"name" env:"DB_NAME" env-default:"billing"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Path     string `yaml:"path" env:"DB_PATH" env-default:"billing.db" env-description:"sqlite file"`
	Debug    bool   `yaml:"debug" env:"DB_DEBUG"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `yaml:"dev" env:"DEV" env-default:"true"`
	Migrations bool `yaml:"migrations" env:"MIGRATIONS" env-default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	Output string `yaml:"output" env:"LOG_OUTPUT" env-default:"stdout"`
}

// MailConfig holds SMTP settings. An empty host logs mails instead of
// delivering them.
type MailConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"MAIL_FROM" env-default:"billing@localhost"`
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	Interval  time.Duration `yaml:"interval" env:"JOBS_INTERVAL" env-default:"1h"`
	RedisAddr string        `yaml:"redis_addr" env:"REDIS_ADDR" env-description:"enables the asynq worker"`
	Cron      string        `yaml:"cron" env:"JOBS_CRON" env-default:"@hourly"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads the .env file if present, then the YAML file named by
// CONFIG_PATH (if any) and finally the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}
	if err := cfg.Billing.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
