// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	AI       AIConfig
	Reminder ReminderConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string // public URL of this API, used in emailed verification links
	FrontendURL string // public URL of the SPA, used in reset-password links
	Environment string // development, production
	MaxBodySize int    // in MB
}

// IsProduction reports whether the server runs with the production cookie policy.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CookieDomain       string
	GoogleClientID     string
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type StorageConfig struct {
	Endpoint  string // empty for AWS, set for MinIO-style deployments
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type AIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ReminderConfig struct {
	Enabled  bool
	SendHour int // local hour of day for the daily poll
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			FrontendURL: cmd.String("frontend-url"),
			Environment: cmd.String("environment"),
			MaxBodySize: int(cmd.Int("max-body-size")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			AccessTokenSecret:  cmd.String("access-token-secret"),
			RefreshTokenSecret: cmd.String("refresh-token-secret"),
			AccessTokenTTL:     cmd.Duration("access-token-ttl"),
			RefreshTokenTTL:    cmd.Duration("refresh-token-ttl"),
			CookieDomain:       cmd.String("cookie-domain"),
			GoogleClientID:     cmd.String("google-client-id"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Storage: StorageConfig{
			Endpoint:  cmd.String("storage-endpoint"),
			Region:    cmd.String("storage-region"),
			Bucket:    cmd.String("storage-bucket"),
			AccessKey: cmd.String("storage-access-key"),
			SecretKey: cmd.String("storage-secret-key"),
		},
		AI: AIConfig{
			BaseURL: cmd.String("ai-base-url"),
			Timeout: cmd.Duration("ai-timeout"),
		},
		Reminder: ReminderConfig{
			Enabled:  cmd.Bool("reminder-enabled"),
			SendHour: int(cmd.Int("reminder-send-hour")),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = cfg.Server.BaseURL
	}

	return cfg
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Public base URL of the API",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "frontend-url",
			Usage:   "Public URL of the frontend (reset-password links)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FRONTEND_URL"), toml.TOML("server.frontend_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "environment",
			Value:   "development",
			Usage:   "Deployment environment (development, production)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ENVIRONMENT"), toml.TOML("server.environment", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   25,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "access-token-secret",
			Usage:   "HMAC secret for access tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ACCESS_TOKEN_SECRET"), toml.TOML("auth.access_token_secret", configFile)),
		},
		&cli.StringFlag{
			Name:    "refresh-token-secret",
			Usage:   "HMAC secret for refresh tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REFRESH_TOKEN_SECRET"), toml.TOML("auth.refresh_token_secret", configFile)),
		},
		&cli.DurationFlag{
			Name:    "access-token-ttl",
			Value:   15 * time.Minute,
			Usage:   "Access token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("ACCESS_TOKEN_TTL"), toml.TOML("auth.access_token_ttl", configFile)),
		},
		&cli.DurationFlag{
			Name:    "refresh-token-ttl",
			Value:   7 * 24 * time.Hour,
			Usage:   "Refresh token lifetime",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REFRESH_TOKEN_TTL"), toml.TOML("auth.refresh_token_ttl", configFile)),
		},
		&cli.StringFlag{
			Name:    "cookie-domain",
			Usage:   "Domain attribute for credential cookies",
			Sources: cli.NewValueSourceChain(cli.EnvVar("COOKIE_DOMAIN"), toml.TOML("auth.cookie_domain", configFile)),
		},
		&cli.StringFlag{
			Name:    "google-client-id",
			Usage:   "OAuth client ID expected in Google ID tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("GOOGLE_CLIENT_ID"), toml.TOML("auth.google_client_id", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP server host",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP server port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "From address for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "LegalDocs",
			Usage:   "Display name for outgoing mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-endpoint",
			Usage:   "S3 endpoint override (MinIO-style deployments)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_ENDPOINT"), toml.TOML("storage.endpoint", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-region",
			Value:   "ap-south-1",
			Usage:   "S3 region",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_REGION"), toml.TOML("storage.region", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-bucket",
			Usage:   "S3 bucket for uploaded documents",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_BUCKET"), toml.TOML("storage.bucket", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-access-key",
			Usage:   "S3 access key",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_ACCESS_KEY"), toml.TOML("storage.access_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "storage-secret-key",
			Usage:   "S3 secret key",
			Sources: cli.NewValueSourceChain(cli.EnvVar("STORAGE_SECRET_KEY"), toml.TOML("storage.secret_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "ai-base-url",
			Value:   "http://localhost:8000",
			Usage:   "Base URL of the inference service",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AI_BASE_URL"), toml.TOML("ai.base_url", configFile)),
		},
		&cli.DurationFlag{
			Name:    "ai-timeout",
			Value:   2 * time.Minute,
			Usage:   "Timeout for inference service calls",
			Sources: cli.NewValueSourceChain(cli.EnvVar("AI_TIMEOUT"), toml.TOML("ai.timeout", configFile)),
		},
		&cli.BoolFlag{
			Name:    "reminder-enabled",
			Value:   true,
			Usage:   "Enable the daily deadline reminder poll",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REMINDER_ENABLED"), toml.TOML("reminder.enabled", configFile)),
		},
		&cli.IntFlag{
			Name:    "reminder-send-hour",
			Value:   9,
			Usage:   "Hour of day (0-23) for the reminder poll",
			Sources: cli.NewValueSourceChain(cli.EnvVar("REMINDER_SEND_HOUR"), toml.TOML("reminder.send_hour", configFile)),
		},
	}
}
