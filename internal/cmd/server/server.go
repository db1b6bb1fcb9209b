// Package server parses server flags and launches the process.
package server

import (
	"context"
	"flag"
	"time"

	"github.com/contactshub/server/internal/app"
	"github.com/contactshub/server/internal/platform/config"
)

// Config holds server command configuration.
type Config struct {
	HTTPAddr    string        `env:"CONTACTSHUB_HTTP_ADDR" envDefault:":8080"`
	DBPath      string        `env:"CONTACTSHUB_DB_PATH" envDefault:"contactshub.db"`
	TokenSecret string        `env:"CONTACTSHUB_TOKEN_SECRET"`
	TokenIssuer string        `env:"CONTACTSHUB_TOKEN_ISSUER" envDefault:"contactshub"`
	TokenTTL    time.Duration `env:"CONTACTSHUB_TOKEN_TTL" envDefault:"24h"`
	LogLevel    string        `env:"CONTACTSHUB_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config. Flags win over
// environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "bearer token signing secret")
	fs.StringVar(&cfg.TokenIssuer, "token-issuer", cfg.TokenIssuer, "bearer token issuer claim")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "bearer token lifetime")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the contacts directory server.
func Run(ctx context.Context, cfg Config) error {
	return app.Run(ctx, app.Config{
		HTTPAddr:    cfg.HTTPAddr,
		DBPath:      cfg.DBPath,
		TokenSecret: cfg.TokenSecret,
		TokenIssuer: cfg.TokenIssuer,
		TokenTTL:    cfg.TokenTTL,
		LogLevel:    cfg.LogLevel,
	})
}
