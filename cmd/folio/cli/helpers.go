package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/mailer"
	"github.com/folioapp/folio/internal/server"
	"github.com/folioapp/folio/internal/service"
)

// devJWTSecret signs sessions when no secret is configured outside production.
const devJWTSecret = "folio-dev-secret-change-me"

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// FOLIO_DATA_DIR env var, or ~/.folio as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("FOLIO_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".folio")
}

// loadSettings collects the effective configuration from viper, which has
// already merged defaults, the config file and FOLIO_* env vars.
func loadSettings() *config.YAMLConfig {
	return &config.YAMLConfig{
		Server: config.ServerConfig{
			Host:        viper.GetString("server.host"),
			Port:        viper.GetInt("server.port"),
			Production:  viper.GetBool("server.production"),
			CORSOrigins: viper.GetStringSlice("server.cors_origins"),
			RateLimit:   viper.GetInt("server.rate_limit"),
		},
		Store: config.StoreConfig{
			Driver: viper.GetString("store.driver"),
			DSN:    viper.GetString("store.dsn"),
		},
		Auth: config.AuthConfig{
			JWTSecret: viper.GetString("auth.jwt_secret"),
			RateLimit: viper.GetInt("auth.rate_limit"),
		},
		Reset: config.ResetConfig{
			Email: viper.GetString("reset.email"),
		},
		SMTP: config.SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
		},
		Log: config.LoggingConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

// newLogger builds the process logger. dev forces debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig, dev bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if dev {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openStore opens the configured store. SQLite lives in the data directory.
func openStore(cfg *config.YAMLConfig) (*config.Store, error) {
	store, err := config.Open(cfg.Store.Driver, cfg.Store.DSN, resolveDataDir())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// resolveJWTSecret returns the configured signing secret. Outside production
// a fixed development secret is used, with a warning.
func resolveJWTSecret(cfg *config.YAMLConfig, logger *slog.Logger) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}
	if cfg.Server.Production {
		return "", errors.New("auth.jwt_secret is required in production (set FOLIO_AUTH_JWT_SECRET)")
	}
	logger.Warn("auth.jwt_secret not set, using the development secret; sessions are forgeable")
	return devJWTSecret, nil
}

// newServices wires the auth services on top of the store.
func newServices(cfg *config.YAMLConfig, store *config.Store, logger *slog.Logger) (server.Services, error) {
	secret, err := resolveJWTSecret(cfg, logger)
	if err != nil {
		return server.Services{}, err
	}

	hasher := service.NewBcryptHasher(service.DefaultBcryptCost)
	sender := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, cfg.Reset.Email, service.ResetCodeTTL, logger)

	if cfg.Reset.Email == "" {
		logger.Warn("reset.email not set, no reset code can be delivered")
	}

	return server.Services{
		Auth:  service.NewAuthService(store, hasher, secret),
		Setup: service.NewSetupService(store, hasher),
		Reset: service.NewResetService(store, hasher, sender, cfg.Reset.Email),
	}, nil
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
