package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultUserAgent      = "mr-games/dev (unknown-user)"
	defaultRequestTimeout = 10
	defaultListenAddr     = ":8080"
	defaultDataDir        = "./data"
	defaultPublicURL      = "http://localhost:8080"
	defaultCoverURL       = "https://cdn.poehali.dev/projects/aa9c31d7-92e1-4021-830d-a2684567d329/files/dc02dddf-24e8-4d00-9a14-7843ea28a2d3.jpg"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	GamesAPIURL           string `mapstructure:"GAMES_API_URL"`
	AdminPassword         string `mapstructure:"ADMIN_PASSWORD"`
	AdminToken            string `mapstructure:"ADMIN_TOKEN"` // Sent as bearer token on create/delete
	UserAgent             string `mapstructure:"USERAGENT"`
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	DefaultCoverURL       string `mapstructure:"DEFAULT_COVER_URL"`

	// Reference store settings, only used by the serve command.
	StoreListenAddr string `mapstructure:"STORE_LISTEN_ADDR"`
	StoreDataDir    string `mapstructure:"STORE_DATA_DIR"`
	StorePublicURL  string `mapstructure:"STORE_PUBLIC_URL"`
	DatabasePath    string `mapstructure:"-"` // Derived from StoreDataDir
	CoversDir       string `mapstructure:"-"` // Derived from StoreDataDir
}

var envKeys = []string{
	"GAMES_API_URL",
	"ADMIN_PASSWORD",
	"ADMIN_TOKEN",
	"USERAGENT",
	"REQUEST_TIMEOUT_SECONDS",
	"DEFAULT_COVER_URL",
	"STORE_LISTEN_ADDR",
	"STORE_DATA_DIR",
	"STORE_PUBLIC_URL",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()

	for _, key := range envKeys {
		if err := viper.BindEnv(strings.ToLower(key), key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if vipErr = viper.Unmarshal(&config); vipErr != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", vipErr)
	}

	processConfigDefaults(&config)

	return config, nil
}

// processConfigDefaults fills in every optional value that was left empty.
func processConfigDefaults(config *Config) {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
		slog.Warn("USERAGENT not set in config or environment, using default.")
	}
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = defaultRequestTimeout
	}
	if config.DefaultCoverURL == "" {
		config.DefaultCoverURL = defaultCoverURL
	}
	if config.StoreListenAddr == "" {
		config.StoreListenAddr = defaultListenAddr
	}
	if config.StoreDataDir == "" {
		config.StoreDataDir = defaultDataDir
	}
	if config.StorePublicURL == "" {
		config.StorePublicURL = defaultPublicURL
	}
	config.GamesAPIURL = strings.TrimRight(config.GamesAPIURL, "/")
	config.StorePublicURL = strings.TrimRight(config.StorePublicURL, "/")

	config.DatabasePath = filepath.Join(config.StoreDataDir, "games.db")
	config.CoversDir = filepath.Join(config.StoreDataDir, "covers")
}

// RequestTimeout returns the per-request timeout for the games API.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ValidateClient checks the settings the browse command cannot run without.
func (c Config) ValidateClient() error {
	if c.GamesAPIURL == "" {
		return fmt.Errorf("GAMES_API_URL is required")
	}
	if !strings.HasPrefix(c.GamesAPIURL, "http://") && !strings.HasPrefix(c.GamesAPIURL, "https://") {
		return fmt.Errorf("GAMES_API_URL must be an http(s) URL, got %q", c.GamesAPIURL)
	}
	return nil
}

// validateAndEnsureDirectories makes sure the reference store directories exist.
func validateAndEnsureDirectories(config *Config) error {
	if config.StoreDataDir == "" {
		slog.Error("STORE_DATA_DIR is not set")
		return fmt.Errorf("STORE_DATA_DIR is required")
	}

	for _, dir := range []string{config.StoreDataDir, filepath.Join(config.StoreDataDir, "covers")} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("Failed to create directory", "path", dir, "error", err)
				return err
			}
		} else if err != nil {
			slog.Error("Failed to check directory", "path", dir, "error", err)
			return err
		}
	}

	config.DatabasePath = filepath.Join(config.StoreDataDir, "games.db")
	config.CoversDir = filepath.Join(config.StoreDataDir, "covers")
	return nil
}

// PrepareStore validates the store settings and creates its directories.
func (c *Config) PrepareStore() error {
	return validateAndEnsureDirectories(c)
}
