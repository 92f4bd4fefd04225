package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestProcessConfigDefaults(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{}
		processConfigDefaults(&cfg)

		if cfg.UserAgent == "" {
			t.Error("Expected UserAgent to have a default value")
		}
		if cfg.RequestTimeoutSeconds != defaultRequestTimeout {
			t.Errorf("Expected RequestTimeoutSeconds to be %d, got %d", defaultRequestTimeout, cfg.RequestTimeoutSeconds)
		}
		if cfg.StoreListenAddr != ":8080" {
			t.Errorf("Expected StoreListenAddr to be :8080, got %s", cfg.StoreListenAddr)
		}
		if cfg.DefaultCoverURL == "" {
			t.Error("Expected DefaultCoverURL to have a default value")
		}
		if cfg.DatabasePath != filepath.Join("./data", "games.db") {
			t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
		}
	})

	t.Run("respects existing values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{
			UserAgent:             "custom-agent",
			RequestTimeoutSeconds: 3,
			StoreDataDir:          "/srv/games",
			GamesAPIURL:           "http://localhost:8080/games/",
		}
		processConfigDefaults(&cfg)

		if cfg.UserAgent != "custom-agent" {
			t.Errorf("Expected UserAgent to stay custom-agent, got %s", cfg.UserAgent)
		}
		if cfg.RequestTimeout() != 3*time.Second {
			t.Errorf("Expected 3s timeout, got %s", cfg.RequestTimeout())
		}
		if cfg.GamesAPIURL != "http://localhost:8080/games" {
			t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.GamesAPIURL)
		}
		if cfg.CoversDir != filepath.Join("/srv/games", "covers") {
			t.Errorf("Unexpected CoversDir %s", cfg.CoversDir)
		}
	})
}

func TestValidateClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"missing", "", true},
		{"not http", "ftp://example.com/games", true},
		{"http", "http://localhost:8080/games", false},
		{"https", "https://functions.example.com/games", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Config{GamesAPIURL: tt.url}.ValidateClient()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClient(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAndEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing data dir", func(t *testing.T) {
		cfg := Config{StoreDataDir: ""}
		if err := validateAndEnsureDirectories(&cfg); err == nil {
			t.Error("Expected error for missing StoreDataDir")
		}
	})

	t.Run("creates directories", func(t *testing.T) {
		dataDir := filepath.Join(tmpDir, "store")
		cfg := Config{StoreDataDir: dataDir}
		if err := cfg.PrepareStore(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dataDir, "covers")); os.IsNotExist(err) {
			t.Error("covers directory was not created")
		}
		if cfg.DatabasePath != filepath.Join(dataDir, "games.db") {
			t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
		}
	})
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	content := "GAMES_API_URL=http://127.0.0.1:9000/games\nADMIN_PASSWORD=hunter2\nREQUEST_TIMEOUT_SECONDS=4\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.GamesAPIURL != "http://127.0.0.1:9000/games" {
		t.Errorf("GamesAPIURL = %q", cfg.GamesAPIURL)
	}
	if cfg.AdminPassword != "hunter2" {
		t.Errorf("AdminPassword = %q", cfg.AdminPassword)
	}
	if cfg.RequestTimeoutSeconds != 4 {
		t.Errorf("RequestTimeoutSeconds = %d", cfg.RequestTimeoutSeconds)
	}
}
