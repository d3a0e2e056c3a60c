package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new ConfigManager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()
		manager := NewManager(defaultCfg)
		if err := manager.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		slog.Info("Default configuration created successfully", "path", path)
		// Environment overrides are applied after saving and are not persisted.
		applyEnv(defaultCfg)
		if err := manager.EnsureDirectories(); err != nil {
			return nil, err
		}
		return manager, nil
	}

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	manager := NewManager(cfg)
	if err := manager.EnsureDirectories(); err != nil {
		return nil, err
	}
	return manager, nil
}

// ReadFile decodes, overrides and validates the config file at path.
func ReadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML on top of the defaults, applies environment overrides and validates.
func Parse(r io.Reader) (*Config, error) {
	cfg := createDefaultConfig()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs the struct validation rules.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// applyEnv overrides secrets and deployment settings from the environment.
func applyEnv(cfg *Config) {
	if token := os.Getenv("DISCOGS_TOKEN"); token != "" {
		cfg.Discogs.Token = token
	}
	if key := os.Getenv("DISCOGS_KEY"); key != "" {
		cfg.Discogs.Key = key
	}
	if secret := os.Getenv("DISCOGS_SECRET"); secret != "" {
		cfg.Discogs.Secret = secret
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.ParseUint(port, 10, 32); err == nil {
			cfg.Server.Port = uint32(p)
		} else {
			slog.Warn("Ignoring invalid PORT", "value", port, "error", err)
		}
	}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		cfg.Server.AllowedOrigin = origin
	}
}

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Server: Server{
			PrintRoutes:   false,
			Port:          4000,
			AllowedOrigin: "*",
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Discogs: Discogs{
			BaseURL:           "https://api.discogs.com",
			UserAgent:         "MuseVault/1.0 (https://example.com)",
			Timeout:           10 * time.Second,
			RequestsPerMinute: 25, // Unauthenticated Discogs limit
			Burst:             5,
			MaxRetries:        2,
		},
		Catalog: Catalog{
			FeaturedTTL:    5 * time.Minute,
			SearchTTL:      time.Hour,
			DetailTTL:      time.Hour,
			DefaultLimit:   24,
			MaxLimit:       50,
			FeaturedFloor:  50,
			SearchPageSize: 30,
			MaxEntries:     500,
		},
		RateLimit: RateLimit{
			Enabled:  true,
			Requests: 100,
			Window:   time.Hour,
		},
		Database: Database{
			Path: "./musevault.db",
		},
		Artwork: Artwork{
			Enabled:     true,
			CacheDir:    "./cache/covers",
			CacheTTL:    24 * time.Hour,
			DefaultSize: 300,
			MaxSize:     1200,
			Quality:     85,
		},
	}
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return createDefaultConfig()
}
