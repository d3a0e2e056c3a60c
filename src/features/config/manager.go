package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu          sync.RWMutex
	config      *Config
	subscribers []func(*Config)
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Subscribe registers fn to be called with the new configuration after every Update.
func (m *Manager) Subscribe(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Update updates the configuration and notifies subscribers.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	oldConfig := m.config
	m.config = config
	subscribers := slices.Clone(m.subscribers)
	m.mu.Unlock()

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"catalog_changed", oldConfig.Catalog != config.Catalog,
			"rate_limit_changed", oldConfig.RateLimit != config.RateLimit,
			"discogs_changed", oldConfig.Discogs != config.Discogs,
			"logger_changed", oldConfig.Logger != config.Logger,
		)
	}
	for _, fn := range subscribers {
		fn(config)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create config file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// EnsureDirectories creates the database and cover cache directories if they don't exist.
func (m *Manager) EnsureDirectories() error {
	cfg := m.Get()

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	if cfg.Artwork.Enabled && cfg.Artwork.CacheDir != "" {
		if err := os.MkdirAll(cfg.Artwork.CacheDir, 0755); err != nil {
			return fmt.Errorf("failed to create cover cache directory %s: %w", cfg.Artwork.CacheDir, err)
		}
	}

	slog.Info("Required directories created/verified", "database", cfg.Database.Path, "covers", cfg.Artwork.CacheDir)
	return nil
}

// Redacted gets a copy of the Config with secrets masked.
func (m *Manager) Redacted() Config {
	cfgCpy := *m.Get()
	for _, secret := range []*string{&cfgCpy.Discogs.Token, &cfgCpy.Discogs.Key, &cfgCpy.Discogs.Secret} {
		if *secret != "" {
			*secret = redacted
		}
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	jsonBytes, err := json.Marshal(m.Redacted())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

func (m *Manager) GetYAML() string {
	yamlBytes, err := yaml.Marshal(m.Redacted())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
