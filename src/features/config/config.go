package config

import "time"

// Config holds the application configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Logger    Logger    `yaml:"logger"`
	Discogs   Discogs   `yaml:"discogs"`
	Catalog   Catalog   `yaml:"catalog"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Database  Database  `yaml:"database"`
	Artwork   Artwork   `yaml:"artwork"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes   bool   `yaml:"show_routes"`
	Port          uint32 `yaml:"port" validate:"required,max=65535"`
	AllowedOrigin string `yaml:"allowed_origin" validate:"required"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Discogs holds the upstream API settings. Token wins over Key/Secret when both are set.
type Discogs struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	UserAgent         string        `yaml:"user_agent" validate:"required"`
	Token             string        `yaml:"token"`
	Key               string        `yaml:"key"`
	Secret            string        `yaml:"secret"`
	Timeout           time.Duration `yaml:"timeout" validate:"required"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"min=1"`
	Burst             int           `yaml:"burst" validate:"min=1"`
	MaxRetries        int           `yaml:"max_retries" validate:"min=0,max=5"`
}

// Catalog holds cache windows and paging of the catalog feature.
type Catalog struct {
	FeaturedTTL       time.Duration `yaml:"featured_ttl" validate:"required"`
	SearchTTL         time.Duration `yaml:"search_ttl" validate:"required"`
	DetailTTL         time.Duration `yaml:"detail_ttl" validate:"required"`
	DefaultLimit      int           `yaml:"default_limit" validate:"min=1,ltefield=MaxLimit"`
	MaxLimit          int           `yaml:"max_limit" validate:"min=1,max=100"`
	FeaturedFloor     int           `yaml:"featured_floor" validate:"min=1,max=100"`
	SearchPageSize    int           `yaml:"search_page_size" validate:"min=1,max=100"`
	MaxEntries        int           `yaml:"max_entries" validate:"min=0"`
	ServeStaleOnError bool          `yaml:"serve_stale_on_error"`
}

// RateLimit holds the per-client request limit of the /api routes.
type RateLimit struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests" validate:"min=1"`
	Window   time.Duration `yaml:"window" validate:"required"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Artwork holds configuration for cover thumbnails
type Artwork struct {
	Enabled     bool          `yaml:"enabled"`
	CacheDir    string        `yaml:"cache_dir" validate:"required_if=Enabled true"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	DefaultSize int           `yaml:"default_size" validate:"min=16,ltefield=MaxSize"`
	MaxSize     int           `yaml:"max_size" validate:"min=16,max=2000"`
	Quality     int           `yaml:"quality" validate:"min=1,max=100"`
}
