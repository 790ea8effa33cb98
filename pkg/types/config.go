package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cleanmusic/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for the remote recordings catalog.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIToken authenticates against the catalog API.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// SearchPageSize is the number of candidates requested per existence
	// search (default 100).
	SearchPageSize int `json:"search_page_size" yaml:"search_page_size"`

	// MaxRetries bounds retries on HTTP 429 responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// SearchCacheTTL bounds the in-process memoization of search
	// responses (default 30m). Negative disables memoization.
	SearchCacheTTL time.Duration `json:"search_cache_ttl" yaml:"search_cache_ttl"`
}

// ScanConfig holds settings for the library scan.
type ScanConfig struct {
	// Delay is the minimum gap between consecutive catalog calls
	// (default 0). Enforced by a shared rate gate, not a per-track sleep.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// ResolveISRC enables the MusicBrainz fallback for files that carry
	// no ISRC tag.
	ResolveISRC bool `json:"resolve_isrc" yaml:"resolve_isrc"`
}

// StoreConfig holds settings for the track store.
type StoreConfig struct {
	// DBPath is the SQLite database file (default "music.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Config groups all stage configurations.
type Config struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Scan    ScanConfig    `json:"scan" yaml:"scan"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
