package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "figure-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EutilsConfig holds settings for the NCBI E-utilities client.
type EutilsConfig struct {
	HTTPConfig `yaml:",inline"`

	// Database is the Entrez database to query (default "pmc").
	Database string `json:"database" yaml:"database"`

	// APIKey is an optional NCBI API key. With a key NCBI allows 10
	// requests per second instead of 3.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is an optional contact address sent with each request,
	// per NCBI usage policy.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// CallInterval is the minimum gap between any two outbound calls
	// (default 334ms, NCBI's 3 req/s keyless allowance).
	CallInterval time.Duration `json:"call_interval" yaml:"call_interval"`

	// MaxRetries is the retry ceiling for transient failures (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// PageSize caps how many ids one ESearch call requests (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// HarvestConfig holds settings for the collection stage.
type HarvestConfig struct {
	// Workers is the fetch worker-pool size (default 3). Search
	// pagination always runs sequentially regardless of this value.
	Workers int `json:"workers" yaml:"workers"`

	// ResolveCDN controls whether graphic hrefs are resolved to CDN
	// URLs by scraping the article's HTML page (default true).
	ResolveCDN bool `json:"resolve_cdn" yaml:"resolve_cdn"`

	// OutputDir is the directory for harvest datasets (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// CacheConfig holds settings for the local document cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables caching.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Eutils  EutilsConfig  `json:"eutils" yaml:"eutils"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
}
