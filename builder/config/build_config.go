package config

import "time"

// BuildConfig contains the tunable build parameters
// These live under the `build:` key of kosh.yaml
type BuildConfig struct {
	Workers           int           `yaml:"workers"`             // Render worker count, 0 means one per CPU
	WordsPerMinute    int           `yaml:"words_per_minute"`    // Reading speed for reading-time estimates (default: 200)
	AllowPartialBuild bool          `yaml:"allow_partial_build"` // Keep building when a document has malformed markup
	CacheDir          string        `yaml:"cache_dir"`           // Render cache directory, empty disables it
	CacheDBTimeout    time.Duration `yaml:"cache_db_timeout"`    // BoltDB open timeout (default: 10s)
}

// DefaultBuildConfig returns the default build configuration
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Workers:        0,
		WordsPerMinute: 200,
		CacheDBTimeout: 10 * time.Second,
	}
}

// validate ensures configuration values are within reasonable bounds
func (c *BuildConfig) validate() {
	// Workers
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.Workers > 256 {
		c.Workers = 256
	}

	// Reading time
	if c.WordsPerMinute < 1 {
		c.WordsPerMinute = 200
	}

	// Timeouts
	if c.CacheDBTimeout < 1*time.Second {
		c.CacheDBTimeout = 1 * time.Second
	}
	if c.CacheDBTimeout > 60*time.Second {
		c.CacheDBTimeout = 60 * time.Second
	}
}
