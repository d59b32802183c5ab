package docxkit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the docxkit engine
type Config struct {
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// MissingValue is "error" to fail on absent data or "empty" to render it as empty text
	MissingValue string `yaml:"missing_value"`
	// Parallelism bounds how many parts render at once. 0 renders all parts concurrently.
	Parallelism int `yaml:"parallelism"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize: 100,
		CacheTTL:     0,
		LogLevel:     "info",
		MissingValue: "error",
		Parallelism:  0,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// DOCXKIT_CACHE_MAX_SIZE
	if val := os.Getenv("DOCXKIT_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// DOCXKIT_CACHE_TTL
	if val := os.Getenv("DOCXKIT_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	// DOCXKIT_LOG_LEVEL
	if val := os.Getenv("DOCXKIT_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	// DOCXKIT_MISSING_VALUE
	if val := os.Getenv("DOCXKIT_MISSING_VALUE"); val != "" {
		config.MissingValue = strings.ToLower(val)
	}

	// DOCXKIT_PARALLELISM
	if val := os.Getenv("DOCXKIT_PARALLELISM"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Parallelism = n
		}
	}

	return config
}

// LoadConfigFile reads a YAML configuration file on top of base (or the
// defaults when base is nil). Unknown keys are rejected.
func LoadConfigFile(path string, base *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	config := DefaultConfig()
	if base != nil {
		*config = *base
	}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()
	if overrides == nil {
		return defaults
	}

	config := *overrides
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MissingValue == "" {
		config.MissingValue = defaults.MissingValue
	}
	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var issues []ValidationIssue
	if c.CacheMaxSize < 0 {
		issues = append(issues, ValidationIssue{Field: "CacheMaxSize", Message: "cannot be negative"})
	}
	if c.CacheTTL < 0 {
		issues = append(issues, ValidationIssue{Field: "CacheTTL", Message: "cannot be negative"})
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}
	if !validLogLevels[c.LogLevel] {
		issues = append(issues, ValidationIssue{Field: "LogLevel", Message: "invalid log level: " + c.LogLevel})
	}
	if _, err := render.ParseMissingPolicy(c.MissingValue); err != nil {
		issues = append(issues, ValidationIssue{Field: "MissingValue", Message: err.Error()})
	}
	if c.Parallelism < 0 {
		issues = append(issues, ValidationIssue{Field: "Parallelism", Message: "cannot be negative"})
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// missingPolicy returns the configured policy, defaulting to MissingError.
func (c *Config) missingPolicy() render.MissingPolicy {
	p, _ := render.ParseMissingPolicy(c.MissingValue)
	return p
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}
	loadGlobalConfig()
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back.
	UpdateLoggerFromConfig()
	return nil
}
