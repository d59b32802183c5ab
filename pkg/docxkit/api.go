package docxkit

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Engine prepares and renders templates. Use New() to create one.
type Engine struct {
	config    *Config
	cache     *TemplateCache
	evaluator *Evaluator
	logger    *Logger
}

// New creates an engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates an engine with its own configuration and cache.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		cache: NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
		evaluator: NewEvaluator(),
		logger:    GetLogger(),
	}
}

// PrepareFile loads a template from a file path. Templates are cached by
// path when caching is enabled.
func (e *Engine) PrepareFile(path string) (*PreparedTemplate, error) {
	if e.config.CacheMaxSize > 0 && e.cache != nil {
		if tmpl, ok := e.cache.Get(path); ok {
			e.logger.Debug("template cache hit: %s", path)
			return tmpl, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	defer file.Close()

	tmpl, err := e.Prepare(file)
	if err != nil {
		return nil, err
	}

	if e.config.CacheMaxSize > 0 && e.cache != nil {
		e.cache.Set(path, tmpl)
	}
	return tmpl, nil
}

// Prepare loads a template from r.
func (e *Engine) Prepare(r io.Reader) (*PreparedTemplate, error) {
	return prepare(r, e)
}

// RegisterFunction makes fn callable from tag expressions as name(...).
func (e *Engine) RegisterFunction(name string, fn any) error {
	if err := e.evaluator.RegisterFunction(name, fn); err != nil {
		return fmt.Errorf("failed to register function %s: %w", name, err)
	}
	return nil
}

// RegisterHelper adds a helper usable as {{name expr}}.
func (e *Engine) RegisterHelper(name string, h Helper) error {
	if err := e.evaluator.RegisterHelper(name, h); err != nil {
		return fmt.Errorf("failed to register helper %s: %w", name, err)
	}
	return nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Option configures an engine.
type Option func(*Engine)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
		e.cache = NewTemplateCacheWithConfig(CacheConfig{MaxSize: config.CacheMaxSize, TTL: config.CacheTTL})
	}
}

// WithCache sets the cache size and expiry; a size of 0 disables caching.
func WithCache(maxSize int, ttl time.Duration) Option {
	return func(e *Engine) {
		cfg := *e.config
		cfg.CacheMaxSize = maxSize
		cfg.CacheTTL = ttl
		e.config = &cfg
		e.cache = NewTemplateCacheWithConfig(CacheConfig{MaxSize: maxSize, TTL: ttl})
	}
}

// WithFunction registers a function. Invalid registrations are logged and
// skipped.
func WithFunction(name string, fn any) Option {
	return func(e *Engine) {
		if err := e.RegisterFunction(name, fn); err != nil {
			e.logger.Warn("%v", err)
		}
	}
}

// WithHelper registers a helper. Invalid registrations are logged and
// skipped.
func WithHelper(name string, h Helper) Option {
	return func(e *Engine) {
		if err := e.RegisterHelper(name, h); err != nil {
			e.logger.Warn("%v", err)
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewWithOptions creates an engine with the global configuration and opts
// applied in order.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is used by the package-level functions.
var DefaultEngine = New()

// PrepareFile loads a template from a file path using the default engine.
func PrepareFile(path string) (*PreparedTemplate, error) {
	return DefaultEngine.PrepareFile(path)
}

// Prepare loads a template from r using the default engine.
func Prepare(r io.Reader) (*PreparedTemplate, error) {
	return DefaultEngine.Prepare(r)
}

// RegisterGlobalFunction registers a function with the default engine.
func RegisterGlobalFunction(name string, fn any) error {
	return DefaultEngine.RegisterFunction(name, fn)
}

// ClearCache clears the default engine's template cache.
func ClearCache() {
	DefaultEngine.ClearCache()
}
