package taskdoc

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultLockTimeout bounds how long FileStore.Save waits for the
// cross-process write lock.
const DefaultLockTimeout = 3 * time.Second

// storeConfig holds options shared by the DocumentStore implementations.
type storeConfig struct {
	now         func() time.Time
	lockTimeout time.Duration
}

// StoreOption configures a DocumentStore.
type StoreOption func(*storeConfig)

// WithStoreClock overrides the clock used for timestamps. Defaults to
// time.Now.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		c.now = now
	}
}

// WithLockTimeout sets how long FileStore waits for the write lock.
// Ignored by MemoryStore.
func WithLockTimeout(d time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.lockTimeout = d
	}
}

func newStoreConfig(opts []StoreOption) storeConfig {
	cfg := storeConfig{
		now:         time.Now,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lockTimeout <= 0 {
		cfg.lockTimeout = DefaultLockTimeout
	}
	return cfg
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the clock used for creation times and note
// timestamps. Defaults to time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// ServerOptions configures the MCP server built by NewServer.
type ServerOptions struct {
	// Name is reported to clients. Default: "taskdoc".
	Name string

	// Version is reported to clients. Default: "dev".
	Version string

	// Logger receives one entry per tool call. Default: disabled.
	Logger zerolog.Logger
}

// ServerOption configures the MCP server.
type ServerOption func(*ServerOptions)

// WithServerName sets the implementation name reported to clients.
func WithServerName(name string) ServerOption {
	return func(o *ServerOptions) {
		o.Name = name
	}
}

// WithServerVersion sets the implementation version reported to clients.
func WithServerVersion(version string) ServerOption {
	return func(o *ServerOptions) {
		o.Version = version
	}
}

// WithServerLogger sets the logger used for tool calls.
func WithServerLogger(log zerolog.Logger) ServerOption {
	return func(o *ServerOptions) {
		o.Logger = log
	}
}

func newServerOptions(opts []ServerOption) ServerOptions {
	o := ServerOptions{
		Name:    "taskdoc",
		Version: "dev",
		Logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Name == "" {
		o.Name = "taskdoc"
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	return o
}
