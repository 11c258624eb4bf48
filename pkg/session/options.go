package session

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// FlushMode controls when pending changes are written to the database.
type FlushMode string

// Flush modes.
const (
	FlushAuto   FlushMode = "auto"
	FlushCommit FlushMode = "commit"
	FlushAlways FlushMode = "always"
	FlushManual FlushMode = "manual"
)

// ParseFlushMode parses a flush mode name, ignoring case.
func ParseFlushMode(s string) (FlushMode, error) {
	switch m := FlushMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FlushAuto, FlushCommit, FlushAlways, FlushManual:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown flush mode %q (want auto, commit, always or manual)", ErrInvalidOption, s)
	}
}

// Defaults applied by NewFactoryBuilder.
const (
	DefaultDriver       = "sqlite"
	DefaultDSN          = ":memory:"
	DefaultMaxIdleConns = 2
	DefaultBatchSize    = 0
)

// Options holds the settings a session factory is built from.
// Exported fields can also be set from configuration through DecodeProperties.
type Options struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// BatchSize and FlushMode are validated here and carried through
	// Factory.Options and Session.FlushMode for the persistence layer built on
	// a session. The factory and sessions do not write on their own.
	BatchSize int       `mapstructure:"batch_size"`
	FlushMode FlushMode `mapstructure:"flush_mode"`

	db     *sql.DB
	logger *slog.Logger
}

// Option configures a FactoryBuilder.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Driver:       DefaultDriver,
		DSN:          DefaultDSN,
		MaxIdleConns: DefaultMaxIdleConns,
		BatchSize:    DefaultBatchSize,
		FlushMode:    FlushAuto,
	}
}

// WithDriver selects a registered driver by name ("sqlite", "postgres", ...).
func WithDriver(name string) Option {
	return func(o *Options) {
		o.Driver = name
	}
}

// WithDSN sets the data source name passed to the driver.
func WithDSN(dsn string) Option {
	return func(o *Options) {
		o.DSN = dsn
	}
}

// WithDB uses an existing pool instead of opening one.
// The factory does not close a pool it did not open.
func WithDB(db *sql.DB) Option {
	return func(o *Options) {
		o.db = db
	}
}

// WithMaxOpenConns limits open connections; 0 means unlimited.
func WithMaxOpenConns(n int) Option {
	return func(o *Options) {
		o.MaxOpenConns = n
	}
}

// WithMaxIdleConns limits idle connections.
func WithMaxIdleConns(n int) Option {
	return func(o *Options) {
		o.MaxIdleConns = n
	}
}

// WithConnMaxLifetime sets how long a connection may be reused; 0 means forever.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) {
		o.ConnMaxLifetime = d
	}
}

// WithBatchSize sets the statement batch size reported by Factory.Options;
// 0 disables batching.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		o.BatchSize = n
	}
}

// WithFlushMode sets the default flush mode of opened sessions.
func WithFlushMode(mode FlushMode) Option {
	return func(o *Options) {
		o.FlushMode = mode
	}
}

// WithLogger sets the logger. If nil is passed, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// validate checks the settings that do not need a database.
func (o *Options) validate() error {
	if o.db == nil {
		if _, ok := sqlDriverName(o.Driver); !ok {
			return &UnknownDriverError{Name: o.Driver, Available: Drivers()}
		}
	}
	if o.MaxOpenConns < 0 {
		return fmt.Errorf("%w: max_open_conns must not be negative, got %d", ErrInvalidOption, o.MaxOpenConns)
	}
	if o.MaxIdleConns < 0 {
		return fmt.Errorf("%w: max_idle_conns must not be negative, got %d", ErrInvalidOption, o.MaxIdleConns)
	}
	if o.ConnMaxLifetime < 0 {
		return fmt.Errorf("%w: conn_max_lifetime must not be negative, got %s", ErrInvalidOption, o.ConnMaxLifetime)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: batch_size must not be negative, got %d", ErrInvalidOption, o.BatchSize)
	}
	mode, err := ParseFlushMode(string(o.FlushMode))
	if err != nil {
		return err
	}
	o.FlushMode = mode
	return nil
}

// DecodeProperties decodes configuration properties such as
// {"driver": "postgres", "conn_max_lifetime": "5m"} into opts.
// Unknown keys are rejected so typos do not go unnoticed.
func DecodeProperties(props map[string]any, opts *Options) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           opts,
	})
	if err != nil {
		return fmt.Errorf("failed to create property decoder: %w", err)
	}
	if err := dec.Decode(props); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return nil
}
