// Package session bridges a sealed metadata snapshot to a database: a
// FactoryBuilder takes the snapshot plus a fixed set of overrides and builds
// a Factory, which owns the connection pool and opens Sessions.
//
// The bridge only reads metadata. It never changes a snapshot.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapmap/pkg/core"
)

// Metadata is the read contract a factory needs from a bound snapshot.
type Metadata interface {
	UUID() uuid.UUID
	EntityBinding(name string) (*core.EntityBinding, bool)
	NamedQuery(name string) (*core.NamedQuery, bool)
	NamedNativeQuery(name string) (*core.NamedNativeQuery, bool)
	FilterDefinition(name string) (*core.FilterDefinition, bool)
	FetchProfile(name string) (*core.FetchProfile, bool)
}

// FactoryBuilder collects overrides for a session factory.
// It is not safe for concurrent use.
type FactoryBuilder struct {
	md   Metadata
	opts Options
	err  error
}

// NewFactoryBuilder creates a builder for md with the default options and opts applied.
func NewFactoryBuilder(md Metadata, opts ...Option) *FactoryBuilder {
	b := &FactoryBuilder{md: md, opts: defaultOptions()}
	return b.Apply(opts...)
}

// Apply applies opts on top of the current settings.
func (b *FactoryBuilder) Apply(opts ...Option) *FactoryBuilder {
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// ApplyProperties decodes configuration properties on top of the current
// settings. A decoding error is reported by Build.
func (b *FactoryBuilder) ApplyProperties(props map[string]any) *FactoryBuilder {
	if len(props) == 0 || b.err != nil {
		return b
	}
	if err := DecodeProperties(props, &b.opts); err != nil {
		b.err = err
	}
	return b
}

// Options returns a copy of the current settings.
func (b *FactoryBuilder) Options() Options {
	return b.opts
}

// Build validates the settings, opens and pings the pool and returns the factory.
func (b *FactoryBuilder) Build(ctx context.Context) (*Factory, error) {
	if b.md == nil {
		return nil, fmt.Errorf("%w: metadata is required", ErrInvalidOption)
	}
	if b.err != nil {
		return nil, b.err
	}

	opts := b.opts
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, owned := opts.db, false
	if db == nil {
		driverName, _ := sqlDriverName(opts.Driver)
		logger.Debug("opening connection pool", slog.String("driver", opts.Driver))

		var err error
		db, err = sql.Open(driverName, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s connection: %w", opts.Driver, err)
		}
		owned = true

		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		if owned {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to ping %s: %w", opts.Driver, err)
	}

	f := &Factory{
		md:     b.md,
		opts:   opts,
		db:     db,
		ownsDB: owned,
		logger: logger,
	}
	logger.Info("session factory built",
		slog.String("metadata", b.md.UUID().String()),
		slog.String("driver", opts.Driver),
		slog.String("flush_mode", string(opts.FlushMode)))
	return f, nil
}

// Factory opens sessions against one connection pool for one metadata snapshot.
// It is safe for concurrent use.
type Factory struct {
	md     Metadata
	opts   Options
	db     *sql.DB
	ownsDB bool
	logger *slog.Logger
	closed atomic.Bool
}

// Metadata returns the snapshot the factory was built from.
func (f *Factory) Metadata() Metadata {
	return f.md
}

// UUID returns the identity of the underlying snapshot.
func (f *Factory) UUID() uuid.UUID {
	return f.md.UUID()
}

// Options returns the validated settings.
func (f *Factory) Options() Options {
	return f.opts
}

// DB returns the connection pool.
func (f *Factory) DB() *sql.DB {
	return f.db
}

// OpenSession reserves a connection and returns a new session on it.
func (f *Factory) OpenSession(ctx context.Context) (*Session, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	conn, err := f.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection: %w", err)
	}

	s := newSession(f, conn)
	f.logger.Debug("session opened", slog.String("session", s.ID().String()))
	return s, nil
}

// Close closes the pool if the factory opened it. Calling Close twice is a no-op.
func (f *Factory) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !f.ownsDB {
		return nil
	}
	f.logger.Debug("closing connection pool")
	return f.db.Close()
}
