package metadata

import (
	"log/slog"

	"github.com/leapstack-labs/leapmap/pkg/session"
)

type options struct {
	logger         *slog.Logger
	defaultCatalog string
	defaultSchema  string
	sessionOptions []session.Option
}

// Option configures a Collector.
type Option func(*options)

// WithLogger sets the logger used by the collector, the binder and the
// resulting snapshot. If nil is passed, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDefaultCatalog sets the catalog applied to tables and table references
// that do not name one.
func WithDefaultCatalog(catalog string) Option {
	return func(o *options) {
		o.defaultCatalog = catalog
	}
}

// WithDefaultSchema sets the schema applied to tables and table references
// that do not name one.
func WithDefaultSchema(schema string) Option {
	return func(o *options) {
		o.defaultSchema = schema
	}
}

// WithSessionOptions sets the factory settings used by
// Metadata.BuildSessionFactory and as the base of Metadata.SessionFactoryBuilder.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOptions = append(o.sessionOptions, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
