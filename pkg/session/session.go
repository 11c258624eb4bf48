package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapmap/pkg/core"
)

// EnabledFilter is a filter switched on for one session.
type EnabledFilter struct {
	Definition *core.FilterDefinition
	Parameters map[string]any
}

// Session is a unit of work on one reserved connection.
// A Session is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	factory   *Factory
	conn      *sql.Conn
	logger    *slog.Logger
	flushMode FlushMode

	filters  map[string]*EnabledFilter
	profiles map[string]*core.FetchProfile
	closed   bool
}

func newSession(f *Factory, conn *sql.Conn) *Session {
	id := uuid.New()
	return &Session{
		id:        id,
		factory:   f,
		conn:      conn,
		logger:    f.logger.With(slog.String("session", id.String())),
		flushMode: f.opts.FlushMode,
		filters:   make(map[string]*EnabledFilter),
		profiles:  make(map[string]*core.FetchProfile),
	}
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Factory returns the factory that opened the session.
func (s *Session) Factory() *Factory {
	return s.factory
}

// FlushMode returns the session's flush mode. Native statements run
// immediately whatever the mode; the mode is for the persistence layer that
// queues changes on top of a session.
func (s *Session) FlushMode() FlushMode {
	return s.flushMode
}

// SetFlushMode overrides the factory default for this session.
func (s *Session) SetFlushMode(mode FlushMode) error {
	m, err := ParseFlushMode(string(mode))
	if err != nil {
		return err
	}
	s.flushMode = m
	return nil
}

// EnableFilter switches on a defined filter. Every parameter must be declared
// by the filter definition.
func (s *Session) EnableFilter(name string, params map[string]any) error {
	if s.closed {
		return ErrSessionClosed
	}
	def, ok := s.factory.md.FilterDefinition(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownFilter, name)
	}
	for param := range params {
		if _, declared := def.ParameterTypes[param]; !declared {
			return fmt.Errorf("%w %q for filter %q", ErrUnknownParameter, param, name)
		}
	}

	s.filters[name] = &EnabledFilter{Definition: def, Parameters: maps.Clone(params)}
	s.logger.Debug("filter enabled", slog.String("filter", name))
	return nil
}

// DisableFilter switches a filter off. Disabling an inactive filter is a no-op.
func (s *Session) DisableFilter(name string) {
	delete(s.filters, name)
}

// EnabledFilter returns an enabled filter by name.
func (s *Session) EnabledFilter(name string) (*EnabledFilter, bool) {
	f, ok := s.filters[name]
	return f, ok
}

// EnabledFilters returns the names of the enabled filters (sorted).
func (s *Session) EnabledFilters() []string {
	return slices.Sorted(maps.Keys(s.filters))
}

// EnableFetchProfile switches on a defined fetch profile.
func (s *Session) EnableFetchProfile(name string) error {
	if s.closed {
		return ErrSessionClosed
	}
	p, ok := s.factory.md.FetchProfile(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownFetchProfile, name)
	}
	s.profiles[name] = p
	return nil
}

// DisableFetchProfile switches a fetch profile off.
func (s *Session) DisableFetchProfile(name string) {
	delete(s.profiles, name)
}

// IsFetchProfileEnabled reports whether a fetch profile is on.
func (s *Session) IsFetchProfileEnabled(name string) bool {
	_, ok := s.profiles[name]
	return ok
}

// QueryNative runs a named native query on the session's connection.
// The caller must close the returned rows.
func (s *Session) QueryNative(ctx context.Context, name string, args ...any) (*sql.Rows, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	q, ok := s.factory.md.NamedNativeQuery(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownQuery, name)
	}

	s.logger.Debug("executing named native query", slog.String("query", name))
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := s.conn.QueryContext(ctx, q.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query %q: %w", name, err)
	}
	return rows, nil
}

// ExecNative runs a named native statement that returns no rows.
func (s *Session) ExecNative(ctx context.Context, name string, args ...any) (sql.Result, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	q, ok := s.factory.md.NamedNativeQuery(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownQuery, name)
	}

	res, err := s.conn.ExecContext(ctx, q.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement %q: %w", name, err)
	}
	return res, nil
}

// Close returns the connection to the pool. Calling Close twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("session closed")
	return s.conn.Close()
}
