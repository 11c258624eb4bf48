// Package loader reads YAML mapping files and hands their records to a
// metadata.Collector.
//
// Files are parsed concurrently; records are contributed afterwards in file
// order, so the collector still sees a single writer.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapmap/pkg/metadata"
	"golang.org/x/sync/errgroup"
)

// ConfigFileNames are skipped by Discover so a project config can live
// next to the mappings.
var ConfigFileNames = []string{"leapmap.yaml", "leapmap.yml"}

// Loader discovers and parses mapping files.
type Loader struct {
	logger      *slog.Logger
	concurrency int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. If nil is passed, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithConcurrency limits how many files are parsed at once.
// Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		l.concurrency = n
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.concurrency < 1 {
		l.concurrency = runtime.GOMAXPROCS(0)
	}
	return l
}

// IsMappingFile reports whether a base file name is a YAML mapping file.
func IsMappingFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	for _, cfg := range ConfigFileNames {
		if name == cfg {
			return false
		}
	}
	return true
}

// Discover returns every mapping file below dir, sorted by path.
// Hidden directories are skipped.
func (l *Loader) Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsMappingFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover mappings in %s: %w", dir, err)
	}

	sort.Strings(paths)
	l.logger.Debug("discovered mapping files", slog.String("dir", dir), slog.Int("count", len(paths)))
	return paths, nil
}

// LoadFiles parses the given files concurrently. Documents are returned in
// the order of paths. Parse errors of all files are joined.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ParseFile(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			l.logger.Debug("parsed mapping file", slog.String("file", path), slog.Int("records", len(doc.Records)))
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadDir discovers and parses every mapping file below dir.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*Document, error) {
	paths, err := l.Discover(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadFiles(ctx, paths)
}

// Contribute adds every record of docs to c. It keeps going after a failed
// contribution and returns all failures joined.
func Contribute(c *metadata.Collector, docs []*Document) error {
	var errs []error
	for _, doc := range docs {
		for _, r := range doc.Records {
			if err := c.Contribute(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Collect loads dir into a new collector built with opts.
func (l *Loader) Collect(ctx context.Context, dir string, opts ...metadata.Option) (*metadata.Collector, error) {
	docs, err := l.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}

	c := metadata.NewCollector(opts...)
	if err := Contribute(c, docs); err != nil {
		return nil, err
	}
	return c, nil
}
