package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmap/internal/cli/config"
	"github.com/leapstack-labs/leapmap/internal/cli/output"
	"github.com/leapstack-labs/leapmap/internal/loader"
	"github.com/leapstack-labs/leapmap/pkg/metadata"
	"github.com/leapstack-labs/leapmap/pkg/session"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the configuration loaded by the root command, or the
// defaults when a command runs outside of it (tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// bindResult is the outcome of loading and binding the mappings directory.
type bindResult struct {
	Files    []string
	Metadata *metadata.Metadata
}

// collectorOptions builds the collector options for the configuration.
func (c *CommandContext) collectorOptions() []metadata.Option {
	opts := []metadata.Option{
		metadata.WithLogger(c.Logger),
		metadata.WithDefaultCatalog(c.Cfg.DefaultCatalog),
		metadata.WithDefaultSchema(c.Cfg.DefaultSchema),
	}
	if t := c.Cfg.Target; t != nil {
		opts = append(opts, metadata.WithSessionOptions(session.WithDriver(t.Driver), session.WithDSN(t.DSN)))
	}
	return opts
}

// bindMappings loads every mapping file below the mappings directory and binds
// them. Files is set whenever discovery succeeded, even if binding failed.
func (c *CommandContext) bindMappings(ctx context.Context) (*bindResult, error) {
	if err := c.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}

	l := loader.New(loader.WithLogger(c.Logger))
	files, err := l.Discover(c.Cfg.MappingsDir)
	if err != nil {
		return nil, err
	}
	res := &bindResult{Files: files}

	docs, err := l.LoadFiles(ctx, files)
	if err != nil {
		return res, err
	}

	col := metadata.NewCollector(c.collectorOptions()...)
	if err := loader.Contribute(col, docs); err != nil {
		return res, err
	}

	md, err := col.Bind()
	if err != nil {
		return res, err
	}
	res.Metadata = md
	return res, nil
}

// sessionFactory builds a factory for md with the configured session properties.
func (c *CommandContext) sessionFactory(ctx context.Context, md *metadata.Metadata) (*session.Factory, error) {
	f, err := md.SessionFactoryBuilder().ApplyProperties(c.Cfg.Session).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build session factory: %w", err)
	}
	return f, nil
}
