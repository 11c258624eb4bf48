package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmap/internal/testutil"
	"github.com/leapstack-labs/leapmap/pkg/session"
)

// writeProject creates a project directory holding leapmap.yaml and returns it.
func writeProject(t *testing.T, yamlContent string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapmap.yaml"), []byte(yamlContent), 0o600))
	return dir
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.StringP("target", "t", "", "")
	flags.String("env", "", "")
	flags.String("mappings-dir", "", "")
	flags.String("default-catalog", "", "")
	flags.String("default-schema", "", "")
	flags.String("driver", "", "")
	flags.String("dsn", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, root, gotRoot)

	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultMappingsDir), cfg.MappingsDir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, &TargetConfig{Driver: "sqlite", DSN: ":memory:"}, cfg.Target)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := writeProject(t, `
mappings_dir: defs
default_catalog: main
default_schema: sales
output: json
target:
  driver: postgres
  dsn: postgres://localhost/shop
session:
  max_open_conns: 8
  flush_mode: commit
`)

	cfg, err := LoadConfig(filepath.Join(dir, "leapmap.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "defs"), cfg.MappingsDir)
	assert.Equal(t, "main", cfg.DefaultCatalog)
	assert.Equal(t, "sales", cfg.DefaultSchema)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "postgres", cfg.Target.Driver)
	assert.Equal(t, "postgres://localhost/shop", cfg.Target.DSN)
	assert.EqualValues(t, 8, cfg.Session["max_open_conns"])
	assert.Equal(t, "commit", cfg.Session["flush_mode"])
	assert.Equal(t, filepath.Join(dir, "leapmap.yaml"), GetConfigFileUsed())

	// The session section decodes straight into factory options.
	var opts session.Options
	require.NoError(t, session.DecodeProperties(cfg.Session, &opts))
	assert.Equal(t, 8, opts.MaxOpenConns)
	assert.Equal(t, session.FlushCommit, opts.FlushMode)
}

func TestLoadConfig_DiscoversFileUpward(t *testing.T) {
	ResetConfig()
	dir := writeProject(t, "mappings_dir: defs\n")
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "defs", filepath.Base(cfg.MappingsDir))
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := writeProject(t, `
output: json
default_schema: from_file
target:
  dsn: file.db
`)
	cfgFile := filepath.Join(dir, "leapmap.yaml")

	t.Run("env over file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPMAP_OUTPUT", "markdown")
		t.Setenv("LEAPMAP_TARGET_DSN", "env.db")
		t.Setenv("LEAPMAP_SESSION_BATCH_SIZE", "25")

		cfg, err := LoadConfig(cfgFile, nil)
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg.OutputFormat)
		assert.Equal(t, "env.db", cfg.Target.DSN)
		assert.Equal(t, "from_file", cfg.DefaultSchema)
		assert.Equal(t, "25", cfg.Session["batch_size"])
	})

	t.Run("flag over env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPMAP_OUTPUT", "markdown")

		flags := newFlagSet()
		require.NoError(t, flags.Parse([]string{"-o", "text", "--dsn", "flag.db", "--default-schema", "from_flag"}))

		cfg, err := LoadConfig(cfgFile, flags)
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.OutputFormat)
		assert.Equal(t, "flag.db", cfg.Target.DSN)
		assert.Equal(t, "from_flag", cfg.DefaultSchema)
	})

	t.Run("unset flag keeps env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPMAP_OUTPUT", "markdown")

		flags := newFlagSet()
		require.NoError(t, flags.Parse(nil))

		cfg, err := LoadConfig(cfgFile, flags)
		require.NoError(t, err)
		assert.Equal(t, "markdown", cfg.OutputFormat)
		assert.Equal(t, "file.db", cfg.Target.DSN)
	})
}

func TestLoadConfig_MappingsDirFlagIsRelativeToWorkingDir(t *testing.T) {
	ResetConfig()
	dir := writeProject(t, "mappings_dir: defs\n")
	cwd := t.TempDir()
	t.Chdir(cwd)

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--mappings-dir", "local"}))

	cfg, err := LoadConfig(filepath.Join(dir, "leapmap.yaml"), flags)
	require.NoError(t, err)

	want, err := filepath.Abs("local")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.MappingsDir)
}

func TestLoadConfigWithTarget_Environments(t *testing.T) {
	dir := writeProject(t, `
environment: dev
target:
  driver: sqlite
  dsn: dev.db
environments:
  dev:
    mappings_dir: dev-mappings
  prod:
    target:
      driver: postgres
      dsn: ${LEAPMAP_TEST_PROD_DSN}
`)
	cfgFile := filepath.Join(dir, "leapmap.yaml")

	t.Run("environment from file", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(cfgFile, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, filepath.Join(dir, "dev-mappings"), cfg.MappingsDir)
		assert.Equal(t, "dev.db", cfg.Target.DSN)
	})

	t.Run("override merges target and expands variables", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPMAP_TEST_PROD_DSN", "postgres://prod/shop")

		cfg, err := LoadConfigWithTarget(cfgFile, "prod", nil)
		require.NoError(t, err)
		assert.Equal(t, "prod", cfg.Environment)
		assert.Equal(t, "postgres", cfg.Target.Driver)
		assert.Equal(t, "postgres://prod/shop", cfg.Target.DSN)
		assert.Equal(t, filepath.Join(dir, "mappings"), cfg.MappingsDir)
	})

	t.Run("unknown override", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(cfgFile, "staging", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown environment "staging"`)
		assert.Contains(t, err.Error(), "[dev prod]")
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		errSubstr string
	}{
		{"unknown driver", "target:\n  driver: oracle\n", `unknown driver "oracle"`},
		{"bad output", "output: html\n", `invalid output format "html"`},
		{"malformed yaml", "target: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := writeProject(t, tt.yaml)
			_, err := LoadConfig(filepath.Join(dir, "leapmap.yaml"), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	cfg.MappingsDir = dir
	assert.NoError(t, cfg.ValidateDirectories())

	cfg.MappingsDir = filepath.Join(dir, "missing")
	err := cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--mappings-dir")

	f := filepath.Join(dir, "file.yaml")
	require.NoError(t, os.WriteFile(f, nil, 0o600))
	cfg.MappingsDir = f
	assert.ErrorContains(t, cfg.ValidateDirectories(), "not a directory")
}

func TestEnvAndFlagKeys(t *testing.T) {
	assert.Equal(t, "target.dsn", envKey("LEAPMAP_TARGET_DSN"))
	assert.Equal(t, "session.max_open_conns", envKey("LEAPMAP_SESSION_MAX_OPEN_CONNS"))
	assert.Equal(t, "mappings_dir", envKey("LEAPMAP_MAPPINGS_DIR"))

	assert.Equal(t, "target.driver", flagKey("driver"))
	assert.Equal(t, "environment", flagKey("env"))
	assert.Equal(t, "default_catalog", flagKey("default-catalog"))
}

func TestMergeTargetConfig(t *testing.T) {
	base := &TargetConfig{Driver: "sqlite", DSN: "a.db"}

	assert.Same(t, base, MergeTargetConfig(base, nil))
	override := &TargetConfig{DSN: "b.db"}
	assert.Same(t, override, MergeTargetConfig(nil, override))

	merged := MergeTargetConfig(base, override)
	assert.Equal(t, &TargetConfig{Driver: "sqlite", DSN: "b.db"}, merged)
	assert.Equal(t, "a.db", base.DSN, "base must not be modified")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEAPMAP_TEST_USER", "alice")
	assert.Equal(t, "postgres://alice@db", expandEnvVars("postgres://${LEAPMAP_TEST_USER}@db"))
	assert.Equal(t, "${LEAPMAP_TEST_UNSET}", expandEnvVars("${LEAPMAP_TEST_UNSET}"))
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := testutil.NewTestLogger(t)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
