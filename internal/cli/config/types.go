// Package config provides configuration management for the leapmap CLI.
//
// Values are layered with koanf: built-in defaults, then leapmap.yaml, then
// LEAPMAP_ environment variables, then explicitly set command-line flags.
package config

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapmap/internal/cli/output"
	"github.com/leapstack-labs/leapmap/pkg/session"
)

// TargetConfig selects the database a session factory connects to.
type TargetConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// EnvConfig holds environment-specific overrides.
type EnvConfig struct {
	MappingsDir string        `koanf:"mappings_dir"`
	Target      *TargetConfig `koanf:"target"`
}

// Config holds all CLI configuration options.
type Config struct {
	MappingsDir    string               `koanf:"mappings_dir"`
	DefaultCatalog string               `koanf:"default_catalog"`
	DefaultSchema  string               `koanf:"default_schema"`
	Environment    string               `koanf:"environment"`
	Verbose        bool                 `koanf:"verbose"`
	OutputFormat   string               `koanf:"output"`
	Target         *TargetConfig        `koanf:"target"`
	Session        map[string]any       `koanf:"session"`
	Environments   map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultMappingsDir = "mappings"
	DefaultOutput      = "auto" // TTY=text, non-TTY=markdown
	DefaultDriver      = session.DefaultDriver
	DefaultDSN         = session.DefaultDSN
)

// ConfigFileNames are searched in order in the project root.
var ConfigFileNames = []string{"leapmap.yaml", "leapmap.yml"}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		MappingsDir:  DefaultMappingsDir,
		OutputFormat: DefaultOutput,
		Target:       &TargetConfig{Driver: DefaultDriver, DSN: DefaultDSN},
	}
}

// Validate checks values that do not depend on the filesystem.
func (c *Config) Validate() error {
	if c.MappingsDir == "" {
		return fmt.Errorf("mappings_dir is required")
	}
	if _, err := output.ParseMode(c.OutputFormat); err != nil {
		return err
	}
	if c.Target == nil || c.Target.Driver == "" {
		return fmt.Errorf("target driver is required")
	}
	if !session.IsRegistered(c.Target.Driver) {
		return &session.UnknownDriverError{Name: c.Target.Driver, Available: session.Drivers()}
	}
	return nil
}

// ValidateDirectories checks that the mappings directory exists.
func (c *Config) ValidateDirectories() error {
	info, err := os.Stat(c.MappingsDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("mappings directory does not exist: %s\nHint: Create the directory or use --mappings-dir to specify a different path", c.MappingsDir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat mappings directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mappings path is not a directory: %s", c.MappingsDir)
	}
	return nil
}
