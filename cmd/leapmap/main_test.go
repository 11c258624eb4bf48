// Package main provides end-to-end tests for the leapmap CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapmap/internal/cli"
	"github.com/leapstack-labs/leapmap/internal/cli/config"
)

const mappings = `tables:
  - name: orders
    columns:
      - {name: id, sql_type: bigint}
entities:
  - name: Order
    table: orders
    id: {property: id, columns: [id]}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mappings"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mappings", "shop.yaml"), []byte(mappings), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapmap.yaml"), []byte("mappings_dir: mappings\n"), 0o600))
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapmap v"+cli.Version)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "leapmap "+cli.Version))
}

func TestValidate_EndToEnd(t *testing.T) {
	dir := project(t)

	out, err := run(t, "--config", filepath.Join(dir, "leapmap.yaml"), "-o", "json", "validate")
	require.NoError(t, err)

	var got struct {
		Valid  bool           `json:"valid"`
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, map[string]int{"table": 1, "entity": 1}, got.Counts)
}

func TestValidate_MappingsDirFlag(t *testing.T) {
	dir := project(t)
	t.Chdir(t.TempDir())

	out, err := run(t, "validate", "--mappings-dir", filepath.Join(dir, "mappings"), "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| Entity | 1 |")
}

func TestPing_EndToEnd(t *testing.T) {
	dir := project(t)

	out, err := run(t, "--config", filepath.Join(dir, "leapmap.yaml"), "--driver", "sqlite", "--dsn", ":memory:", "-o", "json", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, `"driver": "sqlite"`)
}

func TestUnknownDriver(t *testing.T) {
	dir := project(t)

	_, err := run(t, "--config", filepath.Join(dir, "leapmap.yaml"), "--driver", "oracle", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "oracle"`)
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapmap")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}
