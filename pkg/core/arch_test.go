package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// importsOf returns the imports of every non-test Go file in dir, keyed by file name.
func importsOf(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	result := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			result[entry.Name()] = append(result[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return result
}

// TestCoreImportsOnlyStdlib verifies pkg/core stays plain data: stdlib only.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, imports := range importsOf(t, ".") {
		for _, importPath := range imports {
			// Stdlib paths have no dot in their first element
			if strings.Contains(strings.SplitN(importPath, "/", 2)[0], ".") {
				t.Errorf("%s imports forbidden package: %s", file, importPath)
			}
		}
	}
}

// TestPublicPackagesDoNotImportTooling verifies the metadata and session
// packages never depend on the CLI or the YAML loader.
func TestPublicPackagesDoNotImportTooling(t *testing.T) {
	forbidden := []string{"/internal/cli", "/internal/loader", "/cmd/"}

	for _, dir := range []string{"../metadata", "../session"} {
		for file, imports := range importsOf(t, dir) {
			for _, importPath := range imports {
				for _, f := range forbidden {
					if strings.Contains(importPath, f) {
						t.Errorf("%s/%s imports %s (public packages must not depend on tooling)",
							filepath.Base(dir), file, importPath)
					}
				}
			}
		}
	}
}

// TestSessionDoesNotImportMetadata keeps the factory bridge decoupled: the
// session package sees metadata only through its Metadata interface.
func TestSessionDoesNotImportMetadata(t *testing.T) {
	for file, imports := range importsOf(t, "../session") {
		for _, importPath := range imports {
			if strings.HasSuffix(importPath, "/pkg/metadata") {
				t.Errorf("session/%s imports %s", file, importPath)
			}
		}
	}
}
