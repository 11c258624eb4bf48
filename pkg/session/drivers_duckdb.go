//go:build cgo

package session

import (
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	RegisterDriver("duckdb", "duckdb")
}
