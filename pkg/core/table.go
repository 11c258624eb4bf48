package core

import "strings"

// Table is one relational table of the schema model.
type Table struct {
	// Catalog is the optional catalog the table lives in.
	Catalog string
	// Schema is the optional schema; empty means the database default schema.
	Schema string
	// Name is the unqualified table name.
	Name string
	// Columns in declaration order.
	Columns []Column
	// PrimaryKey is nil for tables without one (e.g. some join tables).
	PrimaryKey *PrimaryKey
	// Comment is free-form documentation.
	Comment string
	// Origin is where the table was declared.
	Origin Origin
}

// Column is a single table column.
type Column struct {
	Name     string
	SQLType  string
	Nullable bool
	Unique   bool
	Length   int
	// TypeName optionally names a TypeDefinition; names that are not
	// contributed type definitions are treated as built-in types.
	TypeName string

	// Type is the resolved type definition, nil for built-in types.
	Type *TypeDefinition
}

// PrimaryKey names the columns forming a table's primary key.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// QualifiedName joins the non-empty catalog, schema and name with dots.
func (t *Table) QualifiedName() string {
	return QualifyName(t.Catalog, t.Schema, t.Name)
}

// Column returns the column with the given name (case-insensitive).
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// RecordName implements Record.
func (t *Table) RecordName() string { return t.QualifiedName() }

// RecordCategory implements Record.
func (t *Table) RecordCategory() Category { return CategoryTable }

// RecordOrigin implements Record.
func (t *Table) RecordOrigin() Origin { return t.Origin }

// QualifyName joins the non-empty parts of a catalog.schema.name reference.
func QualifyName(catalog, schema, name string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{catalog, schema, name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// SplitQualifiedName splits a dotted table reference into catalog, schema and name.
// "orders" yields ("", "", "orders"), "sales.orders" yields ("", "sales", "orders").
func SplitQualifiedName(ref string) (catalog, schema, name string) {
	parts := strings.Split(ref, ".")
	switch len(parts) {
	case 1:
		return "", "", parts[0]
	case 2:
		return "", parts[0], parts[1]
	default:
		n := len(parts)
		return strings.Join(parts[:n-2], "."), parts[n-2], parts[n-1]
	}
}
