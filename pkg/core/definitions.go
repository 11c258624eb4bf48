package core

import (
	"strconv"
	"strings"
)

// TypeDefinition registers a custom value type under a name.
type TypeDefinition struct {
	Name string
	// Implementation references the type's implementation, e.g. a class or codec name.
	Implementation string
	Parameters     map[string]string
	Origin         Origin
}

// RecordName implements Record.
func (t *TypeDefinition) RecordName() string { return t.Name }

// RecordCategory implements Record.
func (t *TypeDefinition) RecordCategory() Category { return CategoryTypeDefinition }

// RecordOrigin implements Record.
func (t *TypeDefinition) RecordOrigin() Origin { return t.Origin }

// FilterDefinition declares a parameterized filter that entities and collections can apply.
type FilterDefinition struct {
	Name             string
	DefaultCondition string
	// ParameterTypes maps parameter names to type names.
	ParameterTypes map[string]string
	Origin         Origin
}

// RecordName implements Record.
func (f *FilterDefinition) RecordName() string { return f.Name }

// RecordCategory implements Record.
func (f *FilterDefinition) RecordCategory() Category { return CategoryFilterDefinition }

// RecordOrigin implements Record.
func (f *FilterDefinition) RecordOrigin() Origin { return f.Origin }

// IdentifierGenerator is a named identifier generation strategy.
type IdentifierGenerator struct {
	Name       string
	Strategy   string
	Parameters map[string]string
	Origin     Origin
}

// RecordName implements Record.
func (g *IdentifierGenerator) RecordName() string { return g.Name }

// RecordCategory implements Record.
func (g *IdentifierGenerator) RecordCategory() Category { return CategoryIdentifierGenerator }

// RecordOrigin implements Record.
func (g *IdentifierGenerator) RecordOrigin() Origin { return g.Origin }

// SQLFunction registers a function usable from queries and how to render it in SQL.
type SQLFunction struct {
	Name string
	// Pattern is a template with positional placeholders ?1, ?2, ...
	// When empty the function renders with standard call syntax.
	Pattern        string
	ReturnTypeName string
	// NoParens renders a zero-argument call without parentheses (e.g. current_date).
	NoParens bool
	Origin   Origin
}

// RecordName implements Record.
func (f *SQLFunction) RecordName() string { return f.Name }

// RecordCategory implements Record.
func (f *SQLFunction) RecordCategory() Category { return CategorySQLFunction }

// RecordOrigin implements Record.
func (f *SQLFunction) RecordOrigin() Origin { return f.Origin }

// Render produces the SQL fragment for a call with the given rendered arguments.
// Placeholders that refer past the supplied arguments render as empty strings.
func (f *SQLFunction) Render(args []string) string {
	if f.Pattern == "" {
		if len(args) == 0 && f.NoParens {
			return f.Name
		}
		return f.Name + "(" + strings.Join(args, ", ") + ")"
	}

	var b strings.Builder
	p := f.Pattern
	for i := 0; i < len(p); i++ {
		if p[i] != '?' {
			b.WriteByte(p[i])
			continue
		}
		j := i + 1
		for j < len(p) && p[j] >= '0' && p[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('?')
			continue
		}
		n, _ := strconv.Atoi(p[i+1 : j])
		if n >= 1 && n <= len(args) {
			b.WriteString(args[n-1])
		}
		i = j - 1
	}
	return b.String()
}
