package core

// Category identifies one of the namespaces a contribution can be registered in.
// Names are unique within a category; the same name may appear in several categories.
type Category int

// Mapping categories.
const (
	CategoryTable Category = iota
	CategoryEntity
	CategoryCollection
	CategoryNamedQuery
	CategoryNamedNativeQuery
	CategoryNamedProcedureCall
	CategoryResultSetMapping
	CategoryTypeDefinition
	CategoryFilterDefinition
	CategoryFetchProfile
	CategoryNamedEntityGraph
	CategoryIdentifierGenerator
	CategorySQLFunction
	CategoryImport
)

var categoryNames = [...]string{
	CategoryTable:               "table",
	CategoryEntity:              "entity",
	CategoryCollection:          "collection",
	CategoryNamedQuery:          "named query",
	CategoryNamedNativeQuery:    "named native query",
	CategoryNamedProcedureCall:  "named procedure call",
	CategoryResultSetMapping:    "result set mapping",
	CategoryTypeDefinition:      "type definition",
	CategoryFilterDefinition:    "filter definition",
	CategoryFetchProfile:        "fetch profile",
	CategoryNamedEntityGraph:    "named entity graph",
	CategoryIdentifierGenerator: "identifier generator",
	CategorySQLFunction:         "sql function",
	CategoryImport:              "import",
}

// String returns the human-readable category name.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categories returns every category in declaration order.
func Categories() []Category {
	all := make([]Category, len(categoryNames))
	for i := range categoryNames {
		all[i] = Category(i)
	}
	return all
}

// ParseCategory converts a category name to a Category value.
// Both the display name ("named query") and the snake_case form ("named_query") are accepted.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if s == name || s == snakeCase(name) {
			return Category(i), true
		}
	}
	return 0, false
}

func snakeCase(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == ' ' {
			b[i] = '_'
		}
	}
	return string(b)
}
