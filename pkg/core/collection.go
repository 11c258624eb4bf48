package core

import "strings"

// CollectionKind is the semantic of a mapped collection.
type CollectionKind string

// Collection kinds.
const (
	CollectionBag   CollectionKind = "bag"
	CollectionSet   CollectionKind = "set"
	CollectionList  CollectionKind = "list"
	CollectionMap   CollectionKind = "map"
	CollectionArray CollectionKind = "array"
)

// CollectionBinding maps a collection-valued attribute of an entity.
type CollectionBinding struct {
	// Role is the owner-qualified attribute name, e.g. "Order.items".
	Role string
	// OwnerEntityName names the entity declaring the collection.
	OwnerEntityName string
	// Kind defaults to bag when empty.
	Kind CollectionKind
	// ElementEntityName names the associated entity for one-to-many and many-to-many.
	ElementEntityName string
	// ElementTypeName is the value type for collections of basic values.
	ElementTypeName string
	// CollectionTableName is the join or element table, empty for one-to-many
	// associations that reuse the element entity's table.
	CollectionTableName string
	// KeyColumns hold the foreign key back to the owner.
	KeyColumns []string
	Inverse    bool
	Lazy       bool
	OrderBy    string
	Filters    []FilterRef
	Origin     Origin

	// Resolved during binding.
	Owner           *EntityBinding
	Element         *EntityBinding
	ElementType     *TypeDefinition
	CollectionTable *Table
}

// PropertyName returns the attribute part of the role ("items" for "Order.items").
func (c *CollectionBinding) PropertyName() string {
	if prefix := c.OwnerEntityName + "."; c.OwnerEntityName != "" && strings.HasPrefix(c.Role, prefix) {
		return strings.TrimPrefix(c.Role, prefix)
	}
	if i := strings.LastIndex(c.Role, "."); i >= 0 {
		return c.Role[i+1:]
	}
	return c.Role
}

// IsAssociation reports whether the elements are entities.
func (c *CollectionBinding) IsAssociation() bool {
	return c.ElementEntityName != ""
}

// RecordName implements Record.
func (c *CollectionBinding) RecordName() string { return c.Role }

// RecordCategory implements Record.
func (c *CollectionBinding) RecordCategory() Category { return CategoryCollection }

// RecordOrigin implements Record.
func (c *CollectionBinding) RecordOrigin() Origin { return c.Origin }
