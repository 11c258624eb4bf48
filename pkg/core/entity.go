package core

// EntityBinding maps one entity (a persistent class) onto the relational schema.
type EntityBinding struct {
	// EntityName is the unique entity name, e.g. "Order".
	EntityName string
	// ClassName is the implementing type, e.g. "com.acme.shop.Order".
	ClassName string
	// TableName references the primary table. Empty means the entity name for
	// root entities and the superclass table for subclasses (single-table inheritance).
	TableName string
	// SecondaryTables are additional tables the entity's properties are spread over.
	SecondaryTables []string
	// SuperclassName names the parent entity, empty for hierarchy roots.
	SuperclassName string
	// DiscriminatorValue distinguishes the entity inside a shared hierarchy table.
	DiscriminatorValue string
	// Abstract entities are never instantiated directly.
	Abstract bool
	// Identifier describes the id property and how values are generated.
	Identifier Identifier
	// Properties are the mapped non-identifier attributes.
	Properties []Property
	// Filters applied to this entity.
	Filters []FilterRef
	// Origin is where the binding was declared.
	Origin Origin

	// Resolved during binding.
	Table      *Table
	Joins      []*Table
	Superclass *EntityBinding
	Subclasses []*EntityBinding
	Generator  *IdentifierGenerator
}

// Identifier describes an entity's identifier property.
type Identifier struct {
	Property string
	Columns  []string
	TypeName string
	// Strategy is a built-in strategy such as "assigned", "identity" or "sequence".
	Strategy string
	// GeneratorName references an IdentifierGenerator; empty means Strategy is used as is.
	GeneratorName string

	// Type is the resolved type definition, nil for built-in types.
	Type *TypeDefinition
}

// Property is a single mapped attribute.
type Property struct {
	Name     string
	Columns  []string
	TypeName string
	Nullable bool
	Lazy     bool

	// Type is the resolved type definition, nil for built-in types.
	Type *TypeDefinition
}

// FilterRef applies a FilterDefinition to an entity or collection.
type FilterRef struct {
	Name string
	// Condition overrides the definition's default condition when set.
	Condition string

	Definition *FilterDefinition
}

// EffectiveCondition returns the override condition or the definition default.
func (f FilterRef) EffectiveCondition() string {
	if f.Condition != "" || f.Definition == nil {
		return f.Condition
	}
	return f.Definition.DefaultCondition
}

// IsRoot reports whether the entity has no superclass.
func (e *EntityBinding) IsRoot() bool {
	return e.SuperclassName == ""
}

// RootEntity walks resolved superclass links up to the hierarchy root.
// Before binding it returns the entity itself.
func (e *EntityBinding) RootEntity() *EntityBinding {
	root := e
	for root.Superclass != nil {
		root = root.Superclass
	}
	return root
}

// Hierarchy returns the entity and its resolved ancestors, nearest first.
func (e *EntityBinding) Hierarchy() []*EntityBinding {
	var chain []*EntityBinding
	for cur := e; cur != nil; cur = cur.Superclass {
		chain = append(chain, cur)
	}
	return chain
}

// Property returns the named property, searching resolved ancestors as well.
func (e *EntityBinding) Property(name string) (*Property, bool) {
	for _, cur := range e.Hierarchy() {
		for i := range cur.Properties {
			if cur.Properties[i].Name == name {
				return &cur.Properties[i], true
			}
		}
	}
	return nil, false
}

// RecordName implements Record.
func (e *EntityBinding) RecordName() string { return e.EntityName }

// RecordCategory implements Record.
func (e *EntityBinding) RecordCategory() Category { return CategoryEntity }

// RecordOrigin implements Record.
func (e *EntityBinding) RecordOrigin() Origin { return e.Origin }

// Import registers Alias as an alternative name for an entity.
type Import struct {
	Alias      string
	EntityName string
	Origin     Origin

	Entity *EntityBinding
}

// RecordName implements Record.
func (i *Import) RecordName() string { return i.Alias }

// RecordCategory implements Record.
func (i *Import) RecordCategory() Category { return CategoryImport }

// RecordOrigin implements Record.
func (i *Import) RecordOrigin() Origin { return i.Origin }
