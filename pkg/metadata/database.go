package metadata

import (
	"errors"
	"iter"

	"github.com/leapstack-labs/leapmap/internal/registry"
	"github.com/leapstack-labs/leapmap/pkg/core"
)

// Database is the relational schema model: every contributed table, keyed by
// its catalog.schema.name with the configured defaults applied.
type Database struct {
	defaultCatalog string
	defaultSchema  string
	tables         *registry.Registry[*core.Table]
}

func newDatabase(catalog, schema string) *Database {
	return &Database{
		defaultCatalog: catalog,
		defaultSchema:  schema,
		tables:         registry.New[*core.Table](core.CategoryTable),
	}
}

// DefaultCatalog returns the catalog applied to unqualified references.
func (d *Database) DefaultCatalog() string {
	return d.defaultCatalog
}

// DefaultSchema returns the schema applied to unqualified references.
func (d *Database) DefaultSchema() string {
	return d.defaultSchema
}

// qualify fills in missing catalog and schema parts from the defaults.
func (d *Database) qualify(catalog, schema string) (string, string) {
	if catalog == "" {
		catalog = d.defaultCatalog
	}
	if schema == "" {
		schema = d.defaultSchema
	}
	return catalog, schema
}

// key builds the registry key for a table. Empty parts keep their separator
// so a catalog "erp" never collides with a schema "erp".
func (d *Database) key(catalog, schema, name string) string {
	catalog, schema = d.qualify(catalog, schema)
	return catalog + "." + schema + "." + name
}

func (d *Database) addTable(t *core.Table) error {
	err := d.tables.Put(d.key(t.Catalog, t.Schema, t.Name), t, t.Origin)
	var dup *core.DuplicateNameError
	if errors.As(err, &dup) {
		catalog, schema := d.qualify(t.Catalog, t.Schema)
		dup.Name = core.QualifyName(catalog, schema, t.Name)
	}
	return err
}

// Table resolves a table reference. The reference may be unqualified
// ("orders"), schema-qualified ("sales.orders") or fully qualified
// ("erp.sales.orders"); missing parts are taken from the defaults.
func (d *Database) Table(ref string) (*core.Table, bool) {
	catalog, schema, name := core.SplitQualifiedName(ref)
	return d.tables.Get(d.key(catalog, schema, name))
}

// Tables yields every table in contribution order.
func (d *Database) Tables() iter.Seq[*core.Table] {
	return d.tables.All()
}

// TableCount returns the number of tables.
func (d *Database) TableCount() int {
	return d.tables.Len()
}

// move transfers the tables into a new sealed Database and leaves the receiver
// as an empty sealed placeholder.
func (d *Database) move() *Database {
	return &Database{
		defaultCatalog: d.defaultCatalog,
		defaultSchema:  d.defaultSchema,
		tables:         d.tables.Move(),
	}
}
