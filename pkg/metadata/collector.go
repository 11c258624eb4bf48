package metadata

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmap/internal/registry"
	"github.com/leapstack-labs/leapmap/pkg/core"
)

// Collector accumulates mapping contributions until Bind is called.
//
// Contributions may arrive in any order; a collection can be added before the
// entity that owns it. Only local checks happen here (nil records, empty names,
// duplicate names). Cross-references are resolved by Bind.
//
// A Collector is not safe for concurrent use. After Bind every method fails
// with *AlreadyBoundError.
type Collector struct {
	opts   options
	logger *slog.Logger

	database             *Database
	entities             *registry.Registry[*core.EntityBinding]
	collections          *registry.Registry[*core.CollectionBinding]
	namedQueries         *registry.Registry[*core.NamedQuery]
	nativeQueries        *registry.Registry[*core.NamedNativeQuery]
	procedureCalls       *registry.Registry[*core.NamedProcedureCall]
	resultSetMappings    *registry.Registry[*core.ResultSetMapping]
	typeDefinitions      *registry.Registry[*core.TypeDefinition]
	filterDefinitions    *registry.Registry[*core.FilterDefinition]
	fetchProfiles        *registry.Registry[*core.FetchProfile]
	entityGraphs         *registry.Registry[*core.NamedEntityGraph]
	identifierGenerators *registry.Registry[*core.IdentifierGenerator]
	sqlFunctions         *registry.Registry[*core.SQLFunction]
	imports              *registry.Registry[*core.Import]

	bound bool
}

// NewCollector creates an empty collector.
func NewCollector(opts ...Option) *Collector {
	o := buildOptions(opts)
	return &Collector{
		opts:                 o,
		logger:               o.logger,
		database:             newDatabase(o.defaultCatalog, o.defaultSchema),
		entities:             registry.New[*core.EntityBinding](core.CategoryEntity),
		collections:          registry.New[*core.CollectionBinding](core.CategoryCollection),
		namedQueries:         registry.New[*core.NamedQuery](core.CategoryNamedQuery),
		nativeQueries:        registry.New[*core.NamedNativeQuery](core.CategoryNamedNativeQuery),
		procedureCalls:       registry.New[*core.NamedProcedureCall](core.CategoryNamedProcedureCall),
		resultSetMappings:    registry.New[*core.ResultSetMapping](core.CategoryResultSetMapping),
		typeDefinitions:      registry.New[*core.TypeDefinition](core.CategoryTypeDefinition),
		filterDefinitions:    registry.New[*core.FilterDefinition](core.CategoryFilterDefinition),
		fetchProfiles:        registry.New[*core.FetchProfile](core.CategoryFetchProfile),
		entityGraphs:         registry.New[*core.NamedEntityGraph](core.CategoryNamedEntityGraph),
		identifierGenerators: registry.New[*core.IdentifierGenerator](core.CategoryIdentifierGenerator),
		sqlFunctions:         registry.New[*core.SQLFunction](core.CategorySQLFunction),
		imports:              registry.New[*core.Import](core.CategoryImport),
	}
}

// Bound reports whether Bind has been called.
func (c *Collector) Bound() bool {
	return c.bound
}

// Database returns the schema model being collected.
func (c *Collector) Database() *Database {
	return c.database
}

// contribute runs the local checks shared by every category and registers the record.
func contribute[T core.Record](c *Collector, r *registry.Registry[T], record T) error {
	if c.bound {
		return &AlreadyBoundError{}
	}
	var zero T
	if any(record) == any(zero) {
		return fmt.Errorf("%s: %w", r.Category(), core.ErrNilRecord)
	}

	name := record.RecordName()
	if name == "" {
		return fmt.Errorf("%s at %s: %w", r.Category(), record.RecordOrigin(), core.ErrMissingName)
	}
	if err := r.Put(name, record, record.RecordOrigin()); err != nil {
		return err
	}

	c.logger.Debug("contributed mapping",
		slog.String("category", r.Category().String()),
		slog.String("name", name))
	return nil
}

// AddTable adds a table to the schema model.
func (c *Collector) AddTable(t *core.Table) error {
	if c.bound {
		return &AlreadyBoundError{}
	}
	if t == nil {
		return fmt.Errorf("%s: %w", core.CategoryTable, core.ErrNilRecord)
	}
	if t.Name == "" {
		return fmt.Errorf("%s at %s: %w", core.CategoryTable, t.Origin, core.ErrMissingName)
	}
	if err := c.database.addTable(t); err != nil {
		return err
	}

	c.logger.Debug("contributed mapping",
		slog.String("category", core.CategoryTable.String()),
		slog.String("name", t.QualifiedName()))
	return nil
}

// AddEntityBinding adds a class binding.
func (c *Collector) AddEntityBinding(e *core.EntityBinding) error {
	return contribute(c, c.entities, e)
}

// AddCollectionBinding adds a collection binding. The owner is either declared
// or taken from the role prefix ("Order" for "Order.items"); a binding that
// names neither is rejected with ErrMissingName.
func (c *Collector) AddCollectionBinding(cb *core.CollectionBinding) error {
	if !c.bound && cb != nil && cb.Role != "" && ownerName(cb) == "" {
		return fmt.Errorf("%s %q at %s: owner entity: %w", core.CategoryCollection, cb.Role, cb.Origin, core.ErrMissingName)
	}
	return contribute(c, c.collections, cb)
}

// AddNamedQuery adds a named query.
func (c *Collector) AddNamedQuery(q *core.NamedQuery) error {
	return contribute(c, c.namedQueries, q)
}

// AddNamedNativeQuery adds a named native SQL query.
func (c *Collector) AddNamedNativeQuery(q *core.NamedNativeQuery) error {
	return contribute(c, c.nativeQueries, q)
}

// AddNamedProcedureCall adds a named stored procedure call.
func (c *Collector) AddNamedProcedureCall(p *core.NamedProcedureCall) error {
	return contribute(c, c.procedureCalls, p)
}

// AddResultSetMapping adds a result set mapping.
func (c *Collector) AddResultSetMapping(m *core.ResultSetMapping) error {
	return contribute(c, c.resultSetMappings, m)
}

// AddTypeDefinition adds a custom type definition.
func (c *Collector) AddTypeDefinition(t *core.TypeDefinition) error {
	return contribute(c, c.typeDefinitions, t)
}

// AddFilterDefinition adds a filter definition.
func (c *Collector) AddFilterDefinition(f *core.FilterDefinition) error {
	return contribute(c, c.filterDefinitions, f)
}

// AddFetchProfile adds a fetch profile.
func (c *Collector) AddFetchProfile(p *core.FetchProfile) error {
	return contribute(c, c.fetchProfiles, p)
}

// AddNamedEntityGraph adds a named entity graph.
func (c *Collector) AddNamedEntityGraph(g *core.NamedEntityGraph) error {
	return contribute(c, c.entityGraphs, g)
}

// AddIdentifierGenerator adds an identifier generator definition.
func (c *Collector) AddIdentifierGenerator(g *core.IdentifierGenerator) error {
	return contribute(c, c.identifierGenerators, g)
}

// AddSQLFunction adds a SQL function definition.
func (c *Collector) AddSQLFunction(f *core.SQLFunction) error {
	return contribute(c, c.sqlFunctions, f)
}

// AddImport adds an entity name alias.
func (c *Collector) AddImport(i *core.Import) error {
	return contribute(c, c.imports, i)
}

// Contribute dispatches a record to the Add method for its category.
func (c *Collector) Contribute(record core.Record) error {
	switch r := record.(type) {
	case *core.Table:
		return c.AddTable(r)
	case *core.EntityBinding:
		return c.AddEntityBinding(r)
	case *core.CollectionBinding:
		return c.AddCollectionBinding(r)
	case *core.NamedQuery:
		return c.AddNamedQuery(r)
	case *core.NamedNativeQuery:
		return c.AddNamedNativeQuery(r)
	case *core.NamedProcedureCall:
		return c.AddNamedProcedureCall(r)
	case *core.ResultSetMapping:
		return c.AddResultSetMapping(r)
	case *core.TypeDefinition:
		return c.AddTypeDefinition(r)
	case *core.FilterDefinition:
		return c.AddFilterDefinition(r)
	case *core.FetchProfile:
		return c.AddFetchProfile(r)
	case *core.NamedEntityGraph:
		return c.AddNamedEntityGraph(r)
	case *core.IdentifierGenerator:
		return c.AddIdentifierGenerator(r)
	case *core.SQLFunction:
		return c.AddSQLFunction(r)
	case *core.Import:
		return c.AddImport(r)
	case nil:
		return core.ErrNilRecord
	default:
		return fmt.Errorf("unsupported contribution type %T", record)
	}
}

// Bind resolves every cross-reference and seals the result.
//
// Bind may be called once. It either returns a fully consistent snapshot or a
// *BindingError listing every failure found; no partially bound snapshot is
// ever produced. Later calls fail with *AlreadyBoundError, whatever the
// outcome of the first one.
func (c *Collector) Bind() (*Metadata, error) {
	if c.bound {
		return nil, &AlreadyBoundError{}
	}
	c.bound = true

	c.logger.Info("binding metadata",
		slog.Int("tables", c.database.TableCount()),
		slog.Int("entities", c.entities.Len()),
		slog.Int("collections", c.collections.Len()))

	b := newBinder(c)
	if err := b.bind(); err != nil {
		for _, f := range b.failures {
			c.logger.Debug("binding failure", slog.String("error", f.Error()))
		}
		c.logger.Info("metadata binding failed", slog.Int("failures", len(b.failures)))
		c.seal()
		return nil, err
	}

	md := newMetadata(c, b.imports)
	c.logger.Info("metadata bound", slog.String("uuid", md.UUID().String()))
	return md, nil
}

// seal disables every registry after a failed Bind.
func (c *Collector) seal() {
	c.database.tables.Seal()
	c.entities.Seal()
	c.collections.Seal()
	c.namedQueries.Seal()
	c.nativeQueries.Seal()
	c.procedureCalls.Seal()
	c.resultSetMappings.Seal()
	c.typeDefinitions.Seal()
	c.filterDefinitions.Seal()
	c.fetchProfiles.Seal()
	c.entityGraphs.Seal()
	c.identifierGenerators.Seal()
	c.sqlFunctions.Seal()
	c.imports.Seal()
}
