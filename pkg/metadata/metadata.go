package metadata

import (
	"context"
	"iter"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapmap/internal/registry"
	"github.com/leapstack-labs/leapmap/pkg/core"
	"github.com/leapstack-labs/leapmap/pkg/session"
)

// Metadata is the sealed result of a successful Bind.
//
// Nothing inside a Metadata changes after construction, so it may be shared
// by any number of goroutines without synchronization. Lookups report a
// missing name through their bool result; binding errors can never surface
// here because an inconsistent snapshot is never built.
type Metadata struct {
	id     uuid.UUID
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

	// aliases maps explicit and automatic import names to entity names.
	aliases map[string]string

	sessionOptions []session.Option
}

// Metadata satisfies the read contract of the session factory bridge.
var _ session.Metadata = (*Metadata)(nil)

// newMetadata moves the collector's registries into a new snapshot.
func newMetadata(c *Collector, aliases map[string]string) *Metadata {
	return &Metadata{
		id:                   uuid.New(),
		logger:               c.logger,
		database:             c.database.move(),
		entities:             c.entities.Move(),
		collections:          c.collections.Move(),
		namedQueries:         c.namedQueries.Move(),
		nativeQueries:        c.nativeQueries.Move(),
		procedureCalls:       c.procedureCalls.Move(),
		resultSetMappings:    c.resultSetMappings.Move(),
		typeDefinitions:      c.typeDefinitions.Move(),
		filterDefinitions:    c.filterDefinitions.Move(),
		fetchProfiles:        c.fetchProfiles.Move(),
		entityGraphs:         c.entityGraphs.Move(),
		identifierGenerators: c.identifierGenerators.Move(),
		sqlFunctions:         c.sqlFunctions.Move(),
		imports:              c.imports.Move(),
		aliases:              aliases,
		sessionOptions:       c.opts.sessionOptions,
	}
}

// UUID returns the identity assigned when the snapshot was built.
func (m *Metadata) UUID() uuid.UUID {
	return m.id
}

// Database returns the sealed schema model.
func (m *Metadata) Database() *Database {
	return m.database
}

// Table resolves a possibly qualified table reference.
func (m *Metadata) Table(ref string) (*core.Table, bool) {
	return m.database.Table(ref)
}

// Tables yields every table.
func (m *Metadata) Tables() iter.Seq[*core.Table] {
	return m.database.Tables()
}

// EntityBinding returns the entity registered under name.
func (m *Metadata) EntityBinding(name string) (*core.EntityBinding, bool) {
	return m.entities.Get(name)
}

// EntityBindings yields every entity.
func (m *Metadata) EntityBindings() iter.Seq[*core.EntityBinding] {
	return m.entities.All()
}

// CollectionBinding returns the collection registered under role.
func (m *Metadata) CollectionBinding(role string) (*core.CollectionBinding, bool) {
	return m.collections.Get(role)
}

// CollectionBindings yields every collection.
func (m *Metadata) CollectionBindings() iter.Seq[*core.CollectionBinding] {
	return m.collections.All()
}

// NamedQuery returns the named query registered under name.
func (m *Metadata) NamedQuery(name string) (*core.NamedQuery, bool) {
	return m.namedQueries.Get(name)
}

// NamedQueries yields every named query.
func (m *Metadata) NamedQueries() iter.Seq[*core.NamedQuery] {
	return m.namedQueries.All()
}

// NamedNativeQuery returns the native SQL query registered under name.
func (m *Metadata) NamedNativeQuery(name string) (*core.NamedNativeQuery, bool) {
	return m.nativeQueries.Get(name)
}

// NamedNativeQueries yields every native SQL query.
func (m *Metadata) NamedNativeQueries() iter.Seq[*core.NamedNativeQuery] {
	return m.nativeQueries.All()
}

// NamedProcedureCall returns the stored procedure call registered under name.
func (m *Metadata) NamedProcedureCall(name string) (*core.NamedProcedureCall, bool) {
	return m.procedureCalls.Get(name)
}

// NamedProcedureCalls yields every stored procedure call.
func (m *Metadata) NamedProcedureCalls() iter.Seq[*core.NamedProcedureCall] {
	return m.procedureCalls.All()
}

// ResultSetMapping returns the result-set mapping registered under name.
func (m *Metadata) ResultSetMapping(name string) (*core.ResultSetMapping, bool) {
	return m.resultSetMappings.Get(name)
}

// ResultSetMappings yields every result-set mapping.
func (m *Metadata) ResultSetMappings() iter.Seq[*core.ResultSetMapping] {
	return m.resultSetMappings.All()
}

// TypeDefinition returns the type definition registered under name.
func (m *Metadata) TypeDefinition(name string) (*core.TypeDefinition, bool) {
	return m.typeDefinitions.Get(name)
}

// TypeDefinitions yields every type definition.
func (m *Metadata) TypeDefinitions() iter.Seq[*core.TypeDefinition] {
	return m.typeDefinitions.All()
}

// FilterDefinition returns the filter definition registered under name.
func (m *Metadata) FilterDefinition(name string) (*core.FilterDefinition, bool) {
	return m.filterDefinitions.Get(name)
}

// FilterDefinitions yields every filter definition.
func (m *Metadata) FilterDefinitions() iter.Seq[*core.FilterDefinition] {
	return m.filterDefinitions.All()
}

// FetchProfile returns the fetch profile registered under name.
func (m *Metadata) FetchProfile(name string) (*core.FetchProfile, bool) {
	return m.fetchProfiles.Get(name)
}

// FetchProfiles yields every fetch profile.
func (m *Metadata) FetchProfiles() iter.Seq[*core.FetchProfile] {
	return m.fetchProfiles.All()
}

// NamedEntityGraph returns the entity graph registered under name.
func (m *Metadata) NamedEntityGraph(name string) (*core.NamedEntityGraph, bool) {
	return m.entityGraphs.Get(name)
}

// NamedEntityGraphs yields every entity graph.
func (m *Metadata) NamedEntityGraphs() iter.Seq[*core.NamedEntityGraph] {
	return m.entityGraphs.All()
}

// IdentifierGenerator returns the identifier generator registered under name.
func (m *Metadata) IdentifierGenerator(name string) (*core.IdentifierGenerator, bool) {
	return m.identifierGenerators.Get(name)
}

// IdentifierGenerators yields every identifier generator.
func (m *Metadata) IdentifierGenerators() iter.Seq[*core.IdentifierGenerator] {
	return m.identifierGenerators.All()
}

// SQLFunction returns the SQL function registered under name.
func (m *Metadata) SQLFunction(name string) (*core.SQLFunction, bool) {
	return m.sqlFunctions.Get(name)
}

// SQLFunctions yields every SQL function.
func (m *Metadata) SQLFunctions() iter.Seq[*core.SQLFunction] {
	return m.sqlFunctions.All()
}

// Import returns the explicit import registered under alias.
// Automatic imports are only visible through Imports and ResolveEntityName.
func (m *Metadata) Import(alias string) (*core.Import, bool) {
	return m.imports.Get(alias)
}

// ExplicitImports yields the contributed import records.
func (m *Metadata) ExplicitImports() iter.Seq[*core.Import] {
	return m.imports.All()
}

// Imports returns a copy of the alias to entity name table, including the
// automatic import of every entity under its own name.
func (m *Metadata) Imports() map[string]string {
	return maps.Clone(m.aliases)
}

// ResolveEntityName maps an entity name or import alias to an entity name.
func (m *Metadata) ResolveEntityName(nameOrAlias string) (string, bool) {
	name, ok := m.aliases[nameOrAlias]
	return name, ok
}

// Counts returns the number of records per category.
func (m *Metadata) Counts() map[core.Category]int {
	return map[core.Category]int{
		core.CategoryTable:               m.database.TableCount(),
		core.CategoryEntity:              m.entities.Len(),
		core.CategoryCollection:          m.collections.Len(),
		core.CategoryNamedQuery:          m.namedQueries.Len(),
		core.CategoryNamedNativeQuery:    m.nativeQueries.Len(),
		core.CategoryNamedProcedureCall:  m.procedureCalls.Len(),
		core.CategoryResultSetMapping:    m.resultSetMappings.Len(),
		core.CategoryTypeDefinition:      m.typeDefinitions.Len(),
		core.CategoryFilterDefinition:    m.filterDefinitions.Len(),
		core.CategoryFetchProfile:        m.fetchProfiles.Len(),
		core.CategoryNamedEntityGraph:    m.entityGraphs.Len(),
		core.CategoryIdentifierGenerator: m.identifierGenerators.Len(),
		core.CategorySQLFunction:         m.sqlFunctions.Len(),
		core.CategoryImport:              m.imports.Len(),
	}
}

// IdentifierPropertyName returns the identifier property of an entity,
// inherited from the hierarchy root when the entity does not declare one.
func (m *Metadata) IdentifierPropertyName(entityName string) (string, bool) {
	id, ok := m.identifier(entityName)
	if !ok {
		return "", false
	}
	return id.Property, true
}

// IdentifierTypeName returns the type name of an entity's identifier.
func (m *Metadata) IdentifierTypeName(entityName string) (string, bool) {
	id, ok := m.identifier(entityName)
	if !ok {
		return "", false
	}
	return id.TypeName, true
}

func (m *Metadata) identifier(entityName string) (core.Identifier, bool) {
	e, ok := m.entities.Get(entityName)
	if !ok {
		return core.Identifier{}, false
	}
	for _, cur := range e.Hierarchy() {
		if cur.Identifier.Property != "" {
			return cur.Identifier, true
		}
	}
	return e.RootEntity().Identifier, true
}

// SessionFactoryBuilder returns a factory builder seeded with the session
// options given to the collector; opts are applied on top of them.
func (m *Metadata) SessionFactoryBuilder(opts ...session.Option) *session.FactoryBuilder {
	base := make([]session.Option, 0, len(m.sessionOptions)+len(opts)+1)
	base = append(base, session.WithLogger(m.logger))
	base = append(base, m.sessionOptions...)
	base = append(base, opts...)
	return session.NewFactoryBuilder(m, base...)
}

// BuildSessionFactory builds a session factory with the collector's session options.
func (m *Metadata) BuildSessionFactory(ctx context.Context) (*session.Factory, error) {
	return m.SessionFactoryBuilder().Build(ctx)
}
