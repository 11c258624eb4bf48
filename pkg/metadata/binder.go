package metadata

import (
	"log/slog"

	"github.com/leapstack-labs/leapmap/internal/dag"
	"github.com/leapstack-labs/leapmap/pkg/core"
)

// binder resolves the symbolic references held by a Collector.
//
// Resolution is split from linking: every pass only records failures and
// queues link functions. The links are applied after all passes ran and only
// when no failure was recorded, so records are never left half bound.
type binder struct {
	c      *Collector
	logger *slog.Logger

	failures []error
	links    []func()

	// tableOf holds the resolved primary table per entity, including inherited ones.
	tableOf map[string]*core.Table

	// imports maps every alias, explicit or automatic, to an entity name.
	imports map[string]string

	// graph is the inheritance graph built by the entity pass; edges point
	// from superclass to subclass.
	graph *dag.Graph
}

func newBinder(c *Collector) *binder {
	return &binder{
		c:       c,
		logger:  c.logger,
		tableOf: make(map[string]*core.Table),
		imports: make(map[string]string),
		graph:   dag.NewGraph(),
	}
}

func (b *binder) fail(err error) {
	b.failures = append(b.failures, err)
}

func (b *binder) link(fn func()) {
	b.links = append(b.links, fn)
}

func (b *binder) unresolved(rec core.Record, target core.Category, name string) {
	b.fail(&core.UnresolvedReferenceError{
		Category:       rec.RecordCategory(),
		Name:           rec.RecordName(),
		TargetCategory: target,
		Target:         name,
		Origin:         rec.RecordOrigin(),
	})
}

// bind runs every pass in order and applies the queued links on success.
func (b *binder) bind() error {
	passes := []struct {
		name string
		run  func()
	}{
		{"tables", b.bindTables},
		{"entities", b.bindEntities},
		{"collections", b.bindCollections},
		{"result set mappings", b.bindResultSetMappings},
		{"queries", b.bindQueries},
		{"fetch profiles", b.bindFetchProfiles},
		{"entity graphs", b.bindEntityGraphs},
		{"imports", b.bindImports},
	}

	for _, p := range passes {
		before := len(b.failures)
		p.run()
		b.logger.Debug("binding pass finished",
			slog.String("pass", p.name),
			slog.Int("failures", len(b.failures)-before))
	}

	if len(b.failures) > 0 {
		return &core.BindingError{Failures: b.failures}
	}

	for _, fn := range b.links {
		fn()
	}
	return nil
}

// typeDefinition looks up an optional type reference. Names that are not
// contributed type definitions are treated as built-in types.
func (b *binder) typeDefinition(name string) *core.TypeDefinition {
	if name == "" {
		return nil
	}
	def, _ := b.c.typeDefinitions.Get(name)
	return def
}

func (b *binder) bindTables() {
	for t := range b.c.database.Tables() {
		for i := range t.Columns {
			if def := b.typeDefinition(t.Columns[i].TypeName); def != nil {
				col := &t.Columns[i]
				b.link(func() { col.Type = def })
			}
		}
	}
}

// bindFilters resolves filter references; every declared filter must exist.
func (b *binder) bindFilters(rec core.Record, refs []core.FilterRef) {
	for i := range refs {
		def, ok := b.c.filterDefinitions.Get(refs[i].Name)
		if !ok {
			b.unresolved(rec, core.CategoryFilterDefinition, refs[i].Name)
			continue
		}
		ref := &refs[i]
		b.link(func() { ref.Definition = def })
	}
}

func (b *binder) bindEntities() {
	entities := b.c.entities
	graph := b.graph
	// broken entities reference a superclass that was never contributed
	broken := make([]string, 0)

	for e := range entities.All() {
		graph.AddNode(e.EntityName, e)

		if e.SuperclassName != "" && !entities.Has(e.SuperclassName) {
			b.unresolved(e, core.CategoryEntity, e.SuperclassName)
			broken = append(broken, e.EntityName)
		}

		if e.TableName != "" {
			b.resolveEntityTable(e, e.TableName)
		}

		joins := make([]*core.Table, 0, len(e.SecondaryTables))
		for _, name := range e.SecondaryTables {
			t, ok := b.c.database.Table(name)
			if !ok {
				b.unresolved(e, core.CategoryTable, name)
				continue
			}
			joins = append(joins, t)
		}
		if len(joins) > 0 {
			b.link(func() { e.Joins = joins })
		}

		if name := e.Identifier.GeneratorName; name != "" {
			if gen, ok := b.c.identifierGenerators.Get(name); ok {
				b.link(func() { e.Generator = gen })
			} else {
				b.unresolved(e, core.CategoryIdentifierGenerator, name)
			}
		}

		if def := b.typeDefinition(e.Identifier.TypeName); def != nil {
			b.link(func() { e.Identifier.Type = def })
		}
		for i := range e.Properties {
			if def := b.typeDefinition(e.Properties[i].TypeName); def != nil {
				prop := &e.Properties[i]
				b.link(func() { prop.Type = def })
			}
		}

		b.bindFilters(e, e.Filters)
	}

	for e := range entities.All() {
		if e.SuperclassName != "" && entities.Has(e.SuperclassName) {
			// Errors only occur for missing nodes, which Has rules out.
			_ = graph.AddEdge(e.SuperclassName, e.EntityName)
		}
	}
	b.logger.Debug("inheritance graph built",
		slog.Int("entities", graph.NodeCount()),
		slog.Int("links", graph.EdgeCount()))

	// Roots without a declared table map to a table named after the entity.
	// Graph roots also include entities whose superclass is missing.
	for _, name := range graph.GetRoots() {
		node, _ := graph.GetNode(name)
		if e := node.Data.(*core.EntityBinding); e.IsRoot() && e.TableName == "" {
			b.resolveEntityTable(e, e.EntityName)
		}
	}

	var excluded []string
	if cycles := graph.Cycles(); len(cycles) > 0 {
		var members []string
		for _, cycle := range cycles {
			b.fail(&core.CyclicInheritanceError{Members: cycle})
			members = append(members, cycle...)
		}
		excluded = graph.GetDescendants(members)
	}
	// Subclasses of a broken entity cannot inherit a table either.
	excluded = append(excluded, graph.GetDescendants(broken)...)

	ordered, err := graph.Without(excluded).TopologicalSort()
	if err != nil {
		// Unreachable: every cycle member was excluded above.
		b.fail(err)
		return
	}

	for _, node := range ordered {
		e := node.Data.(*core.EntityBinding)
		if e.IsRoot() {
			continue
		}
		super, _ := entities.Get(e.SuperclassName)
		if e.TableName == "" {
			if t, ok := b.tableOf[super.EntityName]; ok {
				b.tableOf[e.EntityName] = t
				b.link(func() { e.Table = t })
			}
		}
		b.link(func() {
			e.Superclass = super
			super.Subclasses = append(super.Subclasses, e)
		})
	}
}

func (b *binder) resolveEntityTable(e *core.EntityBinding, name string) {
	t, ok := b.c.database.Table(name)
	if !ok {
		b.unresolved(e, core.CategoryTable, name)
		return
	}
	b.tableOf[e.EntityName] = t
	b.link(func() { e.Table = t })
}

// ownerName returns the declared owner or, failing that, the role prefix.
func ownerName(cb *core.CollectionBinding) string {
	if cb.OwnerEntityName != "" {
		return cb.OwnerEntityName
	}
	for i := len(cb.Role) - 1; i >= 0; i-- {
		if cb.Role[i] == '.' {
			return cb.Role[:i]
		}
	}
	return ""
}

func (b *binder) bindCollections() {
	for cb := range b.c.collections.All() {
		name := ownerName(cb)
		if owner, ok := b.c.entities.Get(name); ok {
			b.link(func() {
				cb.OwnerEntityName = name
				cb.Owner = owner
			})
		} else {
			b.unresolved(cb, core.CategoryEntity, name)
		}

		if name := cb.ElementEntityName; name != "" {
			if elem, ok := b.c.entities.Get(name); ok {
				b.link(func() { cb.Element = elem })
			} else {
				b.unresolved(cb, core.CategoryEntity, name)
			}
		}

		if def := b.typeDefinition(cb.ElementTypeName); def != nil {
			b.link(func() { cb.ElementType = def })
		}

		if name := cb.CollectionTableName; name != "" {
			if t, ok := b.c.database.Table(name); ok {
				b.link(func() { cb.CollectionTable = t })
			} else {
				b.unresolved(cb, core.CategoryTable, name)
			}
		}

		if cb.Kind == "" {
			b.link(func() { cb.Kind = core.CollectionBag })
		}

		b.bindFilters(cb, cb.Filters)
	}
}

func (b *binder) bindResultSetMappings() {
	for m := range b.c.resultSetMappings.All() {
		for i := range m.EntityReturns {
			ret := &m.EntityReturns[i]
			e, ok := b.c.entities.Get(ret.EntityName)
			if !ok {
				b.unresolved(m, core.CategoryEntity, ret.EntityName)
				continue
			}
			b.link(func() { ret.Entity = e })
		}
		for i := range m.ScalarReturns {
			if def := b.typeDefinition(m.ScalarReturns[i].TypeName); def != nil {
				ret := &m.ScalarReturns[i]
				b.link(func() { ret.Type = def })
			}
		}
	}
}

func (b *binder) bindQueries() {
	for q := range b.c.namedQueries.All() {
		if name := q.ResultSetMappingName; name != "" {
			if m, ok := b.c.resultSetMappings.Get(name); ok {
				b.link(func() { q.ResultSetMapping = m })
			} else {
				b.unresolved(q, core.CategoryResultSetMapping, name)
			}
		}
	}

	for q := range b.c.nativeQueries.All() {
		if name := q.ResultSetMappingName; name != "" {
			if m, ok := b.c.resultSetMappings.Get(name); ok {
				b.link(func() { q.ResultSetMapping = m })
			} else {
				b.unresolved(q, core.CategoryResultSetMapping, name)
			}
		}
		if name := q.ResultEntityName; name != "" {
			if e, ok := b.c.entities.Get(name); ok {
				b.link(func() { q.ResultEntity = e })
			} else {
				b.unresolved(q, core.CategoryEntity, name)
			}
		}
	}

	for p := range b.c.procedureCalls.All() {
		mappings := make([]*core.ResultSetMapping, 0, len(p.ResultSetMappingNames))
		for _, name := range p.ResultSetMappingNames {
			m, ok := b.c.resultSetMappings.Get(name)
			if !ok {
				b.unresolved(p, core.CategoryResultSetMapping, name)
				continue
			}
			mappings = append(mappings, m)
		}
		if len(mappings) > 0 {
			b.link(func() { p.ResultSetMappings = mappings })
		}
	}
}

// hierarchyNames returns an entity name followed by its ancestors, nearest
// first. It stops at missing superclasses and at the first repeated name.
func (b *binder) hierarchyNames(name string) []string {
	if _, ok := b.graph.GetNode(name); !ok {
		return nil
	}
	chain := []string{name}
	seen := map[string]bool{name: true}
	for {
		// An entity has at most one superclass.
		parents := b.graph.GetParents(name)
		if len(parents) == 0 || seen[parents[0]] {
			return chain
		}
		name = parents[0]
		seen[name] = true
		chain = append(chain, name)
	}
}

// hasAttribute reports whether the entity or one of its ancestors declares a
// property (identifier included) with the given name.
func (b *binder) hasAttribute(entityName, attr string) bool {
	if _, ok := b.graph.GetNode(entityName); !ok {
		return false
	}
	for _, name := range append([]string{entityName}, b.graph.GetAncestors(entityName)...) {
		node, _ := b.graph.GetNode(name)
		e := node.Data.(*core.EntityBinding)
		if e.Identifier.Property == attr {
			return true
		}
		for _, p := range e.Properties {
			if p.Name == attr {
				return true
			}
		}
	}
	return false
}

func (b *binder) bindFetchProfiles() {
	for p := range b.c.fetchProfiles.All() {
		before := len(b.failures)
		var pending []func()

		for i := range p.Fetches {
			f := &p.Fetches[i]
			e, ok := b.c.entities.Get(f.EntityName)
			if !ok {
				b.unresolved(p, core.CategoryEntity, f.EntityName)
				continue
			}
			pending = append(pending, func() { f.Entity = e })

			var coll *core.CollectionBinding
			for _, name := range b.hierarchyNames(f.EntityName) {
				if cb, ok := b.c.collections.Get(name + "." + f.Association); ok {
					coll = cb
					break
				}
			}
			switch {
			case coll != nil:
				pending = append(pending, func() { f.Collection = coll })
			case b.hasAttribute(f.EntityName, f.Association):
			default:
				b.unresolved(p, core.CategoryCollection, f.Role())
			}
		}

		if len(b.failures) == before {
			b.links = append(b.links, pending...)
		}
	}
}

// bindAttributes resolves the entities of nested subgraphs.
func (b *binder) bindAttributes(g *core.NamedEntityGraph, nodes []core.AttributeNode, pending *[]func()) {
	for i := range nodes {
		for j := range nodes[i].Subgraphs {
			sub := &nodes[i].Subgraphs[j]
			e, ok := b.c.entities.Get(sub.EntityName)
			if !ok {
				b.unresolved(g, core.CategoryEntity, sub.EntityName)
			} else {
				*pending = append(*pending, func() { sub.Entity = e })
			}
			b.bindAttributes(g, sub.Attributes, pending)
		}
	}
}

func (b *binder) bindEntityGraphs() {
	for g := range b.c.entityGraphs.All() {
		before := len(b.failures)
		var pending []func()

		if e, ok := b.c.entities.Get(g.EntityName); ok {
			pending = append(pending, func() { g.Entity = e })
		} else {
			b.unresolved(g, core.CategoryEntity, g.EntityName)
		}
		b.bindAttributes(g, g.Attributes, &pending)

		if len(b.failures) == before {
			b.links = append(b.links, pending...)
		}
	}
}

func (b *binder) bindImports() {
	for imp := range b.c.imports.All() {
		e, ok := b.c.entities.Get(imp.EntityName)
		if !ok {
			b.unresolved(imp, core.CategoryEntity, imp.EntityName)
			continue
		}
		b.imports[imp.Alias] = imp.EntityName
		b.link(func() { imp.Entity = e })
	}

	for name := range b.c.entities.Entries() {
		if _, claimed := b.imports[name]; !claimed && !b.c.imports.Has(name) {
			b.imports[name] = name
		}
	}
}
