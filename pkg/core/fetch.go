package core

// FetchStyle is how an association is loaded under a fetch profile.
type FetchStyle string

// Fetch styles.
const (
	FetchJoin      FetchStyle = "join"
	FetchSelect    FetchStyle = "select"
	FetchSubselect FetchStyle = "subselect"
)

// FetchProfile groups per-association fetch overrides that can be enabled at runtime.
type FetchProfile struct {
	Name    string
	Fetches []Fetch
	Origin  Origin
}

// Fetch overrides how one association of one entity is loaded.
type Fetch struct {
	EntityName  string
	Association string
	Style       FetchStyle

	Entity     *EntityBinding
	Collection *CollectionBinding
}

// Role is the collection role the fetch targets.
func (f Fetch) Role() string {
	return f.EntityName + "." + f.Association
}

// RecordName implements Record.
func (p *FetchProfile) RecordName() string { return p.Name }

// RecordCategory implements Record.
func (p *FetchProfile) RecordCategory() Category { return CategoryFetchProfile }

// RecordOrigin implements Record.
func (p *FetchProfile) RecordOrigin() Origin { return p.Origin }

// NamedEntityGraph is a named tree of attributes to load together for an entity.
type NamedEntityGraph struct {
	Name       string
	EntityName string
	Attributes []AttributeNode
	Origin     Origin

	Entity *EntityBinding
}

// AttributeNode is one attribute of an entity graph, optionally with nested subgraphs.
type AttributeNode struct {
	Name      string
	Subgraphs []Subgraph
}

// Subgraph expands an association attribute. EntityName optionally narrows it to a subclass.
type Subgraph struct {
	EntityName string
	Attributes []AttributeNode

	Entity *EntityBinding
}

// RecordName implements Record.
func (g *NamedEntityGraph) RecordName() string { return g.Name }

// RecordCategory implements Record.
func (g *NamedEntityGraph) RecordCategory() Category { return CategoryNamedEntityGraph }

// RecordOrigin implements Record.
func (g *NamedEntityGraph) RecordOrigin() Origin { return g.Origin }
