package core

// NamedQuery is an object-query-language query registered under a name.
type NamedQuery struct {
	Name  string
	Query string
	// ResultSetMappingName optionally references a ResultSetMapping.
	ResultSetMappingName string
	Cacheable            bool
	CacheRegion          string
	ReadOnly             bool
	FetchSize            int
	// TimeoutSeconds of zero means no timeout.
	TimeoutSeconds int
	FlushMode      string
	LockMode       string
	Comment        string
	Hints          map[string]string
	Origin         Origin

	ResultSetMapping *ResultSetMapping
}

// RecordName implements Record.
func (q *NamedQuery) RecordName() string { return q.Name }

// RecordCategory implements Record.
func (q *NamedQuery) RecordCategory() Category { return CategoryNamedQuery }

// RecordOrigin implements Record.
func (q *NamedQuery) RecordOrigin() Origin { return q.Origin }

// NamedNativeQuery is a SQL query registered under a name.
type NamedNativeQuery struct {
	Name string
	SQL  string
	// ResultSetMappingName optionally references a ResultSetMapping.
	ResultSetMappingName string
	// ResultEntityName optionally maps each row onto an entity.
	ResultEntityName string
	// QuerySpaces are the tables the query touches, used for cache invalidation.
	QuerySpaces    []string
	Callable       bool
	Cacheable      bool
	CacheRegion    string
	ReadOnly       bool
	FetchSize      int
	TimeoutSeconds int
	Comment        string
	Hints          map[string]string
	Origin         Origin

	ResultSetMapping *ResultSetMapping
	ResultEntity     *EntityBinding
}

// RecordName implements Record.
func (q *NamedNativeQuery) RecordName() string { return q.Name }

// RecordCategory implements Record.
func (q *NamedNativeQuery) RecordCategory() Category { return CategoryNamedNativeQuery }

// RecordOrigin implements Record.
func (q *NamedNativeQuery) RecordOrigin() Origin { return q.Origin }

// ParameterMode is the direction of a stored procedure parameter.
type ParameterMode string

// Parameter modes.
const (
	ParameterIn    ParameterMode = "in"
	ParameterOut   ParameterMode = "out"
	ParameterInOut ParameterMode = "inout"
	ParameterRef   ParameterMode = "ref_cursor"
)

// ProcedureParameter is one declared stored procedure parameter.
// Parameters are bound either by Name or by Position (1-based).
type ProcedureParameter struct {
	Name     string
	Position int
	Mode     ParameterMode
	TypeName string
}

// NamedProcedureCall is a stored procedure invocation registered under a name.
type NamedProcedureCall struct {
	Name          string
	ProcedureName string
	Parameters    []ProcedureParameter
	// ResultSetMappingNames reference the mappings for each returned result set.
	ResultSetMappingNames []string
	Hints                 map[string]string
	Origin                Origin

	ResultSetMappings []*ResultSetMapping
}

// RecordName implements Record.
func (p *NamedProcedureCall) RecordName() string { return p.Name }

// RecordCategory implements Record.
func (p *NamedProcedureCall) RecordCategory() Category { return CategoryNamedProcedureCall }

// RecordOrigin implements Record.
func (p *NamedProcedureCall) RecordOrigin() Origin { return p.Origin }

// ResultSetMapping describes how native result columns map to entities and scalars.
type ResultSetMapping struct {
	Name          string
	EntityReturns []EntityReturn
	ScalarReturns []ScalarReturn
	Origin        Origin
}

// EntityReturn maps a group of result columns onto an entity.
type EntityReturn struct {
	Alias      string
	EntityName string
	// FieldColumns maps property names to result column aliases.
	FieldColumns map[string]string

	Entity *EntityBinding
}

// ScalarReturn maps one result column onto a scalar value.
type ScalarReturn struct {
	Column   string
	TypeName string

	Type *TypeDefinition
}

// RecordName implements Record.
func (m *ResultSetMapping) RecordName() string { return m.Name }

// RecordCategory implements Record.
func (m *ResultSetMapping) RecordCategory() Category { return CategoryResultSetMapping }

// RecordOrigin implements Record.
func (m *ResultSetMapping) RecordOrigin() Origin { return m.Origin }
