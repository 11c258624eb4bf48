package loader

// Mapping documents are plain YAML. Every top-level key is a list of one
// record category; all keys are optional and a file may hold several
// documents separated by "---".
//
//	tables:
//	  - name: orders
//	    columns:
//	      - {name: id, sql_type: bigint}
//	entities:
//	  - name: Order
//	    table: orders
//	    id: {property: id, columns: [id], strategy: identity}
//	    collections:
//	      - {name: items, element: LineItem, key_columns: [order_id]}
type documentYAML struct {
	Tables         []tableYAML         `yaml:"tables"`
	Entities       []entityYAML        `yaml:"entities"`
	Collections    []collectionYAML    `yaml:"collections"`
	Queries        []queryYAML         `yaml:"queries"`
	NativeQueries  []nativeQueryYAML   `yaml:"native_queries"`
	Procedures     []procedureYAML     `yaml:"procedures"`
	ResultMappings []resultMappingYAML `yaml:"result_mappings"`
	Types          []typeYAML          `yaml:"types"`
	Filters        []filterYAML        `yaml:"filters"`
	FetchProfiles  []fetchProfileYAML  `yaml:"fetch_profiles"`
	EntityGraphs   []entityGraphYAML   `yaml:"entity_graphs"`
	Generators     []generatorYAML     `yaml:"generators"`
	SQLFunctions   []sqlFunctionYAML   `yaml:"sql_functions"`
	Imports        []importYAML        `yaml:"imports"`
}

type tableYAML struct {
	Catalog    string            `yaml:"catalog"`
	Schema     string            `yaml:"schema"`
	Name       string            `yaml:"name"`
	Comment    string            `yaml:"comment"`
	Columns    []columnYAML      `yaml:"columns"`
	PrimaryKey *primaryKeyYAML   `yaml:"primary_key"`
}

type columnYAML struct {
	Name     string `yaml:"name"`
	SQLType  string `yaml:"sql_type"`
	Nullable bool   `yaml:"nullable"`
	Unique   bool   `yaml:"unique"`
	Length   int    `yaml:"length"`
	Type     string `yaml:"type"`
}

type primaryKeyYAML struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
}

type entityYAML struct {
	Name            string           `yaml:"name"`
	Class           string           `yaml:"class"`
	Table           string           `yaml:"table"`
	SecondaryTables []string         `yaml:"secondary_tables"`
	Extends         string           `yaml:"extends"`
	Discriminator   string           `yaml:"discriminator"`
	Abstract        bool             `yaml:"abstract"`
	ID              identifierYAML   `yaml:"id"`
	Properties      []propertyYAML   `yaml:"properties"`
	Filters         []filterRefYAML  `yaml:"filters"`
	Collections     []collectionYAML `yaml:"collections"`
}

type identifierYAML struct {
	Property  string   `yaml:"property"`
	Columns   []string `yaml:"columns"`
	Type      string   `yaml:"type"`
	Strategy  string   `yaml:"strategy"`
	Generator string   `yaml:"generator"`
}

type propertyYAML struct {
	Name     string   `yaml:"name"`
	Columns  []string `yaml:"columns"`
	Type     string   `yaml:"type"`
	Nullable bool     `yaml:"nullable"`
	Lazy     bool     `yaml:"lazy"`
}

type filterRefYAML struct {
	Name      string `yaml:"name"`
	Condition string `yaml:"condition"`
}

// collectionYAML is used both at top level (with role) and nested under an
// entity (with name, the role being derived from the entity).
type collectionYAML struct {
	Role        string          `yaml:"role"`
	Name        string          `yaml:"name"`
	Owner       string          `yaml:"owner"`
	Kind        string          `yaml:"kind"`
	Element     string          `yaml:"element"`
	ElementType string          `yaml:"element_type"`
	Table       string          `yaml:"table"`
	KeyColumns  []string        `yaml:"key_columns"`
	Inverse     bool            `yaml:"inverse"`
	Lazy        *bool           `yaml:"lazy"`
	OrderBy     string          `yaml:"order_by"`
	Filters     []filterRefYAML `yaml:"filters"`
}

type queryYAML struct {
	Name          string            `yaml:"name"`
	Query         string            `yaml:"query"`
	ResultMapping string            `yaml:"result_mapping"`
	Cacheable     bool              `yaml:"cacheable"`
	CacheRegion   string            `yaml:"cache_region"`
	ReadOnly      bool              `yaml:"read_only"`
	FetchSize     int               `yaml:"fetch_size"`
	Timeout       int               `yaml:"timeout"`
	FlushMode     string            `yaml:"flush_mode"`
	LockMode      string            `yaml:"lock_mode"`
	Comment       string            `yaml:"comment"`
	Hints         map[string]string `yaml:"hints"`
}

type nativeQueryYAML struct {
	Name          string            `yaml:"name"`
	SQL           string            `yaml:"sql"`
	ResultMapping string            `yaml:"result_mapping"`
	ResultEntity  string            `yaml:"result_entity"`
	QuerySpaces   []string          `yaml:"query_spaces"`
	Callable      bool              `yaml:"callable"`
	Cacheable     bool              `yaml:"cacheable"`
	CacheRegion   string            `yaml:"cache_region"`
	ReadOnly      bool              `yaml:"read_only"`
	FetchSize     int               `yaml:"fetch_size"`
	Timeout       int               `yaml:"timeout"`
	Comment       string            `yaml:"comment"`
	Hints         map[string]string `yaml:"hints"`
}

type procedureYAML struct {
	Name           string            `yaml:"name"`
	Procedure      string            `yaml:"procedure"`
	Parameters     []parameterYAML   `yaml:"parameters"`
	ResultMappings []string          `yaml:"result_mappings"`
	Hints          map[string]string `yaml:"hints"`
}

type parameterYAML struct {
	Name     string `yaml:"name"`
	Position int    `yaml:"position"`
	Mode     string `yaml:"mode"`
	Type     string `yaml:"type"`
}

type resultMappingYAML struct {
	Name     string             `yaml:"name"`
	Entities []entityReturnYAML `yaml:"entities"`
	Scalars  []scalarReturnYAML `yaml:"scalars"`
}

type entityReturnYAML struct {
	Alias  string            `yaml:"alias"`
	Entity string            `yaml:"entity"`
	Fields map[string]string `yaml:"fields"`
}

type scalarReturnYAML struct {
	Column string `yaml:"column"`
	Type   string `yaml:"type"`
}

type typeYAML struct {
	Name       string            `yaml:"name"`
	Class      string            `yaml:"class"`
	Parameters map[string]string `yaml:"parameters"`
}

type filterYAML struct {
	Name       string            `yaml:"name"`
	Condition  string            `yaml:"condition"`
	Parameters map[string]string `yaml:"parameters"`
}

type fetchProfileYAML struct {
	Name    string      `yaml:"name"`
	Fetches []fetchYAML `yaml:"fetches"`
}

type fetchYAML struct {
	Entity      string `yaml:"entity"`
	Association string `yaml:"association"`
	Style       string `yaml:"style"`
}

type entityGraphYAML struct {
	Name       string          `yaml:"name"`
	Entity     string          `yaml:"entity"`
	Attributes []attributeYAML `yaml:"attributes"`
}

type attributeYAML struct {
	Name      string         `yaml:"name"`
	Subgraphs []subgraphYAML `yaml:"subgraphs"`
}

type subgraphYAML struct {
	Entity     string          `yaml:"entity"`
	Attributes []attributeYAML `yaml:"attributes"`
}

type generatorYAML struct {
	Name       string            `yaml:"name"`
	Strategy   string            `yaml:"strategy"`
	Parameters map[string]string `yaml:"parameters"`
}

type sqlFunctionYAML struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Returns  string `yaml:"returns"`
	NoParens bool   `yaml:"no_parens"`
}

type importYAML struct {
	Alias  string `yaml:"alias"`
	Entity string `yaml:"entity"`
}
