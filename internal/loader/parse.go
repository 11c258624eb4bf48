package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapmap/pkg/core"
	"gopkg.in/yaml.v3"
)

// Document is the set of records read from one mapping file.
type Document struct {
	File    string
	Records []core.Record
}

// ParseFile reads and parses one mapping file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes mapping YAML. Unknown keys are rejected. Every record gets
// an Origin pointing at file and the line where its list item starts.
func Parse(file string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	nodes := yaml.NewDecoder(bytes.NewReader(data))

	doc := &Document{File: file}
	for {
		var raw documentYAML
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{File: file, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		}

		var root yaml.Node
		if err := nodes.Decode(&root); err != nil {
			return nil, &ParseError{File: file, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		}
		var body *yaml.Node
		if len(root.Content) > 0 {
			body = root.Content[0]
		}

		c := &converter{file: file, root: body}
		if err := c.convert(&raw); err != nil {
			return nil, err
		}
		doc.Records = append(doc.Records, c.records...)
	}
	return doc, nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// items returns the elements of a sequence node.
func items(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	return n.Content
}

func lineOf(nodes []*yaml.Node, i int) int {
	if i < len(nodes) {
		return nodes[i].Line
	}
	return 0
}

type converter struct {
	file    string
	root    *yaml.Node
	records []core.Record
}

func (c *converter) origin(line int) core.Origin {
	return core.Origin{File: c.file, Line: line}
}

func (c *converter) errorf(line int, format string, args ...any) error {
	return &ParseError{File: c.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (c *converter) add(r core.Record) {
	c.records = append(c.records, r)
}

func (c *converter) section(key string) []*yaml.Node {
	return items(mappingValue(c.root, key))
}

func (c *converter) convert(raw *documentYAML) error {
	lines := c.section("tables")
	for i, t := range raw.Tables {
		c.add(c.table(t, lineOf(lines, i)))
	}

	lines = c.section("entities")
	for i, e := range raw.Entities {
		if err := c.entity(e, lines, i); err != nil {
			return err
		}
	}

	lines = c.section("collections")
	for i, cy := range raw.Collections {
		cb, err := c.collection(cy, "", lineOf(lines, i))
		if err != nil {
			return err
		}
		c.add(cb)
	}

	lines = c.section("queries")
	for i, q := range raw.Queries {
		c.add(&core.NamedQuery{
			Name:                 q.Name,
			Query:                q.Query,
			ResultSetMappingName: q.ResultMapping,
			Cacheable:            q.Cacheable,
			CacheRegion:          q.CacheRegion,
			ReadOnly:             q.ReadOnly,
			FetchSize:            q.FetchSize,
			TimeoutSeconds:       q.Timeout,
			FlushMode:            q.FlushMode,
			LockMode:             q.LockMode,
			Comment:              q.Comment,
			Hints:                q.Hints,
			Origin:               c.origin(lineOf(lines, i)),
		})
	}

	lines = c.section("native_queries")
	for i, q := range raw.NativeQueries {
		c.add(&core.NamedNativeQuery{
			Name:                 q.Name,
			SQL:                  q.SQL,
			ResultSetMappingName: q.ResultMapping,
			ResultEntityName:     q.ResultEntity,
			QuerySpaces:          q.QuerySpaces,
			Callable:             q.Callable,
			Cacheable:            q.Cacheable,
			CacheRegion:          q.CacheRegion,
			ReadOnly:             q.ReadOnly,
			FetchSize:            q.FetchSize,
			TimeoutSeconds:       q.Timeout,
			Comment:              q.Comment,
			Hints:                q.Hints,
			Origin:               c.origin(lineOf(lines, i)),
		})
	}

	lines = c.section("procedures")
	for i, p := range raw.Procedures {
		line := lineOf(lines, i)
		call := &core.NamedProcedureCall{
			Name:                  p.Name,
			ProcedureName:         p.Procedure,
			ResultSetMappingNames: p.ResultMappings,
			Hints:                 p.Hints,
			Origin:                c.origin(line),
		}
		if call.ProcedureName == "" {
			call.ProcedureName = p.Name
		}
		for pos, param := range p.Parameters {
			mode, err := parameterMode(param.Mode)
			if err != nil {
				return c.errorf(line, "procedure %q: %v", p.Name, err)
			}
			position := param.Position
			if position == 0 {
				position = pos + 1
			}
			call.Parameters = append(call.Parameters, core.ProcedureParameter{
				Name:     param.Name,
				Position: position,
				Mode:     mode,
				TypeName: param.Type,
			})
		}
		c.add(call)
	}

	lines = c.section("result_mappings")
	for i, m := range raw.ResultMappings {
		rsm := &core.ResultSetMapping{Name: m.Name, Origin: c.origin(lineOf(lines, i))}
		for _, e := range m.Entities {
			rsm.EntityReturns = append(rsm.EntityReturns, core.EntityReturn{Alias: e.Alias, EntityName: e.Entity, FieldColumns: e.Fields})
		}
		for _, s := range m.Scalars {
			rsm.ScalarReturns = append(rsm.ScalarReturns, core.ScalarReturn{Column: s.Column, TypeName: s.Type})
		}
		c.add(rsm)
	}

	lines = c.section("types")
	for i, t := range raw.Types {
		c.add(&core.TypeDefinition{Name: t.Name, Implementation: t.Class, Parameters: t.Parameters, Origin: c.origin(lineOf(lines, i))})
	}

	lines = c.section("filters")
	for i, f := range raw.Filters {
		c.add(&core.FilterDefinition{Name: f.Name, DefaultCondition: f.Condition, ParameterTypes: f.Parameters, Origin: c.origin(lineOf(lines, i))})
	}

	lines = c.section("fetch_profiles")
	for i, p := range raw.FetchProfiles {
		line := lineOf(lines, i)
		profile := &core.FetchProfile{Name: p.Name, Origin: c.origin(line)}
		for _, f := range p.Fetches {
			style, err := fetchStyle(f.Style)
			if err != nil {
				return c.errorf(line, "fetch profile %q: %v", p.Name, err)
			}
			profile.Fetches = append(profile.Fetches, core.Fetch{EntityName: f.Entity, Association: f.Association, Style: style})
		}
		c.add(profile)
	}

	lines = c.section("entity_graphs")
	for i, g := range raw.EntityGraphs {
		c.add(&core.NamedEntityGraph{
			Name:       g.Name,
			EntityName: g.Entity,
			Attributes: attributes(g.Attributes),
			Origin:     c.origin(lineOf(lines, i)),
		})
	}

	lines = c.section("generators")
	for i, g := range raw.Generators {
		c.add(&core.IdentifierGenerator{Name: g.Name, Strategy: g.Strategy, Parameters: g.Parameters, Origin: c.origin(lineOf(lines, i))})
	}

	lines = c.section("sql_functions")
	for i, f := range raw.SQLFunctions {
		c.add(&core.SQLFunction{Name: f.Name, Pattern: f.Pattern, ReturnTypeName: f.Returns, NoParens: f.NoParens, Origin: c.origin(lineOf(lines, i))})
	}

	lines = c.section("imports")
	for i, imp := range raw.Imports {
		c.add(&core.Import{Alias: imp.Alias, EntityName: imp.Entity, Origin: c.origin(lineOf(lines, i))})
	}
	return nil
}

func (c *converter) table(t tableYAML, line int) *core.Table {
	table := &core.Table{
		Catalog: t.Catalog,
		Schema:  t.Schema,
		Name:    t.Name,
		Comment: t.Comment,
		Origin:  c.origin(line),
	}
	for _, col := range t.Columns {
		table.Columns = append(table.Columns, core.Column{
			Name:     col.Name,
			SQLType:  col.SQLType,
			Nullable: col.Nullable,
			Unique:   col.Unique,
			Length:   col.Length,
			TypeName: col.Type,
		})
	}
	if t.PrimaryKey != nil {
		table.PrimaryKey = &core.PrimaryKey{Name: t.PrimaryKey.Name, Columns: t.PrimaryKey.Columns}
	}
	return table
}

func (c *converter) entity(e entityYAML, lines []*yaml.Node, i int) error {
	line := lineOf(lines, i)
	binding := &core.EntityBinding{
		EntityName:         e.Name,
		ClassName:          e.Class,
		TableName:          e.Table,
		SecondaryTables:    e.SecondaryTables,
		SuperclassName:     e.Extends,
		DiscriminatorValue: e.Discriminator,
		Abstract:           e.Abstract,
		Identifier: core.Identifier{
			Property:      e.ID.Property,
			Columns:       e.ID.Columns,
			TypeName:      e.ID.Type,
			Strategy:      e.ID.Strategy,
			GeneratorName: e.ID.Generator,
		},
		Filters: filterRefs(e.Filters),
		Origin:  c.origin(line),
	}
	for _, p := range e.Properties {
		binding.Properties = append(binding.Properties, core.Property{
			Name:     p.Name,
			Columns:  p.Columns,
			TypeName: p.Type,
			Nullable: p.Nullable,
			Lazy:     p.Lazy,
		})
	}
	c.add(binding)

	var item *yaml.Node
	if i < len(lines) {
		item = lines[i]
	}
	nested := items(mappingValue(item, "collections"))
	for j, cy := range e.Collections {
		cb, err := c.collection(cy, e.Name, lineOf(nested, j))
		if err != nil {
			return err
		}
		c.add(cb)
	}
	return nil
}

// collection converts a collection; owner is set for collections nested
// under an entity.
func (c *converter) collection(cy collectionYAML, owner string, line int) (*core.CollectionBinding, error) {
	kind, err := collectionKind(cy.Kind)
	if err != nil {
		return nil, c.errorf(line, "collection %q: %v", cy.Role+cy.Name, err)
	}

	role, ownerName := cy.Role, cy.Owner
	if owner != "" {
		if cy.Name == "" && role == "" {
			return nil, c.errorf(line, "collection of entity %q needs a name", owner)
		}
		if role == "" {
			role = owner + "." + cy.Name
		}
		if ownerName == "" {
			ownerName = owner
		}
	}

	lazy := true
	if cy.Lazy != nil {
		lazy = *cy.Lazy
	}
	return &core.CollectionBinding{
		Role:                role,
		OwnerEntityName:     ownerName,
		Kind:                kind,
		ElementEntityName:   cy.Element,
		ElementTypeName:     cy.ElementType,
		CollectionTableName: cy.Table,
		KeyColumns:          cy.KeyColumns,
		Inverse:             cy.Inverse,
		Lazy:                lazy,
		OrderBy:             cy.OrderBy,
		Filters:             filterRefs(cy.Filters),
		Origin:              c.origin(line),
	}, nil
}

func filterRefs(in []filterRefYAML) []core.FilterRef {
	var out []core.FilterRef
	for _, f := range in {
		out = append(out, core.FilterRef{Name: f.Name, Condition: f.Condition})
	}
	return out
}

func attributes(in []attributeYAML) []core.AttributeNode {
	var out []core.AttributeNode
	for _, a := range in {
		node := core.AttributeNode{Name: a.Name}
		for _, s := range a.Subgraphs {
			node.Subgraphs = append(node.Subgraphs, core.Subgraph{EntityName: s.Entity, Attributes: attributes(s.Attributes)})
		}
		out = append(out, node)
	}
	return out
}

func collectionKind(s string) (core.CollectionKind, error) {
	switch k := core.CollectionKind(strings.ToLower(s)); k {
	case "":
		return "", nil
	case core.CollectionBag, core.CollectionSet, core.CollectionList, core.CollectionMap, core.CollectionArray:
		return k, nil
	default:
		return "", fmt.Errorf("invalid kind %q, must be one of: bag, set, list, map, array", s)
	}
}

func fetchStyle(s string) (core.FetchStyle, error) {
	switch st := core.FetchStyle(strings.ToLower(s)); st {
	case "":
		return core.FetchJoin, nil
	case core.FetchJoin, core.FetchSelect, core.FetchSubselect:
		return st, nil
	default:
		return "", fmt.Errorf("invalid fetch style %q, must be one of: join, select, subselect", s)
	}
}

func parameterMode(s string) (core.ParameterMode, error) {
	switch m := core.ParameterMode(strings.ToLower(s)); m {
	case "":
		return core.ParameterIn, nil
	case core.ParameterIn, core.ParameterOut, core.ParameterInOut, core.ParameterRef:
		return m, nil
	default:
		return "", fmt.Errorf("invalid parameter mode %q, must be one of: in, out, inout, ref_cursor", s)
	}
}
