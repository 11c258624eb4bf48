package commands

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapmap/internal/cli/output"
	"github.com/leapstack-labs/leapmap/pkg/core"
	"github.com/leapstack-labs/leapmap/pkg/metadata"
	"github.com/spf13/cobra"
)

// InspectRecord is one row of the inspect command output.
type InspectRecord struct {
	Name   string `json:"name"`
	Origin string `json:"origin"`
	Detail string `json:"detail,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the bound mappings",
		Long: `Bind the mappings directory and list its contents grouped by category.

Use --category to restrict the listing to one category, for example
entity, collection, named_query or fetch_profile.`,
		Example: `  leapmap inspect
  leapmap inspect --category entity
  leapmap inspect -c named_native_query -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats := core.Categories()
			if category != "" {
				cat, ok := core.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q\nAvailable categories: %s", category, strings.Join(categoryNames(), ", "))
				}
				cats = []core.Category{cat}
			}

			cc := NewCommandContext(cmd)
			res, err := cc.bindMappings(cmd.Context())
			if err != nil {
				return err
			}
			return renderInspect(cc.Renderer, res.Metadata, cats, category != "")
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list records of this category")
	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return categoryNames(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// categoryNames returns the snake_case category names accepted by --category.
func categoryNames() []string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = strings.ReplaceAll(cat.String(), " ", "_")
	}
	return names
}

func renderInspect(r *output.Renderer, md *metadata.Metadata, cats []core.Category, explicit bool) error {
	listing := make(map[string][]InspectRecord, len(cats))
	for _, cat := range cats {
		recs := inspectRecords(md, cat)
		if len(recs) == 0 && !explicit {
			continue
		}
		listing[cat.String()] = recs
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(listing)
	}

	if len(listing) == 0 {
		r.Muted("No mappings found")
		return nil
	}
	for _, cat := range cats {
		recs, ok := listing[cat.String()]
		if !ok {
			continue
		}
		r.Header(2, fmt.Sprintf("%s (%d)", cat, len(recs)))
		if len(recs) == 0 {
			r.Muted("none")
			r.Println()
			continue
		}
		rows := make([][]string, len(recs))
		for i, rec := range recs {
			rows[i] = []string{rec.Name, rec.Origin, rec.Detail}
		}
		r.Table([]string{"Name", "Origin", "Detail"}, rows)
		r.Println()
	}
	return nil
}

// inspectRecords lists the records of one category sorted by name.
func inspectRecords(md *metadata.Metadata, cat core.Category) []InspectRecord {
	var recs []core.Record
	switch cat {
	case core.CategoryTable:
		recs = collect(md.Tables())
	case core.CategoryEntity:
		recs = collect(md.EntityBindings())
	case core.CategoryCollection:
		recs = collect(md.CollectionBindings())
	case core.CategoryNamedQuery:
		recs = collect(md.NamedQueries())
	case core.CategoryNamedNativeQuery:
		recs = collect(md.NamedNativeQueries())
	case core.CategoryNamedProcedureCall:
		recs = collect(md.NamedProcedureCalls())
	case core.CategoryResultSetMapping:
		recs = collect(md.ResultSetMappings())
	case core.CategoryTypeDefinition:
		recs = collect(md.TypeDefinitions())
	case core.CategoryFilterDefinition:
		recs = collect(md.FilterDefinitions())
	case core.CategoryFetchProfile:
		recs = collect(md.FetchProfiles())
	case core.CategoryNamedEntityGraph:
		recs = collect(md.NamedEntityGraphs())
	case core.CategoryIdentifierGenerator:
		recs = collect(md.IdentifierGenerators())
	case core.CategorySQLFunction:
		recs = collect(md.SQLFunctions())
	case core.CategoryImport:
		recs = collect(md.ExplicitImports())
	}

	out := make([]InspectRecord, len(recs))
	for i, rec := range recs {
		out[i] = InspectRecord{
			Name:   rec.RecordName(),
			Origin: rec.RecordOrigin().String(),
			Detail: describe(rec),
		}
	}
	slices.SortFunc(out, func(a, b InspectRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func collect[T core.Record](seq iter.Seq[T]) []core.Record {
	var recs []core.Record
	for r := range seq {
		recs = append(recs, r)
	}
	return recs
}

// describe summarizes the resolved references of a record.
func describe(rec core.Record) string {
	switch r := rec.(type) {
	case *core.Table:
		return fmt.Sprintf("%d columns", len(r.Columns))
	case *core.EntityBinding:
		parts := []string{}
		if r.Table != nil {
			parts = append(parts, "table "+r.Table.QualifiedName())
		}
		if r.Superclass != nil {
			parts = append(parts, "extends "+r.Superclass.EntityName)
		}
		if n := len(r.Subclasses); n > 0 {
			parts = append(parts, fmt.Sprintf("%d subclasses", n))
		}
		return strings.Join(parts, ", ")
	case *core.CollectionBinding:
		target := r.ElementEntityName
		if target == "" {
			target = r.ElementTypeName
		}
		return fmt.Sprintf("%s of %s", r.Kind, target)
	case *core.NamedQuery:
		return truncate(r.Query, 48)
	case *core.NamedNativeQuery:
		return truncate(r.SQL, 48)
	case *core.Import:
		return "-> " + r.EntityName
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
