package metadata

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapmap/internal/testutil"
	"github.com/leapstack-labs/leapmap/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contributeAll adds every record and fails the test on the first error.
func contributeAll(t *testing.T, c *Collector, records []core.Record) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, c.Contribute(r), "contributing %s %q", r.RecordCategory(), r.RecordName())
	}
}

// bindRecords contributes records to a fresh collector and binds it.
func bindRecords(t *testing.T, records []core.Record, opts ...Option) (*Metadata, error) {
	t.Helper()
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	c := NewCollector(opts...)
	contributeAll(t, c, records)
	return c.Bind()
}

func TestCollector_LocalValidation(t *testing.T) {
	tests := []struct {
		name    string
		add     func(c *Collector) error
		wantErr error
	}{
		{
			name:    "nil entity",
			add:     func(c *Collector) error { return c.AddEntityBinding(nil) },
			wantErr: ErrNilRecord,
		},
		{
			name:    "nil table",
			add:     func(c *Collector) error { return c.AddTable(nil) },
			wantErr: ErrNilRecord,
		},
		{
			name:    "nil contribution",
			add:     func(c *Collector) error { return c.Contribute(nil) },
			wantErr: ErrNilRecord,
		},
		{
			name:    "typed nil through Contribute",
			add:     func(c *Collector) error { return c.Contribute((*core.NamedQuery)(nil)) },
			wantErr: ErrNilRecord,
		},
		{
			name:    "unnamed entity",
			add:     func(c *Collector) error { return c.AddEntityBinding(&core.EntityBinding{TableName: "orders"}) },
			wantErr: ErrMissingName,
		},
		{
			name:    "unnamed table",
			add:     func(c *Collector) error { return c.AddTable(&core.Table{Schema: "public"}) },
			wantErr: ErrMissingName,
		},
		{
			name:    "collection without role",
			add:     func(c *Collector) error { return c.AddCollectionBinding(&core.CollectionBinding{OwnerEntityName: "Order"}) },
			wantErr: ErrMissingName,
		},
		{
			name: "collection without owner",
			add: func(c *Collector) error {
				return c.Contribute(&core.CollectionBinding{Role: "items", ElementEntityName: "LineItem"})
			},
			wantErr: ErrMissingName,
		},
		{
			name:    "import without alias",
			add:     func(c *Collector) error { return c.AddImport(&core.Import{EntityName: "Order"}) },
			wantErr: ErrMissingName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			err := tt.add(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCollector_MissingNameMentionsOrigin(t *testing.T) {
	c := NewCollector()
	err := c.AddNamedQuery(&core.NamedQuery{Query: "from Order", Origin: core.Origin{File: "queries.yaml", Line: 12}})
	require.ErrorIs(t, err, ErrMissingName)
	assert.Contains(t, err.Error(), "named query")
	assert.Contains(t, err.Error(), "queries.yaml:12")
}

func TestCollector_DuplicateEntity(t *testing.T) {
	c := NewCollector()
	first := &core.EntityBinding{EntityName: "Order", TableName: "orders", Origin: core.Origin{File: "orders.yaml", Line: 1}}
	second := &core.EntityBinding{EntityName: "Order", TableName: "orders", Origin: core.Origin{File: "legacy.yaml", Line: 4}}

	require.NoError(t, c.AddEntityBinding(first))
	err := c.AddEntityBinding(second)
	require.Error(t, err)

	var dupErr *DuplicateNameError
	require.True(t, errors.As(err, &dupErr), "expected *DuplicateNameError, got %T", err)
	assert.Equal(t, core.CategoryEntity, dupErr.Category)
	assert.Equal(t, "Order", dupErr.Name)
	assert.Equal(t, first.Origin, dupErr.Existing)
	assert.Equal(t, second.Origin, dupErr.Duplicate)

	// Identical content is still a duplicate.
	assert.Error(t, c.AddEntityBinding(&core.EntityBinding{EntityName: "Order", TableName: "orders"}))
}

func TestCollector_SameNameAcrossCategories(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.AddEntityBinding(&core.EntityBinding{EntityName: "Order"}))
	require.NoError(t, c.AddNamedQuery(&core.NamedQuery{Name: "Order", Query: "from Order"}))
	require.NoError(t, c.AddFilterDefinition(&core.FilterDefinition{Name: "Order"}))
	require.NoError(t, c.AddImport(&core.Import{Alias: "Order", EntityName: "Order"}))
}

func TestCollector_DuplicateTableUsesDefaults(t *testing.T) {
	c := NewCollector(WithDefaultSchema("public"))
	require.NoError(t, c.AddTable(&core.Table{Name: "orders"}))

	err := c.AddTable(&core.Table{Schema: "public", Name: "orders"})
	var dupErr *DuplicateNameError
	require.True(t, errors.As(err, &dupErr), "expected *DuplicateNameError, got %T", err)
	assert.Equal(t, "public.orders", dupErr.Name)

	// Another schema is another table.
	require.NoError(t, c.AddTable(&core.Table{Schema: "archive", Name: "orders"}))
	assert.Equal(t, 2, c.Database().TableCount())
}

func TestCollector_CatalogAndSchemaDoNotCollide(t *testing.T) {
	c := NewCollector()
	byCatalog := &core.Table{Catalog: "erp", Name: "orders"}
	bySchema := &core.Table{Schema: "erp", Name: "orders"}
	require.NoError(t, c.AddTable(byCatalog))
	require.NoError(t, c.AddTable(bySchema))
	assert.Equal(t, 2, c.Database().TableCount())

	got, ok := c.Database().Table("erp.orders")
	require.True(t, ok)
	assert.Same(t, bySchema, got, "two parts are schema.name")

	got, ok = c.Database().Table("erp..orders")
	require.True(t, ok)
	assert.Same(t, byCatalog, got)

	err := c.AddTable(&core.Table{Catalog: "erp", Name: "orders"})
	var dupErr *DuplicateNameError
	require.True(t, errors.As(err, &dupErr), "expected *DuplicateNameError, got %T", err)
	assert.Equal(t, "erp.orders", dupErr.Name)
}

type unknownRecord struct{}

func (unknownRecord) RecordName() string           { return "x" }
func (unknownRecord) RecordCategory() core.Category { return core.CategoryEntity }
func (unknownRecord) RecordOrigin() core.Origin     { return core.Origin{} }

func TestCollector_ContributeUnsupported(t *testing.T) {
	err := NewCollector().Contribute(unknownRecord{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported contribution type")
}

func TestCollector_ContributeDispatchesEveryCategory(t *testing.T) {
	c := NewCollector()
	contributeAll(t, c, testutil.ShopRecords())

	assert.Equal(t, 2, c.Database().TableCount())
	assert.Equal(t, 2, c.entities.Len())
	assert.Equal(t, 1, c.collections.Len())
	assert.Equal(t, 1, c.namedQueries.Len())
	assert.Equal(t, 1, c.nativeQueries.Len())
	assert.Equal(t, 1, c.procedureCalls.Len())
	assert.Equal(t, 1, c.resultSetMappings.Len())
	assert.Equal(t, 1, c.typeDefinitions.Len())
	assert.Equal(t, 1, c.filterDefinitions.Len())
	assert.Equal(t, 1, c.fetchProfiles.Len())
	assert.Equal(t, 1, c.entityGraphs.Len())
	assert.Equal(t, 1, c.identifierGenerators.Len())
	assert.Equal(t, 1, c.sqlFunctions.Len())
	assert.Equal(t, 1, c.imports.Len())
}

func TestCollector_AlreadyBound(t *testing.T) {
	c := NewCollector()
	contributeAll(t, c, testutil.ShopRecords())

	_, err := c.Bind()
	require.NoError(t, err)
	assert.True(t, c.Bound())

	_, err = c.Bind()
	var boundErr *AlreadyBoundError
	assert.True(t, errors.As(err, &boundErr), "expected *AlreadyBoundError, got %T", err)

	err = c.AddEntityBinding(&core.EntityBinding{EntityName: "Invoice"})
	assert.True(t, errors.As(err, &boundErr))
	err = c.AddTable(&core.Table{Name: "invoices"})
	assert.True(t, errors.As(err, &boundErr))
	err = c.Contribute(&core.Import{Alias: "Inv", EntityName: "Invoice"})
	assert.True(t, errors.As(err, &boundErr))
}

func TestCollector_AlreadyBoundAfterFailure(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.AddEntityBinding(&core.EntityBinding{EntityName: "Order", TableName: "orders"}))

	_, err := c.Bind()
	var bindErr *BindingError
	require.True(t, errors.As(err, &bindErr), "expected *BindingError, got %T", err)

	// Fixing the input afterwards does not allow a second attempt.
	err = c.AddTable(&core.Table{Name: "orders"})
	var boundErr *AlreadyBoundError
	assert.True(t, errors.As(err, &boundErr))

	_, err = c.Bind()
	assert.True(t, errors.As(err, &boundErr))
}

func TestCollector_Logging(t *testing.T) {
	logger, buf := testutil.NewCapturingLogger()
	c := NewCollector(WithLogger(logger))
	contributeAll(t, c, testutil.ShopRecords())
	_, err := c.Bind()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"contributed mapping"`)
	assert.Contains(t, out, `"name":"Order.items"`)
	assert.Contains(t, out, `"msg":"metadata bound"`)
}
