package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmap/internal/testutil"
	"github.com/leapstack-labs/leapmap/pkg/core"
	"github.com/leapstack-labs/leapmap/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `tables:
  - name: orders
    columns:
      - {name: id, sql_type: bigint}
      - {name: status, sql_type: varchar, type: OrderStatus}
  - name: line_items
    columns:
      - {name: id, sql_type: bigint}
      - {name: order_id, sql_type: bigint}
types:
  - {name: OrderStatus, class: com.acme.OrderStatusType}
entities:
  - name: Order
    table: orders
    id: {property: id, columns: [id], strategy: identity}
    properties:
      - {name: status, columns: [status], type: OrderStatus}
    collections:
      - name: items
        kind: list
        element: LineItem
        key_columns: [order_id]
  - name: LineItem
    table: line_items
    id: {property: id, columns: [id]}
queries:
  - {name: Order.open, query: "from Order o where o.status = 'OPEN'", cacheable: true}
fetch_profiles:
  - name: order-with-items
    fetches:
      - {entity: Order, association: items, style: subselect}
imports:
  - {alias: PurchaseOrder, entity: Order}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse_Shop(t *testing.T) {
	doc, err := Parse("shop.yaml", []byte(shopYAML))
	require.NoError(t, err)

	type named struct {
		category core.Category
		name     string
		line     int
	}
	var got []named
	for _, r := range doc.Records {
		got = append(got, named{r.RecordCategory(), r.RecordName(), r.RecordOrigin().Line})
	}
	assert.Equal(t, []named{
		{core.CategoryTable, "orders", 2},
		{core.CategoryTable, "line_items", 6},
		{core.CategoryEntity, "Order", 13},
		{core.CategoryCollection, "Order.items", 19},
		{core.CategoryEntity, "LineItem", 23},
		{core.CategoryNamedQuery, "Order.open", 27},
		{core.CategoryTypeDefinition, "OrderStatus", 11},
		{core.CategoryFetchProfile, "order-with-items", 29},
		{core.CategoryImport, "PurchaseOrder", 33},
	}, got)

	for _, r := range doc.Records {
		assert.Equal(t, "shop.yaml", r.RecordOrigin().File)
	}

	items := doc.Records[3].(*core.CollectionBinding)
	assert.Equal(t, "Order", items.OwnerEntityName)
	assert.Equal(t, core.CollectionList, items.Kind)
	assert.True(t, items.Lazy, "collections are lazy unless stated otherwise")

	profile := doc.Records[7].(*core.FetchProfile)
	assert.Equal(t, core.FetchSubselect, profile.Fetches[0].Style)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantLine int
		errMsg   string
	}{
		{
			name:    "unknown top level key",
			content: "entitys:\n  - name: Order\n",
			errMsg:  "entitys",
		},
		{
			name:    "unknown nested key",
			content: "entities:\n  - name: Order\n    tabel: orders\n",
			errMsg:  "tabel",
		},
		{
			name:    "invalid yaml",
			content: "entities: [\n",
			errMsg:  "shop.yaml",
		},
		{
			name:     "invalid collection kind",
			content:  "collections:\n  - {role: Order.items, kind: heap}\n",
			wantLine: 2,
			errMsg:   "invalid kind \"heap\"",
		},
		{
			name:     "invalid fetch style",
			content:  "fetch_profiles:\n  - name: p\n    fetches:\n      - {entity: Order, association: items, style: eager}\n",
			wantLine: 2,
			errMsg:   "invalid fetch style",
		},
		{
			name:     "invalid parameter mode",
			content:  "procedures:\n  - name: archive\n    parameters:\n      - {name: before, mode: sideways}\n",
			wantLine: 2,
			errMsg:   "invalid parameter mode",
		},
		{
			name:     "unnamed nested collection",
			content:  "entities:\n  - name: Order\n    collections:\n      - {element: LineItem}\n",
			wantLine: 4,
			errMsg:   "needs a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("shop.yaml", []byte(tt.content))
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.Equal(t, "shop.yaml", parseErr.File)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, parseErr.Line)
			}
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParse_MultipleDocuments(t *testing.T) {
	content := "tables:\n  - name: orders\n---\nentities:\n  - name: Order\n    table: orders\n"
	doc, err := Parse("multi.yaml", []byte(content))
	require.NoError(t, err)
	require.Len(t, doc.Records, 2)
	assert.Equal(t, 2, doc.Records[0].RecordOrigin().Line)
	assert.Equal(t, 5, doc.Records[1].RecordOrigin().Line)
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Records)
}

func TestLoader_Discover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "nested/c.yaml", "")
	writeFile(t, dir, ".git/config.yaml", "")
	writeFile(t, dir, "leapmap.yaml", "mappings_dir: .\n")
	writeFile(t, dir, "README.md", "")

	paths, err := New().Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, paths)
}

func TestLoader_Discover_MissingDir(t *testing.T) {
	_, err := New().Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoader_LoadFiles_JoinsErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "tables:\n  - name: orders\n")
	bad1 := writeFile(t, dir, "bad1.yaml", "tabels: []\n")
	bad2 := writeFile(t, dir, "bad2.yaml", "collections:\n  - {role: A.b, kind: heap}\n")

	_, err := New(WithConcurrency(2)).LoadFiles(context.Background(), []string{good, bad1, bad2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad1.yaml")
	assert.Contains(t, err.Error(), "bad2.yaml:2")

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestLoader_LoadFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"z.yaml", "m.yaml", "a.yaml"} {
		paths = append(paths, writeFile(t, dir, name, "types:\n  - {name: "+name+"}\n"))
	}

	docs, err := New(WithLogger(testutil.NewTestLogger(t))).LoadFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, paths[i], doc.File)
	}
}

func TestLoader_LoadFiles_Canceled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().LoadFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_CollectAndBind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shop.yaml", shopYAML)

	c, err := New().Collect(context.Background(), dir, metadata.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	md, err := c.Bind()
	require.NoError(t, err)

	items, ok := md.CollectionBinding("Order.items")
	require.True(t, ok)
	order, _ := md.EntityBinding("Order")
	assert.Same(t, order, items.Owner)

	statusProp, _ := order.Property("status")
	status, _ := md.TypeDefinition("OrderStatus")
	assert.Same(t, status, statusProp.Type)

	name, _ := md.ResolveEntityName("PurchaseOrder")
	assert.Equal(t, "Order", name)
}

func TestLoader_Collect_DuplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "tables:\n  - name: orders\nentities:\n  - name: Order\n    table: orders\n")
	writeFile(t, dir, "b.yaml", "entities:\n  - name: Order\n    table: orders\n  - name: Invoice\n  - name: Invoice\n")

	_, err := New().Collect(context.Background(), dir)
	require.Error(t, err)

	var dupErr *metadata.DuplicateNameError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "Order", dupErr.Name)
	assert.Equal(t, core.Origin{File: filepath.Join(dir, "a.yaml"), Line: 4}, dupErr.Existing)
	assert.Equal(t, core.Origin{File: filepath.Join(dir, "b.yaml"), Line: 2}, dupErr.Duplicate)

	// Every duplicate is reported, not just the first.
	assert.Contains(t, err.Error(), `duplicate entity "Invoice"`)
}
