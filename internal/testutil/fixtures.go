package testutil

import "github.com/leapstack-labs/leapmap/pkg/core"

// ShopTables returns the tables of the order/line item example schema.
func ShopTables() []*core.Table {
	return []*core.Table{
		{
			Name: "orders",
			Columns: []core.Column{
				{Name: "id", SQLType: "bigint"},
				{Name: "status", SQLType: "varchar", Length: 20, TypeName: "OrderStatus"},
				{Name: "placed_at", SQLType: "timestamp", Nullable: true},
			},
			PrimaryKey: &core.PrimaryKey{Name: "orders_pk", Columns: []string{"id"}},
		},
		{
			Name: "line_items",
			Columns: []core.Column{
				{Name: "id", SQLType: "bigint"},
				{Name: "order_id", SQLType: "bigint"},
				{Name: "sku", SQLType: "varchar", Length: 64},
				{Name: "quantity", SQLType: "integer"},
			},
			PrimaryKey: &core.PrimaryKey{Columns: []string{"id"}},
		},
	}
}

// ShopRecords returns a complete, bindable set of mappings for the example
// schema, touching every category. Each call returns fresh records.
func ShopRecords() []core.Record {
	var records []core.Record
	for _, t := range ShopTables() {
		records = append(records, t)
	}
	return append(records,
		&core.TypeDefinition{Name: "OrderStatus", Implementation: "com.acme.shop.OrderStatusType"},
		&core.FilterDefinition{
			Name:             "tenant",
			DefaultCondition: "tenant_id = :tenantId",
			ParameterTypes:   map[string]string{"tenantId": "long"},
		},
		&core.IdentifierGenerator{Name: "order_seq", Strategy: "sequence", Parameters: map[string]string{"sequence_name": "order_seq"}},
		&core.SQLFunction{Name: "concat_ws", Pattern: "concat_ws(?1, ?2, ?3)", ReturnTypeName: "string"},
		&core.EntityBinding{
			EntityName: "Order",
			ClassName:  "com.acme.shop.Order",
			TableName:  "orders",
			Identifier: core.Identifier{Property: "id", Columns: []string{"id"}, TypeName: "long", GeneratorName: "order_seq"},
			Properties: []core.Property{
				{Name: "status", Columns: []string{"status"}, TypeName: "OrderStatus"},
				{Name: "placedAt", Columns: []string{"placed_at"}, TypeName: "timestamp", Nullable: true},
			},
			Filters: []core.FilterRef{{Name: "tenant"}},
		},
		&core.EntityBinding{
			EntityName: "LineItem",
			ClassName:  "com.acme.shop.LineItem",
			TableName:  "line_items",
			Identifier: core.Identifier{Property: "id", Columns: []string{"id"}, TypeName: "long", Strategy: "identity"},
			Properties: []core.Property{
				{Name: "sku", Columns: []string{"sku"}, TypeName: "string"},
				{Name: "quantity", Columns: []string{"quantity"}, TypeName: "integer"},
			},
		},
		&core.CollectionBinding{
			Role:              "Order.items",
			OwnerEntityName:   "Order",
			Kind:              core.CollectionList,
			ElementEntityName: "LineItem",
			KeyColumns:        []string{"order_id"},
			Inverse:           true,
			Lazy:              true,
		},
		&core.ResultSetMapping{
			Name:          "orderSummary",
			EntityReturns: []core.EntityReturn{{Alias: "o", EntityName: "Order"}},
			ScalarReturns: []core.ScalarReturn{{Column: "item_count", TypeName: "long"}},
		},
		&core.NamedQuery{Name: "Order.open", Query: "from Order o where o.status = 'OPEN'", Cacheable: true},
		&core.NamedNativeQuery{
			Name:                 "Order.summary",
			SQL:                  "SELECT o.*, count(l.id) AS item_count FROM orders o JOIN line_items l ON l.order_id = o.id GROUP BY o.id",
			ResultSetMappingName: "orderSummary",
			QuerySpaces:          []string{"orders", "line_items"},
		},
		&core.NamedProcedureCall{
			Name:                  "archiveOrders",
			ProcedureName:         "archive_orders",
			Parameters:            []core.ProcedureParameter{{Name: "before", Position: 1, Mode: core.ParameterIn, TypeName: "date"}},
			ResultSetMappingNames: []string{"orderSummary"},
		},
		&core.FetchProfile{
			Name:    "order-with-items",
			Fetches: []core.Fetch{{EntityName: "Order", Association: "items", Style: core.FetchJoin}},
		},
		&core.NamedEntityGraph{
			Name:       "Order.detail",
			EntityName: "Order",
			Attributes: []core.AttributeNode{
				{Name: "status"},
				{Name: "items", Subgraphs: []core.Subgraph{{EntityName: "LineItem", Attributes: []core.AttributeNode{{Name: "sku"}}}}},
			},
		},
		&core.Import{Alias: "PurchaseOrder", EntityName: "Order"},
	)
}
