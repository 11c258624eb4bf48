// Package metadata collects mapping contributions and binds them into an
// immutable, concurrently readable model of how entities map onto tables.
//
// The lifecycle has two states. A Collector accepts records of any category
// in any order and only checks names locally. Bind resolves every symbolic
// reference at once, reports every failure it finds, and on success moves the
// records into a sealed *Metadata snapshot:
//
//	c := metadata.NewCollector(metadata.WithDefaultSchema("public"))
//	_ = c.AddTable(&core.Table{Name: "orders"})
//	_ = c.AddEntityBinding(&core.EntityBinding{EntityName: "Order", TableName: "orders"})
//	md, err := c.Bind()
//
// A snapshot never changes after construction. Records reachable from it must
// be treated as read-only by callers.
package metadata
