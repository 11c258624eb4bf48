// Package core defines the shared language of the leapmap system.
//
// This package contains:
//   - Contribution records, one type per mapping category (EntityBinding, Table, ...)
//   - The Category enumeration and the Record interface every contribution implements
//   - Source origins used for diagnostics
//   - The error taxonomy shared by the registry, collector and binder
//
// Records carry their symbolic references as plain strings (TableName, SuperclassName,
// OwnerEntityName, ...) and a set of resolved pointer fields (Table, Superclass, Owner, ...)
// that are populated only by a successful bind.
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
