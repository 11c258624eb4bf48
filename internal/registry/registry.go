// Package registry provides the keyed store used for every mapping category.
// A Registry maps a logical name to one record, rejects duplicate names and
// remembers insertion order so iteration and diagnostics are deterministic.
//
// A Registry is written by a single goroutine while it is being populated.
// Once sealed it never changes again, so any number of goroutines may read it
// without synchronization.
package registry

import (
	"iter"

	"github.com/leapstack-labs/leapmap/pkg/core"
)

// Registry is a name-unique, insertion-ordered store for one category.
type Registry[T any] struct {
	category core.Category

	// byName maps registered names to their records: "Order" → *EntityBinding
	byName map[string]T

	// origins remembers where each name was first declared, for duplicate diagnostics
	origins map[string]core.Origin

	// order holds names in insertion order
	order []string

	sealed bool
}

// New creates an empty registry for the given category.
func New[T any](category core.Category) *Registry[T] {
	return &Registry[T]{
		category: category,
		byName:   make(map[string]T),
		origins:  make(map[string]core.Origin),
	}
}

// Category returns the category this registry holds.
func (r *Registry[T]) Category() core.Category {
	return r.category
}

// Put registers record under name.
// It fails with *core.DuplicateNameError if the name is taken (the existing record
// is kept) and with *core.ImmutableStateError once the registry is sealed.
func (r *Registry[T]) Put(name string, record T, origin core.Origin) error {
	if r.sealed {
		return &core.ImmutableStateError{Category: r.category, Name: name}
	}
	if _, exists := r.byName[name]; exists {
		return &core.DuplicateNameError{
			Category:  r.category,
			Name:      name,
			Existing:  r.origins[name],
			Duplicate: origin,
		}
	}

	r.byName[name] = record
	r.origins[name] = origin
	r.order = append(r.order, name)
	return nil
}

// Get returns the record registered under name.
// A missing name is a normal outcome and is reported through the bool.
func (r *Registry[T]) Get(name string) (T, bool) {
	record, ok := r.byName[name]
	return record, ok
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Origin returns where name was declared.
func (r *Registry[T]) Origin(name string) (core.Origin, bool) {
	origin, ok := r.origins[name]
	return origin, ok
}

// All yields every record in insertion order.
// The sequence is lazy and can be ranged over any number of times.
func (r *Registry[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, name := range r.order {
			if !yield(r.byName[name]) {
				return
			}
		}
	}
}

// Entries yields name/record pairs in insertion order.
func (r *Registry[T]) Entries() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range r.order {
			if !yield(name, r.byName[name]) {
				return
			}
		}
	}
}

// Names returns the registered names in insertion order.
func (r *Registry[T]) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered records.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// Seal permanently disables Put.
func (r *Registry[T]) Seal() {
	r.sealed = true
}

// Sealed reports whether Put is disabled.
func (r *Registry[T]) Sealed() bool {
	return r.sealed
}

// Move transfers every record into a new sealed registry.
// The receiver is left empty and sealed, so later writes fail instead of
// silently landing in a registry nobody reads.
func (r *Registry[T]) Move() *Registry[T] {
	moved := &Registry[T]{
		category: r.category,
		byName:   r.byName,
		origins:  r.origins,
		order:    r.order,
		sealed:   true,
	}

	r.byName = make(map[string]T)
	r.origins = make(map[string]core.Origin)
	r.order = nil
	r.sealed = true

	return moved
}
