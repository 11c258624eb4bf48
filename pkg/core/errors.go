package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Local validation failures, returned wrapped with the offending category.
var (
	// ErrNilRecord is returned when a nil record is contributed.
	ErrNilRecord = errors.New("nil record")
	// ErrMissingName is returned when a record has an empty registration key.
	ErrMissingName = errors.New("record name is required")
)

// DuplicateNameError is returned when a name is already registered in a category.
// The first registration is left unchanged.
type DuplicateNameError struct {
	Category  Category
	Name      string
	Existing  Origin
	Duplicate Origin
}

func (e *DuplicateNameError) Error() string {
	msg := fmt.Sprintf("duplicate %s %q", e.Category, e.Name)
	if !e.Duplicate.IsZero() {
		msg = fmt.Sprintf("%s: %s", e.Duplicate, msg)
	}
	if !e.Existing.IsZero() {
		msg += fmt.Sprintf(" (first declared at %s)", e.Existing)
	}
	return msg
}

// UnresolvedReferenceError is returned by binding when a symbolic reference names
// something that was never contributed.
type UnresolvedReferenceError struct {
	// Category and Name identify the referencing record.
	Category Category
	Name     string
	// TargetCategory and Target identify the missing record.
	TargetCategory Category
	Target         string
	// Origin is where the referencing record was declared.
	Origin Origin
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("%s %q references unknown %s %q", e.Category, e.Name, e.TargetCategory, e.Target)
	if !e.Origin.IsZero() {
		return fmt.Sprintf("%s: %s", e.Origin, msg)
	}
	return msg
}

// CyclicInheritanceError is returned by binding when entities are their own ancestors.
type CyclicInheritanceError struct {
	// Members are the entity names forming the cycle, starting from the
	// smallest name and following superclass-to-subclass links.
	Members []string
}

func (e *CyclicInheritanceError) Error() string {
	if len(e.Members) == 0 {
		return "cyclic entity inheritance"
	}
	ring := append(slices.Clone(e.Members), e.Members[0])
	return fmt.Sprintf("cyclic entity inheritance: %s", strings.Join(ring, " -> "))
}

// AlreadyBoundError is returned when a collector is used after Bind was called.
type AlreadyBoundError struct{}

func (e *AlreadyBoundError) Error() string {
	return "metadata collector has already been bound"
}

// ImmutableStateError is returned when a write is attempted on a sealed registry.
type ImmutableStateError struct {
	Category Category
	Name     string
}

func (e *ImmutableStateError) Error() string {
	return fmt.Sprintf("cannot register %s %q: registry is sealed", e.Category, e.Name)
}

// BindingError aggregates every failure found during a binding pass.
type BindingError struct {
	Failures []error
}

func (e *BindingError) Error() string {
	if len(e.Failures) == 1 {
		return "metadata binding failed: " + e.Failures[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "metadata binding failed with %d errors:", len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BindingError) Unwrap() []error {
	return e.Failures
}
