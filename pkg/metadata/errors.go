package metadata

import "github.com/leapstack-labs/leapmap/pkg/core"

// Error types are defined in pkg/core and re-exported here so callers of the
// metadata API do not need to import core just to inspect failures.
type (
	// DuplicateNameError is an alias for core.DuplicateNameError.
	DuplicateNameError = core.DuplicateNameError

	// UnresolvedReferenceError is an alias for core.UnresolvedReferenceError.
	UnresolvedReferenceError = core.UnresolvedReferenceError

	// CyclicInheritanceError is an alias for core.CyclicInheritanceError.
	CyclicInheritanceError = core.CyclicInheritanceError

	// AlreadyBoundError is an alias for core.AlreadyBoundError.
	AlreadyBoundError = core.AlreadyBoundError

	// ImmutableStateError is an alias for core.ImmutableStateError.
	ImmutableStateError = core.ImmutableStateError

	// BindingError is an alias for core.BindingError.
	BindingError = core.BindingError
)

// Re-export local validation sentinels.
var (
	ErrNilRecord   = core.ErrNilRecord
	ErrMissingName = core.ErrMissingName
)
