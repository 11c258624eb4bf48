package core

import "fmt"

// Origin tags a contribution with the place it was declared, for diagnostics.
// The zero value means "unknown".
type Origin struct {
	File string
	Line int
}

// IsZero reports whether the origin carries no location.
func (o Origin) IsZero() bool {
	return o.File == "" && o.Line == 0
}

func (o Origin) String() string {
	switch {
	case o.File == "" && o.Line == 0:
		return "<unknown>"
	case o.Line == 0:
		return o.File
	case o.File == "":
		return fmt.Sprintf("line %d", o.Line)
	default:
		return fmt.Sprintf("%s:%d", o.File, o.Line)
	}
}

// Record is implemented by every contribution record.
type Record interface {
	// RecordName is the key the record is registered under in its category.
	RecordName() string
	// RecordCategory is the namespace the record belongs to.
	RecordCategory() Category
	// RecordOrigin is where the record was declared.
	RecordOrigin() Origin
}
