package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized: a struct contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrOpenType: the type still has unresolved inference variables.
	LayoutErrOpenType
	LayoutErrLengthConversion
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  string
	Cycle []string // for LayoutErrRecursiveUnsized
	Err   error    // for LayoutErrLengthConversion
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive type `%s` has infinite size", e.Type)
		}
		return fmt.Sprintf("recursive type `%s` has infinite size (cycle: %s)", e.Type, strings.Join(e.Cycle, " -> "))
	case LayoutErrOpenType:
		return fmt.Sprintf("the size of `%s` is not known yet", e.Type)
	case LayoutErrLengthConversion:
		if e.Err != nil {
			return fmt.Sprintf("array length conversion error (`%s`): %v", e.Type, e.Err)
		}
		return fmt.Sprintf("array length conversion error (`%s`)", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type `%s`", e.Kind, e.Type)
	}
}
