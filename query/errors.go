package query

import (
	"errors"
)

// All engine errors classify as client-input errors: the caller's query
// was invalid. None of them is fatal to the process.
var (
	// ErrUnsupportedOperator operator name outside the closed operator set
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	// ErrInvalidOperatorValue value cannot be coerced for its operator or column
	ErrInvalidOperatorValue = errors.New("invalid filter value")
	// ErrInvalidSortDirection sort direction other than asc/desc
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	// ErrInvalidSelector malformed bracket syntax in a select expression
	ErrInvalidSelector = errors.New("invalid select expression")
)
