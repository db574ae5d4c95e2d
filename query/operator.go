package query

import (
	"fmt"
	"strings"
)

// Operator is the closed set of filter operators the engine accepts.
// Adding an operator requires extending ParseOperator, String and the
// store lowering, which the exhaustive switches below keep honest.
type Operator int

const (
	OpInvalid Operator = iota
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpNotIn
	OpLike
	OpILike
	OpIsNull
	OpContains
	OpStartsWith
	OpEndsWith
)

// ParseOperator maps an operator's wire name to its Operator value.
func ParseOperator(name string) (Operator, error) {
	switch strings.ToLower(name) {
	case "eq":
		return OpEq, nil
	case "neq":
		return OpNeq, nil
	case "lt":
		return OpLt, nil
	case "lte":
		return OpLte, nil
	case "gt":
		return OpGt, nil
	case "gte":
		return OpGte, nil
	case "in":
		return OpIn, nil
	case "notin":
		return OpNotIn, nil
	case "like":
		return OpLike, nil
	case "ilike":
		return OpILike, nil
	case "isnull":
		return OpIsNull, nil
	case "contains":
		return OpContains, nil
	case "startswith":
		return OpStartsWith, nil
	case "endswith":
		return OpEndsWith, nil
	}
	return OpInvalid, fmt.Errorf("%w: %q", ErrUnsupportedOperator, name)
}

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpIn:
		return "in"
	case OpNotIn:
		return "notin"
	case OpLike:
		return "like"
	case OpILike:
		return "ilike"
	case OpIsNull:
		return "isnull"
	case OpContains:
		return "contains"
	case OpStartsWith:
		return "startswith"
	case OpEndsWith:
		return "endswith"
	}
	return "invalid"
}

// NeedsList reports whether the operator takes a list argument.
func (op Operator) NeedsList() bool {
	return op == OpIn || op == OpNotIn
}

// TextOnly reports whether the operator compares string patterns and
// therefore skips typed coercion of its argument.
func (op Operator) TextOnly() bool {
	switch op {
	case OpLike, OpILike, OpContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}
