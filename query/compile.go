package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/now"

	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/schema"
)

// Predicate is one compiled boolean condition, expressed with registry
// types so the mapping layer never receives unsanitized identifiers.
type Predicate struct {
	Column *schema.Column
	Entity *schema.Entity
	Hops   []*schema.Relationship // traversal from the base entity, empty for base columns
	Op     Operator
	Value  interface{} // coerced; []interface{} for in/notin, bool for isnull
}

// Ordering is a single compiled sort expression.
type Ordering struct {
	Column *schema.Column
	Entity *schema.Entity
	Hops   []*schema.Relationship
	Desc   bool
}

// JoinPlan is the deduplicated, ordered hop set of one compiled query.
// It is request-local and append-only: filters compile first, then the
// sort reuses whatever hops are already attached. Hops are keyed by
// relationship identity, so two clauses traversing the same relationship
// share one join.
type JoinPlan struct {
	hops []*schema.Relationship
	seen map[*schema.Relationship]struct{}
}

// NewJoinPlan creates an empty join plan for one request.
func NewJoinPlan() *JoinPlan {
	return &JoinPlan{seen: map[*schema.Relationship]struct{}{}}
}

// Add appends a hop unless an identical one is already present and
// reports whether it was added.
func (plan *JoinPlan) Add(relation *schema.Relationship) bool {
	if _, ok := plan.seen[relation]; ok {
		return false
	}
	plan.seen[relation] = struct{}{}
	plan.hops = append(plan.hops, relation)
	return true
}

// Hops returns the attached hops in attachment order.
func (plan *JoinPlan) Hops() []*schema.Relationship {
	hops := make([]*schema.Relationship, len(plan.hops))
	copy(hops, plan.hops)
	return hops
}

// Len reports how many distinct hops are attached.
func (plan *JoinPlan) Len() int {
	return len(plan.hops)
}

// CompiledQuery is everything the mapping layer needs to execute one
// request: conjunctive predicates, deduplicated joins, an optional
// ordering, and paging. Search predicates combine disjunctively among
// themselves and conjunctively with the rest.
type CompiledQuery struct {
	Entity     *schema.Entity
	Predicates []Predicate
	Search     []Predicate
	Joins      *JoinPlan
	Order      *Ordering
	Limit      int
	Offset     int
}

// Compiler turns parsed filter and sort specs into executable predicates
// against the schema registry.
type Compiler struct {
	log logger.Interface
}

// NewCompiler creates a compiler. A nil logger falls back to the default.
func NewCompiler(log logger.Interface) *Compiler {
	if log == nil {
		log = logger.Default
	}
	return &Compiler{log: log}
}

// CompileFilters resolves every field of the filter map, attaches the
// joins it needs to the shared plan, and emits one predicate per
// field/operator/value triple. The first invalid clause aborts the whole
// compilation; no partial predicate list is ever returned. Filtering
// through a relationship requires the related record to exist (the join
// plus predicate behaves as an inner join on that relationship).
func (c *Compiler) CompileFilters(base *schema.Entity, filters Filters, allowed map[string]*schema.Relationship, plan *JoinPlan) ([]Predicate, error) {
	var predicates []Predicate

	for _, field := range sortedKeys(filters) {
		path, err := schema.ResolvePath(base, field, allowed)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", field, err)
		}

		for _, hop := range path.Hops {
			if plan.Add(hop) {
				c.log.Debug("join %v.%v attached for filter %q", hop.Entity.Name, hop.Name, field)
			}
		}

		operators := filters[field]
		for _, name := range sortedKeys(operators) {
			op, err := ParseOperator(name)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", field, err)
			}

			value, err := coerceValue(op, path.Column, operators[name])
			if err != nil {
				return nil, fmt.Errorf("filter %s[%s]=%v: %w", field, name, operators[name], err)
			}

			predicates = append(predicates, Predicate{
				Column: path.Column,
				Entity: path.Entity,
				Hops:   path.Hops,
				Op:     op,
				Value:  value,
			})
		}
	}

	return predicates, nil
}

// CompileSort resolves the sort field and emits a single ordering
// expression, reusing any hops already present in the shared plan. An
// empty sort field is a no-op.
func (c *Compiler) CompileSort(base *schema.Entity, sortBy, direction string, allowed map[string]*schema.Relationship, plan *JoinPlan) (*Ordering, error) {
	if sortBy == "" {
		return nil, nil
	}

	desc, err := ParseSortDirection(direction)
	if err != nil {
		return nil, err
	}

	path, err := schema.ResolvePath(base, sortBy, allowed)
	if err != nil {
		return nil, fmt.Errorf("sort %q: %w", sortBy, err)
	}

	for _, hop := range path.Hops {
		if plan.Add(hop) {
			c.log.Debug("join %v.%v attached for sort %q", hop.Entity.Name, hop.Name, sortBy)
		}
	}

	return &Ordering{Column: path.Column, Entity: path.Entity, Hops: path.Hops, Desc: desc}, nil
}

// coerceValue validates and converts one raw filter value for its
// operator and terminal column.
func coerceValue(op Operator, column *schema.Column, value interface{}) (interface{}, error) {
	if op == OpIsNull {
		return parseBool(value), nil
	}

	if op.NeedsList() {
		switch v := value.(type) {
		case []interface{}:
			return coerceList(column, v)
		case string:
			var items []interface{}
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			return coerceList(column, items)
		}
		return nil, fmt.Errorf("%w: %s takes a list or a comma separated string", ErrInvalidOperatorValue, op)
	}

	if op.TextOnly() {
		return fmt.Sprint(value), nil
	}

	return coerceScalar(column, value)
}

func coerceList(column *schema.Column, items []interface{}) ([]interface{}, error) {
	coerced := make([]interface{}, 0, len(items))
	for _, item := range items {
		value, err := coerceScalar(column, item)
		if err != nil {
			return nil, err
		}
		coerced = append(coerced, value)
	}
	return coerced, nil
}

// coerceScalar converts a parsed value to the terminal column's type.
// Non-string values pass through: they were already coerced by the
// boolean/null grammar or supplied typed by the caller.
func coerceScalar(column *schema.Column, value interface{}) (interface{}, error) {
	raw, ok := value.(string)
	if !ok {
		return value, nil
	}

	switch column.DataType {
	case schema.Bool:
		return parseBool(raw), nil
	case schema.Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidOperatorValue, raw)
		}
		return n, nil
	case schema.Uint:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an unsigned integer", ErrInvalidOperatorValue, raw)
		}
		return n, nil
	case schema.Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidOperatorValue, raw)
		}
		return f, nil
	case schema.Time:
		t, err := now.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a recognized time", ErrInvalidOperatorValue, raw)
		}
		return t, nil
	case schema.UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a uuid", ErrInvalidOperatorValue, raw)
		}
		return id, nil
	}

	return raw, nil
}

// parseBool converts a value to boolean the permissive way the filter
// grammar does: true/yes/1/on spell true, everything else is its truthiness.
func parseBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case nil:
		return false
	case string:
		switch strings.ToLower(v) {
		case "true", "yes", "1", "on":
			return true
		}
		return false
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
