package store

import (
	"fmt"

	"github.com/ivancley/gestao-conhecimento-back/clause"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/schema"
)

// BuildSelect lowers a compiled query to its SELECT statement. Joins are
// rendered LEFT OUTER with the predicate applied in WHERE position: a
// filter through a relationship only admits base rows without the related
// record when the clause itself admits missing (isnull), otherwise it
// behaves as an inner join on that relationship. A to-many hop multiplies
// joined rows, so those plans select DISTINCT to keep result rows and the
// COUNT form in agreement.
func BuildSelect(cq *query.CompiledQuery) (*Statement, error) {
	stmt := &Statement{}

	stmt.WriteString("SELECT ")
	if hasManyHop(cq.Joins) {
		stmt.WriteString("DISTINCT ")
	}
	stmt.WriteQuoted(clause.Column{Table: cq.Entity.Table, Name: "*"})
	stmt.WriteString(" FROM ")
	stmt.WriteQuoted(clause.Table{Name: cq.Entity.Table})

	aliases := buildJoins(stmt, cq)

	if err := buildWhere(stmt, cq, aliases); err != nil {
		return nil, err
	}

	if cq.Order != nil {
		stmt.WriteString(" ORDER BY ")
		clause.OrderBy{Columns: []clause.OrderByColumn{{
			Column: clause.Column{Table: tableFor(cq, cq.Order.Hops, aliases), Name: cq.Order.Column.DBName},
			Desc:   cq.Order.Desc,
		}}}.Build(stmt)
	}

	if cq.Limit > 0 || cq.Offset > 0 {
		stmt.WriteByte(' ')
		clause.Limit{Limit: cq.Limit, Offset: cq.Offset}.Build(stmt)
	}

	return stmt, nil
}

// BuildCount lowers a compiled query to its COUNT statement, keeping the
// joins and predicates but dropping ordering and paging.
func BuildCount(cq *query.CompiledQuery) (*Statement, error) {
	stmt := &Statement{}

	stmt.WriteString("SELECT COUNT(DISTINCT ")
	stmt.WriteQuoted(clause.Column{Table: cq.Entity.Table, Name: cq.Entity.PrimaryColumn.DBName})
	stmt.WriteString(") FROM ")
	stmt.WriteQuoted(clause.Table{Name: cq.Entity.Table})

	aliases := buildJoins(stmt, cq)

	if err := buildWhere(stmt, cq, aliases); err != nil {
		return nil, err
	}

	return stmt, nil
}

// buildJoins renders every hop of the join plan and returns the alias
// assigned to each. First-level hops take the relationship name as alias,
// nested hops chain through their parent with "__", so a self-referencing
// traversal never collides with the base table.
func buildJoins(stmt *Statement, cq *query.CompiledQuery) map[*schema.Relationship]string {
	aliases := map[*schema.Relationship]string{}
	if cq.Joins == nil {
		return aliases
	}

	hops := cq.Joins.Hops()
	for idx, relation := range hops {
		sourceAlias := cq.Entity.Table
		alias := relation.Name
		if relation.Entity != cq.Entity {
			// plans append hops in traversal order, so the parent hop was
			// attached before this one
			if parent := parentHop(relation, hops[:idx]); parent != nil {
				sourceAlias = aliases[parent]
				alias = sourceAlias + "__" + relation.Name
			}
		}
		aliases[relation] = alias

		targetColumn, sourceColumn := relation.References, relation.ForeignKey
		if relation.Cardinality == schema.Many {
			targetColumn, sourceColumn = relation.ForeignKey, relation.References
		}

		stmt.WriteByte(' ')
		clause.Join{
			Type:  clause.LeftJoin,
			Table: clause.Table{Name: relation.Target.Table, Alias: alias},
			ON: clause.Where{Exprs: []clause.Expression{clause.Eq{
				Column: clause.Column{Table: alias, Name: targetColumn.DBName},
				Value:  clause.Column{Table: sourceAlias, Name: sourceColumn.DBName},
			}}},
		}.Build(stmt)
	}

	return aliases
}

func hasManyHop(plan *query.JoinPlan) bool {
	if plan == nil {
		return false
	}
	for _, hop := range plan.Hops() {
		if hop.Cardinality == schema.Many {
			return true
		}
	}
	return false
}

func parentHop(relation *schema.Relationship, priors []*schema.Relationship) *schema.Relationship {
	for _, prior := range priors {
		if prior.Target == relation.Entity {
			return prior
		}
	}
	return nil
}

func buildWhere(stmt *Statement, cq *query.CompiledQuery, aliases map[*schema.Relationship]string) error {
	exprs := make([]clause.Expression, 0, len(cq.Predicates)+1)

	for _, predicate := range cq.Predicates {
		expr, err := lowerPredicate(cq, predicate, aliases)
		if err != nil {
			return err
		}
		exprs = append(exprs, expr)
	}

	if len(cq.Search) > 0 {
		or := clause.OrConditions{}
		for _, predicate := range cq.Search {
			expr, err := lowerSearch(cq, predicate, aliases)
			if err != nil {
				return err
			}
			or.Exprs = append(or.Exprs, expr)
		}
		exprs = append(exprs, or)
	}

	if len(exprs) == 0 {
		return nil
	}

	stmt.WriteString(" WHERE ")
	clause.Where{Exprs: exprs}.Build(stmt)
	return nil
}

func tableFor(cq *query.CompiledQuery, hops []*schema.Relationship, aliases map[*schema.Relationship]string) string {
	if len(hops) == 0 {
		return cq.Entity.Table
	}
	return aliases[hops[len(hops)-1]]
}

// lowerSearch lowers free-text search predicates. Their ilike runs both
// sides through the fold SQL function, so "José" and "jose" match the
// same stored values.
func lowerSearch(cq *query.CompiledQuery, predicate query.Predicate, aliases map[*schema.Relationship]string) (clause.Expression, error) {
	if predicate.Op == query.OpILike {
		return clause.FoldedLike{
			Column: clause.Column{Table: tableFor(cq, predicate.Hops, aliases), Name: predicate.Column.DBName},
			Value:  predicate.Value,
		}, nil
	}
	return lowerPredicate(cq, predicate, aliases)
}

func lowerPredicate(cq *query.CompiledQuery, predicate query.Predicate, aliases map[*schema.Relationship]string) (clause.Expression, error) {
	column := clause.Column{
		Table: tableFor(cq, predicate.Hops, aliases),
		Name:  predicate.Column.DBName,
	}

	switch predicate.Op {
	case query.OpEq:
		return clause.Eq{Column: column, Value: predicate.Value}, nil
	case query.OpNeq:
		return clause.Neq{Column: column, Value: predicate.Value}, nil
	case query.OpLt:
		return clause.Lt{Column: column, Value: predicate.Value}, nil
	case query.OpLte:
		return clause.Lte{Column: column, Value: predicate.Value}, nil
	case query.OpGt:
		return clause.Gt{Column: column, Value: predicate.Value}, nil
	case query.OpGte:
		return clause.Gte{Column: column, Value: predicate.Value}, nil
	case query.OpIn, query.OpNotIn:
		values, ok := predicate.Value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s requires a list, got %T", query.ErrInvalidOperatorValue, predicate.Op, predicate.Value)
		}
		return clause.IN{Column: column, Values: values, Not: predicate.Op == query.OpNotIn}, nil
	case query.OpLike:
		return clause.Like{Column: column, Value: predicate.Value}, nil
	case query.OpILike:
		return clause.Like{Column: column, Value: predicate.Value, IgnoreCase: true}, nil
	case query.OpIsNull:
		if isNull, _ := predicate.Value.(bool); isNull {
			return clause.Eq{Column: column}, nil
		}
		return clause.Neq{Column: column}, nil
	case query.OpContains:
		return clause.Like{Column: column, Value: "%" + fmt.Sprint(predicate.Value) + "%"}, nil
	case query.OpStartsWith:
		return clause.Like{Column: column, Value: fmt.Sprint(predicate.Value) + "%"}, nil
	case query.OpEndsWith:
		return clause.Like{Column: column, Value: "%" + fmt.Sprint(predicate.Value)}, nil
	}

	return nil, fmt.Errorf("%w: %v", query.ErrUnsupportedOperator, predicate.Op)
}
