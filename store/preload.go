package store

import (
	"context"
	"fmt"

	"github.com/ivancley/gestao-conhecimento-back/clause"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/schema"
)

// LoadRelated attaches eager loaded relationships to the result rows,
// one batched query per loaded relationship rather than a join, so the
// primary result set never multiplies. Suppressed relationships are left
// with an explicit empty value so serialized documents keep a stable
// shape.
func (s *Store) LoadRelated(ctx context.Context, base *schema.Entity, rows []map[string]interface{}, plan query.LoadPlan) error {
	for _, name := range base.RelationshipNames() {
		relation := base.Relationship(name)
		if relation.Cardinality == schema.Many {
			for _, row := range rows {
				row[name] = []interface{}{}
			}
		} else {
			for _, row := range rows {
				row[name] = nil
			}
		}
	}

	for _, name := range plan.Loaded() {
		relation := base.Relationship(name)
		if relation == nil {
			continue
		}
		if err := s.loadRelationship(ctx, relation, rows); err != nil {
			return fmt.Errorf("load %v.%v: %w", base.Name, name, err)
		}
	}
	return nil
}

func (s *Store) loadRelationship(ctx context.Context, relation *schema.Relationship, rows []map[string]interface{}) error {
	// key columns for the batched lookup: to-one keys the source by its
	// foreign key, to-many keys the target by its foreign key
	sourceColumn, targetColumn := relation.ForeignKey, relation.References
	if relation.Cardinality == schema.Many {
		sourceColumn, targetColumn = relation.References, relation.ForeignKey
	}

	seen := map[interface{}]bool{}
	keys := []interface{}{}
	for _, row := range rows {
		key := row[sourceColumn.DBName]
		if key == nil || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}

	stmt := &Statement{}
	stmt.WriteString("SELECT ")
	stmt.WriteQuoted(clause.Column{Table: relation.Target.Table, Name: "*"})
	stmt.WriteString(" FROM ")
	stmt.WriteQuoted(clause.Table{Name: relation.Target.Table})
	stmt.WriteString(" WHERE ")
	clause.IN{
		Column: clause.Column{Table: relation.Target.Table, Name: targetColumn.DBName},
		Values: keys,
	}.Build(stmt)

	s.log.Debug("load related: %s %v", stmt.SQL.String(), stmt.Vars)
	related, err := s.db.QueryContext(ctx, stmt.SQL.String(), stmt.Vars...)
	if err != nil {
		return err
	}
	defer related.Close()

	documents, err := scanRows(related)
	if err != nil {
		return err
	}

	index := map[interface{}][]map[string]interface{}{}
	for _, document := range documents {
		key := document[targetColumn.DBName]
		index[key] = append(index[key], document)
	}

	for _, row := range rows {
		matches := index[row[sourceColumn.DBName]]
		if relation.Cardinality == schema.Many {
			list := make([]interface{}, 0, len(matches))
			for _, match := range matches {
				list = append(list, match)
			}
			row[relation.Name] = list
			continue
		}
		if len(matches) > 0 {
			row[relation.Name] = matches[0]
		}
	}
	return nil
}
