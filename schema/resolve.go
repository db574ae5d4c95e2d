package schema

import (
	"fmt"
	"strings"
)

// ResolvedPath is the outcome of resolving a dotted field specifier: the
// terminal column, the entity that owns it, and the ordered relationship
// hops needed to reach it from the base entity.
type ResolvedPath struct {
	Column *Column
	Entity *Entity
	Hops   []*Relationship
}

// ResolvePath walks a dotted field specifier such as "usuario.nome" from
// the base entity, advancing one entity per relationship hop. The first
// hop must be present in the caller supplied relationship map; hops past
// it are resolved against each target entity's own relationship set, so
// the base entity controls what is reachable while deeper traversal stays
// schema driven.
func ResolvePath(base *Entity, specifier string, allowed map[string]*Relationship) (ResolvedPath, error) {
	var path ResolvedPath
	parts := strings.Split(specifier, ".")
	current := base

	for i, part := range parts {
		last := i == len(parts)-1

		if relation := current.Relationship(part); relation != nil {
			if last {
				return path, fmt.Errorf("%w: %q in %q names a relationship, specify a field inside it (ex: %q)",
					ErrRelationshipAsTerminal, part, specifier, specifier+".id")
			}
			if i == 0 {
				mapped, ok := allowed[part]
				if !ok {
					return path, fmt.Errorf("%w: %q is not mapped for %v", ErrUnmappedRelationship, part, base.Name)
				}
				relation = mapped
			}
			path.Hops = append(path.Hops, relation)
			current = relation.Target
			continue
		}

		if column := current.Column(part); column != nil {
			if !last {
				return path, fmt.Errorf("%w: %q in %q is a column but the specifier continues",
					ErrRelationshipAsTerminal, part, specifier)
			}
			path.Column = column
			path.Entity = current
			return path, nil
		}

		return path, fmt.Errorf("%w: %v has no column or relationship %q (in %q)",
			ErrUnknownField, current.Name, part, specifier)
	}

	return path, fmt.Errorf("%w: empty field specifier", ErrUnknownField)
}
