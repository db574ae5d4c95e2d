package schema

import (
	"errors"
)

var (
	// ErrUnsupportedModel unsupported model value when building an entity
	ErrUnsupportedModel = errors.New("unsupported model type")
	// ErrEntityNotRegistered entity was never registered
	ErrEntityNotRegistered = errors.New("entity not registered")
	// ErrUnknownField field specifier names no column or relationship
	ErrUnknownField = errors.New("unknown field")
	// ErrRelationshipAsTerminal path ends on a relationship, or continues past a column
	ErrRelationshipAsTerminal = errors.New("relationship cannot terminate a field specifier")
	// ErrUnmappedRelationship first hop is not present in the caller supplied relationship map
	ErrUnmappedRelationship = errors.New("relationship not mapped for base entity")
)
