package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathBaseColumn(t *testing.T) {
	registry := newTestRegistry(t)
	book, _ := registry.Entity("Book")

	path, err := ResolvePath(book, "title", book.Relations)
	require.NoError(t, err)
	assert.Equal(t, "title", path.Column.DBName)
	assert.Same(t, book, path.Entity)
	assert.Empty(t, path.Hops)
}

func TestResolvePathOneHop(t *testing.T) {
	registry := newTestRegistry(t)
	book, _ := registry.Entity("Book")
	author, _ := registry.Entity("Author")

	path, err := ResolvePath(book, "author.name", book.Relations)
	require.NoError(t, err)
	assert.Equal(t, "name", path.Column.DBName)
	assert.Same(t, author, path.Entity)
	require.Len(t, path.Hops, 1)
	assert.Same(t, book.Relationship("author"), path.Hops[0])
}

func TestResolvePathDeep(t *testing.T) {
	registry := newTestRegistry(t)
	review, _ := registry.Entity("Review")

	// only the first hop is checked against the allowed map, deeper hops
	// resolve against each target's own relationships
	path, err := ResolvePath(review, "book.author.name", review.Relations)
	require.NoError(t, err)
	assert.Equal(t, "name", path.Column.DBName)
	require.Len(t, path.Hops, 2)
	assert.Equal(t, "book", path.Hops[0].Name)
	assert.Equal(t, "author", path.Hops[1].Name)
}

func TestResolvePathErrors(t *testing.T) {
	registry := newTestRegistry(t)
	book, _ := registry.Entity("Book")

	tests := []struct {
		name      string
		specifier string
		allowed   map[string]*Relationship
		want      error
	}{
		{"unknown field", "nope", book.Relations, ErrUnknownField},
		{"unknown nested field", "author.nope", book.Relations, ErrUnknownField},
		{"relationship as terminal", "author", book.Relations, ErrRelationshipAsTerminal},
		{"column with continuation", "title.x", book.Relations, ErrRelationshipAsTerminal},
		{"unmapped first hop", "author.name", map[string]*Relationship{}, ErrUnmappedRelationship},
		{"empty specifier", "", book.Relations, ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePath(book, tt.specifier, tt.allowed)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
