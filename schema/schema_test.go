package schema

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestBase struct {
	ID        uuid.UUID `db:"column:id;primaryKey"`
	CreatedAt time.Time `db:"column:created_at"`
}

type Author struct {
	TestBase
	Name  string  `db:"column:name"`
	Email *string `db:"column:email"`

	Books []Book `rel:"foreignKey:author_id;references:id"`
}

type Book struct {
	TestBase
	Title    string    `db:"column:title"`
	Pages    int64     `db:"column:pages"`
	AuthorID uuid.UUID `db:"column:author_id"`
	Draft    string    `db:"-"`

	Author  *Author  `rel:"foreignKey:author_id;references:id"`
	Reviews []Review `rel:"foreignKey:book_id;references:id"`
}

func (Book) TableName() string { return "book" }

type Review struct {
	TestBase
	Rating int64     `db:"column:rating"`
	BookID uuid.UUID `db:"column:book_id"`

	Book *Book `rel:"foreignKey:book_id;references:id"`
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := NewRegistry(Author{}, Book{}, Review{})
	require.NoError(t, err)
	return registry
}

func TestRegistryEntities(t *testing.T) {
	registry := newTestRegistry(t)

	author, err := registry.Entity("Author")
	require.NoError(t, err)
	assert.Equal(t, "authors", author.Table)

	// Tabler overrides the derived name
	book, err := registry.Entity("Book")
	require.NoError(t, err)
	assert.Equal(t, "book", book.Table)

	_, err = registry.Entity("Ghost")
	assert.ErrorIs(t, err, ErrEntityNotRegistered)

	names := []string{}
	for _, entity := range registry.Entities() {
		names = append(names, entity.Name)
	}
	assert.Equal(t, []string{"Author", "Book", "Review"}, names)
}

func TestRegistryColumns(t *testing.T) {
	registry := newTestRegistry(t)
	book, err := registry.Entity("Book")
	require.NoError(t, err)

	// embedded columns are promoted
	require.NotNil(t, book.PrimaryColumn)
	assert.Equal(t, "id", book.PrimaryColumn.DBName)
	assert.True(t, book.PrimaryColumn.PrimaryKey)
	assert.Equal(t, UUID, book.PrimaryColumn.DataType)
	assert.NotNil(t, book.Column("created_at"))

	title := book.Column("title")
	require.NotNil(t, title)
	assert.Equal(t, String, title.DataType)
	assert.Equal(t, Int, book.Column("pages").DataType)

	// db:"-" fields never become columns
	assert.Nil(t, book.Column("draft"))
	// relationship fields never become columns
	assert.Nil(t, book.Column("author"))

	author, err := registry.Entity("Author")
	require.NoError(t, err)
	email := author.Column("email")
	require.NotNil(t, email)
	assert.True(t, email.Nullable)
	assert.Equal(t, String, email.DataType)

	// lookup by struct field name also works
	assert.Same(t, title, book.Column("Title"))
}

func TestRegistryRelationships(t *testing.T) {
	registry := newTestRegistry(t)
	author, _ := registry.Entity("Author")
	book, _ := registry.Entity("Book")

	assert.Equal(t, []string{"books"}, author.RelationshipNames())
	assert.Equal(t, []string{"author", "reviews"}, book.RelationshipNames())

	books := author.Relationship("books")
	require.NotNil(t, books)
	assert.Equal(t, Many, books.Cardinality)
	assert.Same(t, author, books.Entity)
	assert.Same(t, book, books.Target)
	assert.Equal(t, "author_id", books.ForeignKey.DBName)
	assert.Equal(t, "id", books.References.DBName)

	rel := book.Relationship("author")
	require.NotNil(t, rel)
	assert.Equal(t, One, rel.Cardinality)
	assert.Same(t, author, rel.Target)
	assert.Equal(t, "author_id", rel.ForeignKey.DBName)

	assert.Nil(t, book.Relationship("ghost"))
}

func TestRegistryErrors(t *testing.T) {
	_, err := NewRegistry(42)
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	type Stray struct {
		ID   uuid.UUID `db:"column:id;primaryKey"`
		Book *Book     `rel:"foreignKey:book_id;references:id"`
	}
	// relationship target was never registered
	_, err = NewRegistry(Stray{})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestParseTagSetting(t *testing.T) {
	settings := parseTagSetting("column:usuario_id;primaryKey")
	assert.Equal(t, "usuario_id", settings["COLUMN"])
	assert.Equal(t, "PRIMARYKEY", settings["PRIMARYKEY"])

	settings = parseTagSetting("foreignKey:usuario_id;references:id")
	assert.Equal(t, "usuario_id", settings["FOREIGNKEY"])
	assert.Equal(t, "id", settings["REFERENCES"])
}
