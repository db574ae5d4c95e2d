package schema

// Cardinality relationship cardinality
type Cardinality string

const (
	// One the field holds a single related record
	One Cardinality = "one"
	// Many the field holds a collection of related records
	Many Cardinality = "many"
)

// Relationship connects a source entity to a target entity. ForeignKey
// and References carry the join condition: for a to-one relationship the
// foreign key lives on the source entity, for a to-many it lives on the
// target.
type Relationship struct {
	Name        string
	Cardinality Cardinality
	Entity      *Entity // source
	Target      *Entity
	ForeignKey  *Column
	References  *Column
}
