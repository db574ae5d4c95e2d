package clause

// OrderByColumn one ordering expression
type OrderByColumn struct {
	Column Column
	Desc   bool
}

// OrderBy order by clause
type OrderBy struct {
	Columns []OrderByColumn
}

// Build build order by clause
func (orderBy OrderBy) Build(builder Builder) {
	for idx, column := range orderBy.Columns {
		if idx > 0 {
			builder.WriteByte(',')
		}

		builder.WriteQuoted(column.Column)
		if column.Desc {
			builder.WriteString(" DESC")
		}
	}
}
