package clause

import "strconv"

// Limit limit clause
type Limit struct {
	Limit  int
	Offset int
}

// Build build limit clause
func (limit Limit) Build(builder Builder) {
	if limit.Limit > 0 {
		builder.WriteString("LIMIT ")
		builder.WriteString(strconv.Itoa(limit.Limit))
	} else if limit.Offset > 0 {
		// sqlite rejects a bare OFFSET; -1 means no limit
		builder.WriteString("LIMIT -1")
	}
	if limit.Offset > 0 {
		builder.WriteString(" OFFSET ")
		builder.WriteString(strconv.Itoa(limit.Offset))
	}
}
