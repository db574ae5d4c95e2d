package clause

// Eq equal to for where
type Eq struct {
	Column interface{}
	Value  interface{}
}

func (eq Eq) Build(builder Builder) {
	builder.WriteQuoted(eq.Column)

	if eq.Value == nil {
		builder.WriteString(" IS NULL")
	} else {
		builder.WriteString(" = ")
		builder.AddVar(eq.Value)
	}
}

// Neq not equal to for where
type Neq struct {
	Column interface{}
	Value  interface{}
}

func (neq Neq) Build(builder Builder) {
	builder.WriteQuoted(neq.Column)

	if neq.Value == nil {
		builder.WriteString(" IS NOT NULL")
	} else {
		builder.WriteString(" <> ")
		builder.AddVar(neq.Value)
	}
}

// Gt greater than for where
type Gt struct {
	Column interface{}
	Value  interface{}
}

func (gt Gt) Build(builder Builder) {
	builder.WriteQuoted(gt.Column)
	builder.WriteString(" > ")
	builder.AddVar(gt.Value)
}

// Gte greater than or equal to for where
type Gte struct {
	Column interface{}
	Value  interface{}
}

func (gte Gte) Build(builder Builder) {
	builder.WriteQuoted(gte.Column)
	builder.WriteString(" >= ")
	builder.AddVar(gte.Value)
}

// Lt less than for where
type Lt struct {
	Column interface{}
	Value  interface{}
}

func (lt Lt) Build(builder Builder) {
	builder.WriteQuoted(lt.Column)
	builder.WriteString(" < ")
	builder.AddVar(lt.Value)
}

// Lte less than or equal to for where
type Lte struct {
	Column interface{}
	Value  interface{}
}

func (lte Lte) Build(builder Builder) {
	builder.WriteQuoted(lte.Column)
	builder.WriteString(" <= ")
	builder.AddVar(lte.Value)
}

// IN whether a value is within a set of values
type IN struct {
	Column interface{}
	Values []interface{}
	Not    bool
}

func (in IN) Build(builder Builder) {
	builder.WriteQuoted(in.Column)

	if len(in.Values) == 0 {
		// x IN () is not valid SQL; an empty set matches nothing.
		if in.Not {
			builder.WriteString(" NOT IN (NULL)")
		} else {
			builder.WriteString(" IN (NULL)")
		}
		return
	}

	if in.Not {
		builder.WriteString(" NOT IN (")
	} else {
		builder.WriteString(" IN (")
	}
	builder.AddVar(in.Values...)
	builder.WriteByte(')')
}

// FoldedLike matches with both sides passed through the fold SQL
// function, which lower-cases and strips combining marks. The driver
// must have fold registered.
type FoldedLike struct {
	Column interface{}
	Value  interface{}
}

func (like FoldedLike) Build(builder Builder) {
	builder.WriteString("fold(")
	builder.WriteQuoted(like.Column)
	builder.WriteString(") LIKE fold(")
	builder.AddVar(like.Value)
	builder.WriteByte(')')
}

// Like whether string matches pattern; IgnoreCase folds case on both sides
type Like struct {
	Column     interface{}
	Value      interface{}
	IgnoreCase bool
}

func (like Like) Build(builder Builder) {
	if like.IgnoreCase {
		builder.WriteString("LOWER(")
		builder.WriteQuoted(like.Column)
		builder.WriteString(") LIKE LOWER(")
		builder.AddVar(like.Value)
		builder.WriteByte(')')
		return
	}

	builder.WriteQuoted(like.Column)
	builder.WriteString(" LIKE ")
	builder.AddVar(like.Value)
}
