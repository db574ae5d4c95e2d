package clause

// Expression expression interface
type Expression interface {
	Build(builder Builder)
}

// Builder builder interface
type Builder interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
	WriteQuoted(field interface{})
	AddVar(values ...interface{})
}

// Column quote with name
type Column struct {
	Table string
	Name  string
	Alias string
}

// Table quote with name
type Table struct {
	Name  string
	Alias string
}

// Expr raw expression
type Expr struct {
	SQL  string
	Vars []interface{}
}

// Build build raw expression
func (expr Expr) Build(builder Builder) {
	builder.WriteString(expr.SQL)
	if len(expr.Vars) > 0 {
		builder.AddVar(expr.Vars...)
	}
}
