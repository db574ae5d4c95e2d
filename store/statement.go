package store

import (
	"strings"

	"github.com/ivancley/gestao-conhecimento-back/clause"
)

// Statement renders one SQL statement together with its bind variables.
// It implements clause.Builder; identifiers always go through WriteQuoted
// so no raw client input ever reaches the SQL text.
type Statement struct {
	SQL  strings.Builder
	Vars []interface{}
}

func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

func (stmt *Statement) WriteString(str string) (int, error) {
	return stmt.SQL.WriteString(str)
}

// WriteQuoted write quoted identifier, qualified with its table when present
func (stmt *Statement) WriteQuoted(field interface{}) {
	switch v := field.(type) {
	case clause.Column:
		if v.Table != "" {
			stmt.writeIdent(v.Table)
			stmt.SQL.WriteByte('.')
		}
		stmt.writeIdent(v.Name)
		if v.Alias != "" {
			stmt.SQL.WriteString(" AS ")
			stmt.writeIdent(v.Alias)
		}
	case clause.Table:
		stmt.writeIdent(v.Name)
		if v.Alias != "" {
			stmt.SQL.WriteString(" AS ")
			stmt.writeIdent(v.Alias)
		}
	case string:
		stmt.writeIdent(v)
	}
}

func (stmt *Statement) writeIdent(name string) {
	if name == "*" {
		stmt.SQL.WriteByte('*')
		return
	}
	stmt.SQL.WriteByte('`')
	stmt.SQL.WriteString(name)
	stmt.SQL.WriteByte('`')
}

// AddVar add bind variables; columns are written quoted in place so join
// conditions can compare column to column
func (stmt *Statement) AddVar(values ...interface{}) {
	for idx, value := range values {
		if idx > 0 {
			stmt.SQL.WriteByte(',')
		}
		if column, ok := value.(clause.Column); ok {
			stmt.WriteQuoted(column)
			continue
		}
		stmt.SQL.WriteByte('?')
		stmt.Vars = append(stmt.Vars, value)
	}
}
