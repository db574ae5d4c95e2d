package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDBName(t *testing.T) {
	maps := map[string]string{
		"":            "",
		"X":           "x",
		"ThisIsATest": "this_is_a_test",
		"PFCandidate": "pf_candidate",
		"AbcAndJkl":   "abc_and_jkl",
		"EmployeeID":  "employee_id",
		"SKU_ID":      "sku_id",
		"FieldX":      "field_x",
		"HTTPAndSMTP": "http_and_smtp",
		"UUID":        "uuid",
		"HTTPURL":     "http_url",
		"UsuarioID":   "usuario_id",
		"WebLinks":    "web_links",
		"FlgExcluido": "flg_excluido",
	}

	for name, want := range maps {
		assert.Equal(t, want, toDBName(name), "toDBName(%q)", name)
	}
}

func TestNamingStrategyTableName(t *testing.T) {
	tests := []struct {
		strategy NamingStrategy
		name     string
		want     string
	}{
		{NamingStrategy{}, "Usuario", "usuarios"},
		{NamingStrategy{}, "WebLink", "web_links"},
		{NamingStrategy{SingularTable: true}, "Usuario", "usuario"},
		{NamingStrategy{TablePrefix: "gc_"}, "Usuario", "gc_usuarios"},
		{NamingStrategy{TablePrefix: "gc_", SingularTable: true}, "WebLink", "gc_web_link"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.strategy.TableName(tt.name))
	}
}

func TestNamingStrategyColumnName(t *testing.T) {
	ns := NamingStrategy{}
	assert.Equal(t, "created_at", ns.ColumnName("CreatedAt"))
	assert.Equal(t, "usuario_id", ns.ColumnName("UsuarioID"))
}
