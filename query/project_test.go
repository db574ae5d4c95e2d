package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":    "u1",
		"nome":  "Ana",
		"senha": "secret",
		"tenant": map[string]interface{}{
			"id":   "t1",
			"nome": "acme",
		},
		"roles": []interface{}{
			map[string]interface{}{"id": "r1", "nome": "admin"},
			map[string]interface{}{"id": "r2", "nome": "editor"},
		},
	}
}

func TestProjectNoTree(t *testing.T) {
	document := testDocument()
	assert.Equal(t, document, Project(document, nil))
	assert.Equal(t, document, Project(document, SelectionTree{}))
}

func TestProjectScalars(t *testing.T) {
	pruned := Project(testDocument(), SelectionTree{"id": true, "nome": true})
	assert.Equal(t, map[string]interface{}{"id": "u1", "nome": "Ana"}, pruned)
}

func TestProjectRoundTrip(t *testing.T) {
	tree, err := ParseSelect("id,[roles].nome")
	require.NoError(t, err)

	pruned := Project(testDocument(), tree)
	assert.Equal(t, map[string]interface{}{
		"id": "u1",
		"roles": []interface{}{
			map[string]interface{}{"nome": "admin"},
			map[string]interface{}{"nome": "editor"},
		},
	}, pruned)
}

func TestProjectNestedObject(t *testing.T) {
	tree, err := ParseSelect("nome,tenant.nome")
	require.NoError(t, err)

	pruned := Project(testDocument(), tree)
	assert.Equal(t, map[string]interface{}{
		"nome":   "Ana",
		"tenant": map[string]interface{}{"nome": "acme"},
	}, pruned)
}

func TestProjectEdgeCases(t *testing.T) {
	// keys absent from the document are simply omitted
	pruned := Project(testDocument(), SelectionTree{"id": true, "ghost": true})
	assert.Equal(t, map[string]interface{}{"id": "u1"}, pruned)

	// a list rule over a non-list value passes it through verbatim
	tree, err := ParseSelect("[nome]")
	require.NoError(t, err)
	pruned = Project(testDocument(), tree)
	assert.Equal(t, map[string]interface{}{"nome": "Ana"}, pruned)

	// a whole list without a nested rule copies every element
	tree, err = ParseSelect("[roles]")
	require.NoError(t, err)
	pruned = Project(testDocument(), tree)
	assert.Equal(t, testDocument()["roles"], pruned["roles"])
}
