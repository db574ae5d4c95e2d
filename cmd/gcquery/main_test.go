package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivancley/gestao-conhecimento-back/models"
	"github.com/ivancley/gestao-conhecimento-back/schema"
)

func TestFindEntity(t *testing.T) {
	registry, err := models.NewRegistry()
	require.NoError(t, err)

	for _, name := range []string{"WebLink", "weblink", "WEBLINK", "Usuario", "usuario"} {
		entity, err := findEntity(registry, name)
		require.NoError(t, err, "lookup %q", name)
		assert.NotNil(t, entity)
	}

	_, err = findEntity(registry, "nope")
	assert.ErrorIs(t, err, schema.ErrEntityNotRegistered)
}
