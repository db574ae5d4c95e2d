package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/models"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/store"
)

var testDDL = []string{
	`CREATE TABLE usuario (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		flg_ativo BOOLEAN,
		flg_excluido BOOLEAN,
		nome TEXT,
		email TEXT,
		senha TEXT,
		permissoes TEXT
	)`,
	`CREATE TABLE weblink (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		flg_ativo BOOLEAN,
		flg_excluido BOOLEAN,
		weblink TEXT,
		title TEXT,
		resumo TEXT,
		usuario_id TEXT
	)`,
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:", logger.Discard)
	require.NoError(t, err)
	st.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { st.Close() })

	for _, ddl := range testDDL {
		_, err := st.DB().Exec(ddl)
		require.NoError(t, err)
	}
	return st
}

func newTestServices(t *testing.T, planner *query.Planner) (usuarios, weblinks *Service) {
	t.Helper()
	registry, err := models.NewRegistry()
	require.NoError(t, err)
	st := newTestStore(t)

	usuarios, err = New(Config{
		Registry:     registry,
		Entity:       "Usuario",
		Store:        st,
		Planner:      planner,
		Logger:       logger.Discard,
		SearchFields: []string{"nome", "email"},
	})
	require.NoError(t, err)

	weblinks, err = New(Config{
		Registry:     registry,
		Entity:       "WebLink",
		Store:        st,
		Planner:      planner,
		Logger:       logger.Discard,
		SearchFields: []string{"title", "resumo"},
	})
	require.NoError(t, err)
	return usuarios, weblinks
}

func createUsuario(t *testing.T, usuarios *Service, nome, email string) uuid.UUID {
	t.Helper()
	doc, err := usuarios.Create(context.Background(), map[string]interface{}{
		"nome":  nome,
		"email": email,
		"senha": "hash",
	})
	require.NoError(t, err)
	return uuid.MustParse(doc["id"].(string))
}

func TestServiceCreate(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	doc, err := usuarios.Create(ctx, map[string]interface{}{
		"nome":  "Ana",
		"email": "ana@example.com",
		"senha": "hash",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ana", doc["nome"])
	assert.NotEmpty(t, doc["id"])
	// a fresh record comes back with its relationships attached
	assert.Equal(t, []interface{}{}, doc["web_links"])
}

func TestServiceListFilterSortSearch(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	createUsuario(t, usuarios, "Ana", "ana@example.com")
	createUsuario(t, usuarios, "Bruno", "bruno@example.com")

	rows, total, err := usuarios.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = usuarios.List(ctx, ListOptions{
		Params: url.Values{"filter[nome][ilike]": {"%ana%"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Ana", rows[0]["nome"])

	rows, _, err = usuarios.List(ctx, ListOptions{SortBy: "nome", SortDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Bruno", rows[0]["nome"])

	// paging keeps the unpaged total
	rows, total, err = usuarios.List(ctx, ListOptions{SortBy: "nome", Limit: 1, Skip: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bruno", rows[0]["nome"])

	// search folds case
	rows, _, err = usuarios.List(ctx, ListOptions{Search: "BRUNO"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bruno", rows[0]["nome"])

	_, _, err = usuarios.List(ctx, ListOptions{
		Params: url.Values{"filter[nome][bogus]": {"x"}},
	})
	assert.ErrorIs(t, err, query.ErrUnsupportedOperator)
}

func TestServiceSearchFoldsDiacritics(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	createUsuario(t, usuarios, "José", "jose@example.com")
	createUsuario(t, usuarios, "Bruno", "bruno@example.com")

	// accented, folded and differently cased spellings all match the
	// stored accented value
	for _, term := range []string{"José", "jose", "JOSE", "josé"} {
		rows, total, err := usuarios.List(ctx, ListOptions{Search: term})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total, "search %q", term)
		require.Len(t, rows, 1, "search %q", term)
		assert.Equal(t, "José", rows[0]["nome"])
	}

	_, total, err := usuarios.List(ctx, ListOptions{Search: "zzz"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestServiceListThroughToManyKeepsRowsDistinct(t *testing.T) {
	usuarios, weblinks := newTestServices(t, nil)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")
	for _, title := range []string{"Go blog", "Go docs"} {
		_, err := weblinks.Create(ctx, map[string]interface{}{
			"weblink":    "https://go.dev",
			"title":      title,
			"usuario_id": anaID,
		})
		require.NoError(t, err)
	}

	// two matching children must not duplicate the parent row, and the
	// page must agree with the reported total
	rows, total, err := usuarios.List(ctx, ListOptions{
		Params: url.Values{"filter[web_links.title][contains]": {"Go"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0]["nome"])
}

func TestServiceProjection(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	createUsuario(t, usuarios, "Ana", "ana@example.com")

	rows, _, err := usuarios.List(ctx, ListOptions{Select: "nome"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]interface{}{"nome": "Ana"}, rows[0])
}

func TestServiceIncludeAndRelationshipFilter(t *testing.T) {
	usuarios, weblinks := newTestServices(t, nil)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")
	createUsuario(t, usuarios, "Bruno", "bruno@example.com")

	doc, err := weblinks.Create(ctx, map[string]interface{}{
		"weblink":    "https://go.dev",
		"title":      "Go",
		"resumo":     "linguagem",
		"usuario_id": anaID,
	})
	require.NoError(t, err)
	// Create eager loads every relationship
	require.NotNil(t, doc["usuario"])
	assert.Equal(t, "Ana", doc["usuario"].(map[string]interface{})["nome"])

	// nothing is loaded unless asked for
	rows, _, err := weblinks.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["usuario"])

	rows, _, err = weblinks.List(ctx, ListOptions{Include: "usuario"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", rows[0]["usuario"].(map[string]interface{})["nome"])

	// filtering through the relationship joins on demand
	_, total, err := weblinks.List(ctx, ListOptions{
		Params: url.Values{"filter[usuario.nome][ilike]": {"%ana%"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = weblinks.List(ctx, ListOptions{
		Params: url.Values{"filter[usuario.nome][ilike]": {"%bruno%"}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestServiceOwnershipScoping(t *testing.T) {
	usuarios, weblinks := newTestServices(t, nil)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")
	_, err := weblinks.Create(ctx, map[string]interface{}{
		"weblink":    "https://go.dev",
		"title":      "Go",
		"usuario_id": anaID,
	})
	require.NoError(t, err)

	_, total, err := weblinks.List(ctx, ListOptions{UserID: &anaID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	other := uuid.New()
	_, total, err = weblinks.List(ctx, ListOptions{UserID: &other})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestServiceGetByID(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")

	doc, err := usuarios.GetByID(ctx, anaID, GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", doc["nome"])

	_, err = usuarios.GetByID(ctx, uuid.New(), GetOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUpdate(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")

	// unknown keys are dropped, not rejected
	doc, err := usuarios.Update(ctx, anaID, map[string]interface{}{
		"nome":  "Ana Maria",
		"bogus": 1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", doc["nome"])
	assert.Equal(t, "ana@example.com", doc["email"])

	_, err = usuarios.Update(ctx, uuid.New(), map[string]interface{}{"nome": "x"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceSoftDeleteLifecycle(t *testing.T) {
	usuarios, _ := newTestServices(t, nil)
	ctx := context.Background()

	createUsuario(t, usuarios, "Ana", "ana@example.com")
	brunoID := createUsuario(t, usuarios, "Bruno", "bruno@example.com")

	require.NoError(t, usuarios.Delete(ctx, brunoID, nil))

	_, total, err := usuarios.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	rows, total, err := usuarios.GetDeleted(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Bruno", rows[0]["nome"])

	_, err = usuarios.Restore(ctx, brunoID, nil)
	require.NoError(t, err)

	_, total, err = usuarios.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, usuarios.HardDelete(ctx, brunoID, nil))
	_, total, err = usuarios.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	_, total, err = usuarios.GetDeleted(ctx, ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestServiceLoadExclusions(t *testing.T) {
	planner := query.NewPlanner(map[string][]string{"WebLink": {"usuario"}}, logger.Discard)
	usuarios, weblinks := newTestServices(t, planner)
	ctx := context.Background()

	anaID := createUsuario(t, usuarios, "Ana", "ana@example.com")
	_, err := weblinks.Create(ctx, map[string]interface{}{
		"weblink":    "https://go.dev",
		"title":      "Go",
		"usuario_id": anaID,
	})
	require.NoError(t, err)

	// excluded relationships stay suppressed even when included
	rows, _, err := weblinks.List(ctx, ListOptions{Include: "usuario"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["usuario"])
}
