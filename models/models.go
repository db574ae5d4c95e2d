package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivancley/gestao-conhecimento-back/schema"
)

// Base carries the audit and soft delete columns shared by every table.
type Base struct {
	ID          uuid.UUID `db:"column:id;primaryKey"`
	CreatedAt   time.Time `db:"column:created_at"`
	UpdatedAt   time.Time `db:"column:updated_at"`
	FlgAtivo    bool      `db:"column:flg_ativo"`
	FlgExcluido bool      `db:"column:flg_excluido"`
}

// Usuario is a platform account.
type Usuario struct {
	Base
	Nome       string `db:"column:nome"`
	Email      string `db:"column:email"`
	Senha      string `db:"column:senha"`
	Permissoes string `db:"column:permissoes"` // JSON-encoded list of permission names

	WebLinks []WebLink `rel:"foreignKey:usuario_id;references:id"`
}

func (Usuario) TableName() string { return "usuario" }

// WebLink is a saved link, scraped and summarized out of band.
type WebLink struct {
	Base
	Weblink   string    `db:"column:weblink"`
	Title     string    `db:"column:title"`
	Resumo    string    `db:"column:resumo"`
	UsuarioID uuid.UUID `db:"column:usuario_id"`

	Usuario *Usuario `rel:"foreignKey:usuario_id;references:id"`
}

func (WebLink) TableName() string { return "weblink" }

// PasswordResetToken is a single-use credential for password recovery.
type PasswordResetToken struct {
	Base
	UsuarioID uuid.UUID `db:"column:usuario_id"`
	Token     string    `db:"column:token"`
	ExpiresAt time.Time `db:"column:expires_at"`
	Used      bool      `db:"column:used"`

	Usuario *Usuario `rel:"foreignKey:usuario_id;references:id"`
}

func (PasswordResetToken) TableName() string { return "password_reset_token" }

// Conhecimento is one retrievable knowledge chunk with its embedding.
type Conhecimento struct {
	ID        uuid.UUID `db:"column:id;primaryKey"`
	Title     string    `db:"column:title"`
	Context   string    `db:"column:context"`
	Content   string    `db:"column:content"`
	Embedding []byte    `db:"column:embedding"`
}

func (Conhecimento) TableName() string { return "conhecimento" }

// All returns every mapped model, in registration order.
func All() []interface{} {
	return []interface{}{
		Usuario{},
		WebLink{},
		PasswordResetToken{},
		Conhecimento{},
	}
}

// NewRegistry builds the schema registry for every mapped model.
func NewRegistry() (*schema.Registry, error) {
	return schema.NewRegistry(All()...)
}
