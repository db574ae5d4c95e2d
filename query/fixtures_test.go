package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ivancley/gestao-conhecimento-back/schema"
)

type Tenant struct {
	ID   uuid.UUID `db:"column:id;primaryKey"`
	Nome string    `db:"column:nome"`
}

type Role struct {
	ID     uuid.UUID `db:"column:id;primaryKey"`
	Nome   string    `db:"column:nome"`
	UserID uuid.UUID `db:"column:user_id"`

	User *User `rel:"foreignKey:user_id;references:id"`
}

type User struct {
	ID        uuid.UUID  `db:"column:id;primaryKey"`
	Nome      string     `db:"column:nome"`
	Email     string     `db:"column:email"`
	Age       int64      `db:"column:age"`
	Ativo     bool       `db:"column:ativo"`
	CreatedAt time.Time  `db:"column:created_at"`
	TenantID  *uuid.UUID `db:"column:tenant_id"`

	Tenant *Tenant `rel:"foreignKey:tenant_id;references:id"`
	Roles  []Role  `rel:"foreignKey:user_id;references:id"`
}

func userEntity(t *testing.T) *schema.Entity {
	t.Helper()
	registry, err := schema.NewRegistry(Tenant{}, Role{}, User{})
	require.NoError(t, err)
	user, err := registry.Entity("User")
	require.NoError(t, err)
	return user
}
