package users

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedUser(t *testing.T, repo *Repository, name, email string, role enums.Role) uuid.UUID {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return user.ID
}

func TestCreateAndFind(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	id := seedUser(t, repo, "Alice", "alice@example.com", enums.RoleAdmin)

	byEmail, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, enums.RoleAdmin, byEmail.Role)

	byID, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)
}

func TestCreateDuplicateEmailFails(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	seedUser(t, repo, "Alice", "alice@example.com", enums.RoleUser)

	_, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Other",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.Error(t, err)
}

func TestListFiltersByRole(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	seedUser(t, repo, "Alice", "alice@example.com", enums.RoleAdmin)
	seedUser(t, repo, "Bob", "bob@example.com", enums.RoleUser)
	seedUser(t, repo, "Cara", "cara@example.com", enums.RoleUser)

	page, err := pagination.Normalize(pagination.Params{Sort: "email"}, map[string]string{"email": "email"}, "email")
	require.NoError(t, err)

	role := enums.RoleUser
	list, total, err := repo.List(context.Background(), &role, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "bob@example.com", list[0].Email)

	all, total, err := repo.List(context.Background(), nil, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	id := seedUser(t, repo, "Alice", "alice@example.com", enums.RoleUser)

	name := "Alice B"
	updated, err := repo.Update(context.Background(), id, UpdateUserDTO{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)

	_, err = repo.Update(context.Background(), uuid.New(), UpdateUserDTO{Name: &name})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), gorm.ErrRecordNotFound)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	id := seedUser(t, repo, "Alice", "alice@example.com", enums.RoleUser)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(context.Background(), id, at))

	user, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
	assert.WithinDuration(t, at, *user.LastLoginAt, time.Second)
}
