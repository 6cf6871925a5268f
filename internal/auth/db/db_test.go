package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cricketbook/internal/auth/db"
	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	if _, err := bunDB.NewCreateTable().Model((*models.UserProfile)(nil)).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to create users table: %v", err)
	}
	return &db.DB{Bun: bunDB}
}

func TestUserLookups(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	user := &models.UserProfile{
		ID: "u1", Email: "fan@example.com", Name: "Fan", Phone: "+91 98765 43210",
		Role: models.RoleUser, PasswordHash: "hash", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, d.CreateUser(ctx, user))

	byID, err := d.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)

	byEmail, err := d.GetUserByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = d.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateEmailRejected(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.CreateUser(ctx, &models.UserProfile{ID: "u1", Email: "a@b.c", Name: "A", Role: models.RoleUser, PasswordHash: "x", CreatedAt: time.Now()}))
	assert.Error(t, d.CreateUser(ctx, &models.UserProfile{ID: "u2", Email: "a@b.c", Name: "B", Role: models.RoleUser, PasswordHash: "y", CreatedAt: time.Now()}))
}

func TestUpdateUserRole(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, d.CreateUser(ctx, &models.UserProfile{ID: "u1", Email: "a@b.c", Name: "A", Role: models.RoleUser, PasswordHash: "x", CreatedAt: time.Now()}))

	require.NoError(t, d.UpdateUserRole(ctx, "u1", models.RoleAdmin))
	u, err := d.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	assert.ErrorIs(t, d.UpdateUserRole(ctx, "ghost", models.RoleAdmin), models.ErrNotFound)
}
