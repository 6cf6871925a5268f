package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbook/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateUser(ctx context.Context, user *models.UserProfile) error {
	if _, err := d.Bun.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return d.getUser(ctx, "id = ?", id)
}

// GetUserByEmail expects an already normalized address.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	return d.getUser(ctx, "email = ?", email)
}

func (d *DB) getUser(ctx context.Context, where string, arg string) (*models.UserProfile, error) {
	var user models.UserProfile
	err := d.Bun.NewSelect().
		Model(&user).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", arg, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (d *DB) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.UserProfile)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user %s role: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return nil
}
