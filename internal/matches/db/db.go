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

// ListMatches returns matches ordered by date, soonest first. Deleted matches
// are only included when asked for.
func (d *DB) ListMatches(ctx context.Context, includeDeleted bool) ([]models.Match, error) {
	var matches []models.Match
	q := d.Bun.NewSelect().Model(&matches)
	if !includeDeleted {
		q = q.Where("status != ?", models.MatchDeleted)
	}
	if err := q.Order("date ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// GetMatch fetches one match by id, deleted or not.
func (d *DB) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	err := d.Bun.NewSelect().
		Model(&match).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return &match, nil
}

func (d *DB) CreateMatch(ctx context.Context, match *models.Match) error {
	if _, err := d.Bun.NewInsert().Model(match).Exec(ctx); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// UpdateMatch writes the descriptive fields of a match. Status and createdAt
// are left untouched.
func (d *DB) UpdateMatch(ctx context.Context, match *models.Match) error {
	res, err := d.Bun.NewUpdate().
		Model(match).
		Column("team1", "team1_flag", "team2", "team2_flag", "match_type", "venue", "date", "base_price", "available_seats").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update match %s: %w", match.ID, err)
	}
	return expectOne(res, match.ID)
}

func (d *DB) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Match)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update match %s status: %w", id, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("match %s: %w", id, models.ErrNotFound)
	}
	return nil
}
