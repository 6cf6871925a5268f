package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cricketbook/internal/matches/db"
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

	_, err = bunDB.NewCreateTable().Model((*models.Match)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create matches table: %v", err)
	}

	return &db.DB{Bun: bunDB}
}

func newMatch(id string, date time.Time, status models.MatchStatus) *models.Match {
	return &models.Match{
		ID:             id,
		Team1:          "India",
		Team2:          "Australia",
		MatchType:      models.MatchT20,
		Venue:          "Wankhede Stadium",
		Date:           date,
		BasePrice:      1500,
		AvailableSeats: 500,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestListMatchesOrderAndDeletedFilter(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	require.NoError(t, d.CreateMatch(ctx, newMatch("late", base.Add(72*time.Hour), models.MatchActive)))
	require.NoError(t, d.CreateMatch(ctx, newMatch("early", base, models.MatchActive)))
	require.NoError(t, d.CreateMatch(ctx, newMatch("gone", base.Add(24*time.Hour), models.MatchDeleted)))

	active, err := d.ListMatches(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "early", active[0].ID)
	assert.Equal(t, "late", active[1].ID)

	all, err := d.ListMatches(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gone", all[1].ID)
}

func TestGetMatchNotFound(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.GetMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateMatchKeepsStatus(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	m := newMatch("m1", time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC), models.MatchActive)
	require.NoError(t, d.CreateMatch(ctx, m))

	m.Venue = "Eden Gardens"
	m.BasePrice = 2000
	m.Status = models.MatchDeleted
	require.NoError(t, d.UpdateMatch(ctx, m))

	got, err := d.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Eden Gardens", got.Venue)
	assert.Equal(t, int64(2000), got.BasePrice)
	assert.Equal(t, models.MatchActive, got.Status)
}

func TestUpdateMatchStatus(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, d.CreateMatch(ctx, newMatch("m1", time.Now().UTC(), models.MatchActive)))

	require.NoError(t, d.UpdateMatchStatus(ctx, "m1", models.MatchDeleted))
	got, err := d.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, got.Deleted())

	assert.ErrorIs(t, d.UpdateMatchStatus(ctx, "missing", models.MatchDeleted), models.ErrNotFound)
}
