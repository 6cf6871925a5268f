package store_test

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	"cricketbook/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Load()
	cfg.Store.Driver = "mongo"

	_, err := store.Open(context.Background(), cfg, logger.New(io.Discard))
	assert.ErrorContains(t, err, `unknown STORE_DRIVER "mongo"`)
}

func TestFromBunSharesOneDatabase(t *testing.T) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	repos := store.FromBun(bun.NewDB(sqldb, sqlitedialect.New()))
	defer repos.Close()

	ctx := context.Background()
	for _, model := range []interface{}{(*models.Match)(nil), (*models.Booking)(nil)} {
		_, err := repos.Bun.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	now := time.Now().UTC()
	require.NoError(t, repos.Matches.CreateMatch(ctx, &models.Match{ID: "m1", Team1: "India", Team2: "Australia", MatchType: models.MatchT20, Venue: "Wankhede Stadium, Mumbai", Date: now, BasePrice: 1500, Status: models.MatchActive, CreatedAt: now}))
	require.NoError(t, repos.Bookings.CreateBooking(ctx, &models.Booking{ID: "b1", UserID: "u1", MatchID: "m1", Seats: []int{1}, Amount: 1500, Status: models.BookingPending, CreatedAt: now}))

	m, err := repos.Matches.GetMatch(ctx, "m1")
	require.NoError(t, err)
	b, err := repos.Bookings.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, b.MatchID)
}
