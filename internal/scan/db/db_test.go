package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cricketbook/internal/models"
	"cricketbook/internal/scan/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	_, err = bunDB.NewCreateTable().Model((*models.ScannedTicket)(nil)).Exec(context.Background())
	require.NoError(t, err)
	return &db.DB{Bun: bunDB}
}

func TestAddAndListScansInOrder(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

	require.NoError(t, d.AddScan(ctx, &models.ScannedTicket{ID: "s2", BookingID: "b1", ScannedBy: "admin", ScannedAt: base.Add(time.Minute)}))
	require.NoError(t, d.AddScan(ctx, &models.ScannedTicket{ID: "s1", BookingID: "b1", ScannedBy: "admin", ScannedAt: base}))
	require.NoError(t, d.AddScan(ctx, &models.ScannedTicket{ID: "s3", BookingID: "b2", ScannedBy: "admin", ScannedAt: base}))

	scans, err := d.ListScans(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, "s1", scans[0].ID)
	assert.Equal(t, "s2", scans[1].ID)

	none, err := d.ListScans(ctx, "b9")
	require.NoError(t, err)
	assert.Empty(t, none)
}
