package db

import (
	"context"
	"fmt"

	"cricketbook/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// AddScan appends a row to the scan log. Rows are never updated.
func (d *DB) AddScan(ctx context.Context, scan *models.ScannedTicket) error {
	if _, err := d.Bun.NewInsert().Model(scan).Exec(ctx); err != nil {
		return fmt.Errorf("add scan for booking %s: %w", scan.BookingID, err)
	}
	return nil
}

// ListScans returns every scan of a booking, oldest first.
func (d *DB) ListScans(ctx context.Context, bookingID string) ([]models.ScannedTicket, error) {
	var scans []models.ScannedTicket
	err := d.Bun.NewSelect().
		Model(&scans).
		Where("booking_id = ?", bookingID).
		Order("scanned_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scans for booking %s: %w", bookingID, err)
	}
	return scans, nil
}
