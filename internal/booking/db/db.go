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

func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := d.Bun.NewInsert().Model(booking).Exec(ctx); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (d *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return &booking, nil
}

// SetPaymentOrder records the gateway's order reference on a booking.
func (d *DB) SetPaymentOrder(ctx context.Context, id, orderID string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_order_id = ?", orderID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set payment order on booking %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ConfirmBooking writes the confirmation fields, but only while the booking is
// still pending. A booking that is no longer pending yields
// ErrInvalidTransition.
func (d *DB) ConfirmBooking(ctx context.Context, booking *models.Booking) error {
	res, err := d.Bun.NewUpdate().
		Model(booking).
		Column("status", "payment_id", "payment_method", "updated_at").
		Where("id = ?", booking.ID).
		Where("status = ?", models.BookingPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("confirm booking %s: %w", booking.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s is not pending: %w", booking.ID, models.ErrInvalidTransition)
	}
	return nil
}

// ListBookingsByUser returns a user's bookings in a status, newest first.
func (d *DB) ListBookingsByUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}

// ListBookingsByStatus returns all bookings in a status, newest first.
func (d *DB) ListBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s bookings: %w", status, err)
	}
	return bookings, nil
}
