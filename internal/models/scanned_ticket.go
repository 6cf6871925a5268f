package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ScannedTicket is one row of the append-only gate scan log.
type ScannedTicket struct {
	bun.BaseModel `bun:"table:scanned_tickets"`

	ID        string    `bun:"id,pk" json:"id" firestore:"-"`
	BookingID string    `bun:"booking_id,notnull" json:"bookingId" firestore:"bookingId"`
	ScannedBy string    `bun:"scanned_by,notnull" json:"scannedBy" firestore:"scannedBy"`
	ScannedAt time.Time `bun:"scanned_at,notnull" json:"scannedAt" firestore:"scannedAt"`
}
