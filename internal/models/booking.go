package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
)

// CanTransition reports whether a booking may move from s to next. The only
// reachable transition is pending -> confirmed.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	return s == BookingPending && next == BookingConfirmed
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID             string        `bun:"id,pk" json:"id" firestore:"-"`
	UserID         string        `bun:"user_id,notnull" json:"userId" firestore:"userId"`
	MatchID        string        `bun:"match_id,notnull" json:"matchId" firestore:"matchId"`
	Seats          []int         `bun:"seats" json:"seats" firestore:"seats"`
	Amount         int64         `bun:"amount,notnull" json:"amount" firestore:"amount"`
	Status         BookingStatus `bun:"status,notnull" json:"status" firestore:"status"`
	PaymentOrderID string        `bun:"payment_order_id,nullzero" json:"paymentOrderId,omitempty" firestore:"paymentOrderId,omitempty"`
	PaymentID      string        `bun:"payment_id,nullzero" json:"paymentId,omitempty" firestore:"paymentId,omitempty"`
	PaymentMethod  string        `bun:"payment_method,nullzero" json:"paymentMethod,omitempty" firestore:"paymentMethod,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,notnull" json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time     `bun:"updated_at,nullzero" json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

func (b Booking) Confirmed() bool {
	return b.Status == BookingConfirmed
}

// BookingDetails is a booking with its match and buyer resolved, as shown on
// the dashboard and in the admin bookings list.
type BookingDetails struct {
	Booking
	Match *Match       `json:"match,omitempty"`
	User  *UserProfile `json:"user,omitempty"`
}
