package models

// TicketPayload is the content encoded into a ticket's QR code. Timestamp is
// the issue time in Unix milliseconds.
type TicketPayload struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	MatchID   string `json:"matchId"`
	Seats     []int  `json:"seats"`
	Timestamp int64  `json:"timestamp"`
}
