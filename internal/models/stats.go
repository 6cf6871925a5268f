package models

import "github.com/shopspring/decimal"

type Stats struct {
	TotalRevenue      int64           `json:"totalRevenue"`
	TotalTicketsSold  int             `json:"totalTicketsSold"`
	ActiveMatches     int             `json:"activeMatches"`
	ConfirmedBookings int             `json:"confirmedBookings"`
	AvgBookingValue   decimal.Decimal `json:"avgBookingValue"`
	Sales             []MatchSales    `json:"sales"`
}

// MatchSales is the per-match breakdown shown next to the headline numbers.
type MatchSales struct {
	MatchID     string `json:"matchId"`
	MatchName   string `json:"matchName"`
	Deleted     bool   `json:"deleted"`
	Bookings    int    `json:"bookings"`
	TicketsSold int    `json:"ticketsSold"`
	Revenue     int64  `json:"revenue"`
}
