package analytics

import (
	"context"
	"sort"

	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/shopspring/decimal"
)

type BookingLister interface {
	ListBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
}

type MatchLister interface {
	ListMatches(ctx context.Context, includeDeleted bool) ([]models.Match, error)
}

// AnalyticsService computes the admin dashboard figures from the current
// bookings and matches. Nothing is cached; every call reads both collections.
type AnalyticsService struct {
	Bookings BookingLister
	Matches  MatchLister
	logger   *logger.Logger
}

func NewAnalyticsService(bookings BookingLister, matches MatchLister, logger *logger.Logger) *AnalyticsService {
	return &AnalyticsService{Bookings: bookings, Matches: matches, logger: logger}
}

func (s *AnalyticsService) Stats(ctx context.Context) (*models.Stats, error) {
	bookings, err := s.Bookings.ListBookingsByStatus(ctx, models.BookingConfirmed)
	if err != nil {
		s.logger.Error("ANALYTICS", "Failed to load confirmed bookings: "+err.Error())
		return nil, err
	}
	matches, err := s.Matches.ListMatches(ctx, true)
	if err != nil {
		s.logger.Error("ANALYTICS", "Failed to load matches: "+err.Error())
		return nil, err
	}
	stats := Compute(bookings, matches)
	return &stats, nil
}

// Compute aggregates confirmed bookings. Pending bookings are ignored even if
// passed in. Sales are listed for every active match and for deleted matches
// that sold tickets, highest revenue first.
func Compute(bookings []models.Booking, matches []models.Match) models.Stats {
	stats := models.Stats{AvgBookingValue: decimal.Zero}

	byMatch := make(map[string]*models.MatchSales, len(matches))
	for _, m := range matches {
		if !m.Deleted() {
			stats.ActiveMatches++
		}
		byMatch[m.ID] = &models.MatchSales{MatchID: m.ID, MatchName: m.Name(), Deleted: m.Deleted()}
	}

	for _, b := range bookings {
		if !b.Confirmed() {
			continue
		}
		stats.ConfirmedBookings++
		stats.TotalRevenue += b.Amount
		stats.TotalTicketsSold += len(b.Seats)

		sales, ok := byMatch[b.MatchID]
		if !ok {
			sales = &models.MatchSales{MatchID: b.MatchID, MatchName: b.MatchID, Deleted: true}
			byMatch[b.MatchID] = sales
		}
		sales.Bookings++
		sales.TicketsSold += len(b.Seats)
		sales.Revenue += b.Amount
	}

	if stats.ConfirmedBookings > 0 {
		stats.AvgBookingValue = decimal.NewFromInt(stats.TotalRevenue).
			Div(decimal.NewFromInt(int64(stats.ConfirmedBookings))).
			Round(2)
	}

	stats.Sales = make([]models.MatchSales, 0, len(byMatch))
	for _, sales := range byMatch {
		if sales.Deleted && sales.Bookings == 0 {
			continue
		}
		stats.Sales = append(stats.Sales, *sales)
	}
	sort.Slice(stats.Sales, func(i, j int) bool {
		a, b := stats.Sales[i], stats.Sales[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.MatchName < b.MatchName
	})

	return stats
}
