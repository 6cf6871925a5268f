package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cricketbook/internal/feed"
	"cricketbook/internal/logger"
	"cricketbook/internal/metrics"
	"cricketbook/internal/models"
	"cricketbook/internal/tickets/qr"
	"cricketbook/internal/utils"
)

var (
	ErrInvalidTicket   = errors.New("invalid QR code")
	ErrBookingNotFound = errors.New("booking not found")
	ErrNotConfirmed    = errors.New("ticket is not confirmed")
)

type Verdict string

const (
	VerdictSuccess Verdict = "success"
	VerdictWarning Verdict = "warning"
)

const (
	duplicateMessage = "This ticket has already been scanned!"
	admitMessage     = "Ticket verified. Entry allowed."
)

type DBLayer interface {
	AddScan(ctx context.Context, scan *models.ScannedTicket) error
	ListScans(ctx context.Context, bookingID string) ([]models.ScannedTicket, error)
}

type BookingReader interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
}

type MatchReader interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
}

type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// ScanResult is what the gate screen shows for one scan.
type ScanResult struct {
	Verdict       Verdict             `json:"verdict"`
	Message       string              `json:"message"`
	Booking       *models.Booking     `json:"booking"`
	Match         *models.Match       `json:"match,omitempty"`
	User          *models.UserProfile `json:"user,omitempty"`
	PreviousScans int                 `json:"previousScans"`
}

type ScanService struct {
	DB       DBLayer
	Bookings BookingReader
	Matches  MatchReader
	Users    UserReader
	Feed     feed.Publisher
	logger   *logger.Logger
	now      func() time.Time
}

func NewScanService(db DBLayer, bookings BookingReader, matches MatchReader, users UserReader, feed feed.Publisher, logger *logger.Logger) *ScanService {
	return &ScanService{
		DB:       db,
		Bookings: bookings,
		Matches:  matches,
		Users:    users,
		Feed:     feed,
		logger:   logger,
		now:      time.Now,
	}
}

// Scan validates the text read from a ticket QR and records the entry
// attempt. A repeat scan is a warning, not a refusal, and is logged as well.
//
// The prior-scan check and the append are separate calls, so two gates
// scanning the same ticket at once can both report success.
func (s *ScanService) Scan(ctx context.Context, session *models.Session, text string) (*ScanResult, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}

	payload, err := qr.Decode(text)
	if err != nil {
		metrics.GateScans.WithLabelValues("invalid").Inc()
		s.logger.Warn("SCAN", fmt.Sprintf("Rejected unreadable ticket: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	booking, err := s.Bookings.GetBooking(ctx, payload.BookingID)
	if errors.Is(err, models.ErrNotFound) {
		metrics.GateScans.WithLabelValues("not_found").Inc()
		s.logger.LogScan("NOT_FOUND", payload.BookingID, "no booking for scanned ticket")
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, payload.BookingID)
	}
	if err != nil {
		return nil, err
	}
	if !booking.Confirmed() {
		metrics.GateScans.WithLabelValues("not_confirmed").Inc()
		s.logger.LogScan("NOT_CONFIRMED", booking.ID, fmt.Sprintf("status %s", booking.Status))
		return nil, fmt.Errorf("booking %s: %w", booking.ID, ErrNotConfirmed)
	}

	previous, err := s.DB.ListScans(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	holder, err := s.Users.GetUserByID(ctx, booking.UserID)
	if err != nil {
		return nil, fmt.Errorf("load ticket holder %s: %w", booking.UserID, err)
	}
	match, err := s.Matches.GetMatch(ctx, booking.MatchID)
	if err != nil {
		s.logger.Warn("SCAN", fmt.Sprintf("Booking %s references unknown match %s: %v", booking.ID, booking.MatchID, err))
		match = nil
	}

	row := &models.ScannedTicket{
		ID:        utils.GenerateUUID(),
		BookingID: booking.ID,
		ScannedBy: session.UserID,
		ScannedAt: s.now().UTC(),
	}
	if err := s.DB.AddScan(ctx, row); err != nil {
		s.logger.Error("SCAN", fmt.Sprintf("Failed to record scan of booking %s: %v", booking.ID, err))
		return nil, err
	}
	s.Feed.Publish(ctx, models.TopicScans, models.ChangeCreated, row.ID)

	result := &ScanResult{
		Verdict:       VerdictSuccess,
		Message:       admitMessage,
		Booking:       booking,
		Match:         match,
		User:          holder,
		PreviousScans: len(previous),
	}
	if len(previous) > 0 {
		result.Verdict = VerdictWarning
		result.Message = duplicateMessage
	}

	metrics.GateScans.WithLabelValues(string(result.Verdict)).Inc()
	s.logger.LogScan(string(result.Verdict), booking.ID, fmt.Sprintf("scanned by %s, %d earlier scan(s)", session.UserID, len(previous)))
	return result, nil
}

func (s *ScanService) ListScans(ctx context.Context, bookingID string) ([]models.ScannedTicket, error) {
	return s.DB.ListScans(ctx, bookingID)
}
