package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"cricketbook/internal/feed"
	"cricketbook/internal/logger"
	"cricketbook/internal/mail"
	"cricketbook/internal/metrics"
	"cricketbook/internal/models"
	"cricketbook/internal/utils"
)

type DBLayer interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	SetPaymentOrder(ctx context.Context, id, orderID string) error
	ConfirmBooking(ctx context.Context, booking *models.Booking) error
	ListBookingsByUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	ListBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
}

type MatchReader interface {
	GetMatch(ctx context.Context, id string) (*models.Match, error)
}

type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// TicketRenderer draws the QR image for a ticket payload.
type TicketRenderer interface {
	PNG(payload models.TicketPayload) ([]byte, error)
}

// PDFRenderer lays out a printable ticket.
type PDFRenderer interface {
	Generate(booking models.Booking, match models.Match, holder models.UserProfile, qrCode []byte) ([]byte, error)
}

// SeatRules bound a seat selection.
type SeatRules struct {
	SeatMapSize int
	MaxSeats    int
}

const ticketEmailTimeout = 30 * time.Second

type BookingService struct {
	DB       DBLayer
	Matches  MatchReader
	Users    UserReader
	Gateway  Gateway
	Mailer   mail.Sender
	Tickets  TicketRenderer
	PDF      PDFRenderer
	Feed     feed.Publisher
	rules    SeatRules
	currency string
	logger   *logger.Logger
	now      func() time.Time
}

func NewBookingService(db DBLayer, matches MatchReader, users UserReader, gateway Gateway, mailer mail.Sender,
	tickets TicketRenderer, pdf PDFRenderer, feed feed.Publisher, rules SeatRules, currency string, logger *logger.Logger) *BookingService {
	return &BookingService{
		DB:       db,
		Matches:  matches,
		Users:    users,
		Gateway:  gateway,
		Mailer:   mailer,
		Tickets:  tickets,
		PDF:      pdf,
		Feed:     feed,
		rules:    rules,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckoutResult is returned to the buyer after a pending booking is written.
type CheckoutResult struct {
	Booking  *models.Booking `json:"booking"`
	Checkout *Checkout       `json:"checkout"`
}

// ValidateSeats checks a selection against the seat map before anything is
// written.
func ValidateSeats(seats []int, rules SeatRules) error {
	if len(seats) == 0 {
		return models.Invalid("seats", "select at least one seat")
	}
	if len(seats) > rules.MaxSeats {
		return models.Invalid("seats", "select at most %d seats", rules.MaxSeats)
	}
	seen := make(map[int]bool, len(seats))
	for _, seat := range seats {
		if seat < 1 || seat > rules.SeatMapSize {
			return models.Invalid("seats", "seat %d is outside 1-%d", seat, rules.SeatMapSize)
		}
		if seen[seat] {
			return models.Invalid("seats", "seat %d selected twice", seat)
		}
		seen[seat] = true
	}
	return nil
}

// StartCheckout writes a pending booking for the selection and opens a
// gateway checkout for it. If the gateway fails the pending booking is left
// as is.
func (s *BookingService) StartCheckout(ctx context.Context, session *models.Session, matchID string, seats []int) (*CheckoutResult, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	if err := ValidateSeats(seats, s.rules); err != nil {
		return nil, err
	}

	match, err := s.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Deleted() {
		return nil, models.Invalid("matchId", "match %s is no longer on sale", matchID)
	}

	selected := append([]int(nil), seats...)
	sort.Ints(selected)

	booking := &models.Booking{
		ID:        utils.GenerateUUID(),
		UserID:    session.UserID,
		MatchID:   match.ID,
		Seats:     selected,
		Amount:    int64(len(selected)) * match.BasePrice,
		Status:    models.BookingPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.DB.CreateBooking(ctx, booking); err != nil {
		s.logger.Error("BOOKING", fmt.Sprintf("Failed to write pending booking for user %s: %v", session.UserID, err))
		return nil, err
	}
	metrics.BookingsCreated.Inc()
	s.logger.LogBooking("CREATE", booking.ID, fmt.Sprintf("%d seats for %s, amount %d", len(selected), match.Name(), booking.Amount))
	s.Feed.Publish(ctx, models.TopicBookings, models.ChangeCreated, booking.ID)

	checkout, err := s.Gateway.OpenCheckout(ctx, CheckoutRequest{
		BookingID:   booking.ID,
		MatchID:     match.ID,
		Amount:      booking.Amount,
		Currency:    s.currency,
		Description: fmt.Sprintf("%s - %d seat(s)", match.Name(), len(selected)),
		BuyerName:   session.Name,
		BuyerEmail:  session.Email,
		BuyerPhone:  session.Phone,
	})
	if err != nil {
		metrics.PaymentFailures.WithLabelValues("checkout").Inc()
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to open checkout for booking %s: %v", booking.ID, err))
		if !errors.Is(err, ErrGateway) {
			err = fmt.Errorf("%w: %v", ErrGateway, err)
		}
		return nil, err
	}

	if err := s.DB.SetPaymentOrder(ctx, booking.ID, checkout.OrderID); err != nil {
		s.logger.Error("BOOKING", fmt.Sprintf("Failed to store order %s on booking %s: %v", checkout.OrderID, booking.ID, err))
		return nil, err
	}
	booking.PaymentOrderID = checkout.OrderID

	return &CheckoutResult{Booking: booking, Checkout: checkout}, nil
}

// CompletePayment applies the buyer's report of the gateway result.
func (s *BookingService) CompletePayment(ctx context.Context, session *models.Session, bookingID string, cb Callback) (*models.Booking, error) {
	booking, err := s.bookingFor(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Confirmed() {
		return booking, nil
	}

	outcome, err := s.Gateway.ResolveCallback(ctx, *booking, cb)
	if err != nil {
		return nil, err
	}
	return s.ConfirmPayment(ctx, bookingID, outcome)
}

// ConfirmPayment moves a pending booking to confirmed on Success and then
// issues the ticket email. A Failure leaves the booking pending. Confirming
// an already confirmed booking returns it unchanged.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID string, outcome Outcome) (*models.Booking, error) {
	booking, err := s.DB.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch o := outcome.(type) {
	case Failure:
		metrics.PaymentFailures.WithLabelValues("gateway").Inc()
		s.logger.LogPayment("FAILED", bookingID, o.Reason)
		return nil, &PaymentFailedError{BookingID: bookingID, Reason: o.Reason}

	case Success:
		if booking.Confirmed() {
			s.logger.LogPayment("DUPLICATE", bookingID, fmt.Sprintf("already confirmed with %s, ignoring %s", booking.PaymentID, o.PaymentID))
			return booking, nil
		}

		confirmed := *booking
		confirmed.Status = models.BookingConfirmed
		confirmed.PaymentID = o.PaymentID
		confirmed.PaymentMethod = o.Method
		confirmed.UpdatedAt = s.now().UTC()

		if err := s.DB.ConfirmBooking(ctx, &confirmed); err != nil {
			if errors.Is(err, models.ErrInvalidTransition) {
				if current, getErr := s.DB.GetBooking(ctx, bookingID); getErr == nil && current.Confirmed() {
					return current, nil
				}
			}
			metrics.PaymentFailures.WithLabelValues("confirmation").Inc()
			s.logger.Error("PAYMENT", fmt.Sprintf("Payment %s captured but booking %s not confirmed: %v", o.PaymentID, bookingID, err))
			return nil, &ConfirmationError{BookingID: bookingID, PaymentID: o.PaymentID, Err: err}
		}

		metrics.BookingsConfirmed.Inc()
		s.logger.LogPayment("CONFIRMED", bookingID, fmt.Sprintf("payment %s via %s", o.PaymentID, o.Method))
		s.Feed.Publish(ctx, models.TopicBookings, models.ChangeUpdated, bookingID)

		s.sendTicket(ctx, confirmed)
		return &confirmed, nil

	default:
		return nil, fmt.Errorf("%w: unknown payment outcome %T", ErrGateway, outcome)
	}
}

// sendTicket emails the QR ticket. Failures are logged and counted only; the
// booking stays confirmed and the ticket can be downloaded later.
func (s *BookingService) sendTicket(ctx context.Context, booking models.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ticketEmailTimeout)
	defer cancel()

	fail := func(step string, err error) {
		metrics.TicketEmails.WithLabelValues("failed").Inc()
		s.logger.Error("EMAIL", fmt.Sprintf("Ticket email for booking %s failed at %s: %v", booking.ID, step, err))
	}

	match, err := s.Matches.GetMatch(ctx, booking.MatchID)
	if err != nil {
		fail("match lookup", err)
		return
	}
	holder, err := s.Users.GetUserByID(ctx, booking.UserID)
	if err != nil {
		fail("profile lookup", err)
		return
	}
	png, err := s.Tickets.PNG(TicketPayloadFor(booking))
	if err != nil {
		fail("qr render", err)
		return
	}
	if err := s.Mailer.SendTicket(ctx, mail.NewTicketEmail(booking, *match, *holder, png)); err != nil {
		fail("send", err)
		return
	}
	metrics.TicketEmails.WithLabelValues("sent").Inc()
}

// TicketPayloadFor builds the QR payload of a booking. The timestamp is the
// confirmation time so every rendering of a ticket is identical.
func TicketPayloadFor(booking models.Booking) models.TicketPayload {
	issued := booking.UpdatedAt
	if issued.IsZero() {
		issued = booking.CreatedAt
	}
	return models.TicketPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		MatchID:   booking.MatchID,
		Seats:     booking.Seats,
		Timestamp: utils.TimeToUnixMilli(issued),
	}
}

// ListMyBookings returns the caller's confirmed bookings, newest first, with
// their matches resolved.
func (s *BookingService) ListMyBookings(ctx context.Context, session *models.Session) ([]models.BookingDetails, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	bookings, err := s.DB.ListBookingsByUser(ctx, session.UserID, models.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, bookings, false), nil
}

// ListConfirmedBookings is the admin view of every confirmed booking with its
// match and buyer.
func (s *BookingService) ListConfirmedBookings(ctx context.Context) ([]models.BookingDetails, error) {
	bookings, err := s.DB.ListBookingsByStatus(ctx, models.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	return s.withDetails(ctx, bookings, true), nil
}

func (s *BookingService) withDetails(ctx context.Context, bookings []models.Booking, withUsers bool) []models.BookingDetails {
	matches := map[string]*models.Match{}
	users := map[string]*models.UserProfile{}
	out := make([]models.BookingDetails, 0, len(bookings))

	for _, b := range bookings {
		d := models.BookingDetails{Booking: b}

		m, ok := matches[b.MatchID]
		if !ok {
			var err error
			if m, err = s.Matches.GetMatch(ctx, b.MatchID); err != nil {
				s.logger.Warn("BOOKING", fmt.Sprintf("Booking %s references unknown match %s: %v", b.ID, b.MatchID, err))
			}
			matches[b.MatchID] = m
		}
		d.Match = m

		if withUsers {
			u, ok := users[b.UserID]
			if !ok {
				var err error
				if u, err = s.Users.GetUserByID(ctx, b.UserID); err != nil {
					s.logger.Warn("BOOKING", fmt.Sprintf("Booking %s references unknown user %s: %v", b.ID, b.UserID, err))
				}
				users[b.UserID] = u
			}
			d.User = u
		}

		out = append(out, d)
	}
	return out
}

// TicketQR renders the QR image of a confirmed booking for its owner or an
// admin.
func (s *BookingService) TicketQR(ctx context.Context, session *models.Session, bookingID string) ([]byte, error) {
	booking, err := s.confirmedBookingFor(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	return s.Tickets.PNG(TicketPayloadFor(*booking))
}

// TicketPDF renders the printable ticket of a confirmed booking.
func (s *BookingService) TicketPDF(ctx context.Context, session *models.Session, bookingID string) ([]byte, error) {
	booking, err := s.confirmedBookingFor(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	match, err := s.Matches.GetMatch(ctx, booking.MatchID)
	if err != nil {
		return nil, err
	}
	holder, err := s.Users.GetUserByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}
	png, err := s.Tickets.PNG(TicketPayloadFor(*booking))
	if err != nil {
		return nil, err
	}
	return s.PDF.Generate(*booking, *match, *holder, png)
}

func (s *BookingService) confirmedBookingFor(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingFor(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Confirmed() {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotConfirmed)
	}
	return booking, nil
}

// bookingFor loads a booking the session may act on: its own, or any for an
// admin.
func (s *BookingService) bookingFor(ctx context.Context, session *models.Session, bookingID string) (*models.Booking, error) {
	if session == nil {
		return nil, models.ErrUnauthenticated
	}
	booking, err := s.DB.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != session.UserID && !session.IsAdmin() {
		return nil, fmt.Errorf("booking %s belongs to another user: %w", bookingID, models.ErrForbidden)
	}
	return booking, nil
}

// HandlePaymentWebhook applies a provider push notification through the same
// confirmation step as the buyer's callback.
func (s *BookingService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	verifier, ok := s.Gateway.(WebhookVerifier)
	if !ok {
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusNotFound,
			PublicError:   "Webhooks are not enabled",
			InternalError: fmt.Sprintf("gateway %s does not accept webhooks", s.Gateway.Name()),
		}
	}

	result, err := verifier.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Error("WEBHOOK", err.Error())
		return err
	}
	if result.BookingID == "" {
		s.logger.Info("WEBHOOK", fmt.Sprintf("Unhandled event type: %s", result.EventType))
		return nil
	}

	s.logger.Info("WEBHOOK", fmt.Sprintf("Processing %s for booking %s", result.EventType, result.BookingID))
	_, err = s.ConfirmPayment(ctx, result.BookingID, result.Outcome)
	switch {
	case err == nil, errors.Is(err, ErrPaymentFailed):
		return nil
	case errors.Is(err, models.ErrNotFound):
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusNotFound,
			PublicError:   "Unknown booking",
			InternalError: err.Error(),
			OriginalErr:   err,
		}
	default:
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Failed to process payment",
			InternalError: err.Error(),
			OriginalErr:   err,
		}
	}
}
