package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	matchesCollection  = "matches"
	bookingsCollection = "bookings"
	usersCollection    = "users"
	scansCollection    = "scannedTickets"
)

// Store keeps matches, bookings, users and the scan log in Firestore. It
// satisfies the same repository interfaces as the Postgres packages.
//
// Queries filter on a single field and sort in memory so no composite
// indexes need to be deployed.
type Store struct {
	Client *firestore.Client
	logger *logger.Logger
}

// Connect opens a client for projectID. When FIRESTORE_EMULATOR_HOST is set
// the client talks to the emulator without credentials.
func Connect(ctx context.Context, projectID string, logger *logger.Logger) (*Store, error) {
	var opts []option.ClientOption
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		opts = append(opts, option.WithoutAuthentication())
		logger.Info("DATABASE", fmt.Sprintf("Using Firestore emulator at %s", host))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	logger.Info("DATABASE", fmt.Sprintf("Connected to Firestore project %s", projectID))
	return &Store{Client: client, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.Client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// get loads one document into dst. Missing documents map to ErrNotFound.
func (s *Store) get(ctx context.Context, collection, id string, dst interface{}) error {
	if id == "" {
		return fmt.Errorf("%s %q: %w", collection, id, models.ErrNotFound)
	}
	snap, err := s.Client.Collection(collection).Doc(id).Get(ctx)
	if isNotFound(err) {
		return fmt.Errorf("%s %s: %w", collection, id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s %s: %w", collection, id, err)
	}
	if err := snap.DataTo(dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, collection, id string, updates []firestore.Update) error {
	_, err := s.Client.Collection(collection).Doc(id).Update(ctx, updates)
	if isNotFound(err) {
		return fmt.Errorf("%s %s: %w", collection, id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	return nil
}

// all decodes every document of q, setting the id through setID.
func all[T any](ctx context.Context, q firestore.Query, setID func(*T, string)) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []T
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		var v T
		if err := snap.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.Path, err)
		}
		setID(&v, snap.Ref.ID)
		out = append(out, v)
	}
}

// Matches

func (s *Store) ListMatches(ctx context.Context, includeDeleted bool) ([]models.Match, error) {
	q := s.Client.Collection(matchesCollection).OrderBy("date", firestore.Asc)
	list, err := all(ctx, q, func(m *models.Match, id string) { m.ID = id })
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if includeDeleted {
		return list, nil
	}
	active := list[:0]
	for _, m := range list {
		if !m.Deleted() {
			active = append(active, m)
		}
	}
	return active, nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	if err := s.get(ctx, matchesCollection, id, &match); err != nil {
		return nil, err
	}
	match.ID = id
	return &match, nil
}

func (s *Store) CreateMatch(ctx context.Context, match *models.Match) error {
	if _, err := s.Client.Collection(matchesCollection).Doc(match.ID).Create(ctx, match); err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (s *Store) UpdateMatch(ctx context.Context, match *models.Match) error {
	return s.update(ctx, matchesCollection, match.ID, []firestore.Update{
		{Path: "team1", Value: match.Team1},
		{Path: "team1Flag", Value: match.Team1Flag},
		{Path: "team2", Value: match.Team2},
		{Path: "team2Flag", Value: match.Team2Flag},
		{Path: "matchType", Value: match.MatchType},
		{Path: "venue", Value: match.Venue},
		{Path: "date", Value: match.Date},
		{Path: "basePrice", Value: match.BasePrice},
		{Path: "availableSeats", Value: match.AvailableSeats},
	})
}

func (s *Store) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	return s.update(ctx, matchesCollection, id, []firestore.Update{{Path: "status", Value: status}})
}

// Bookings

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := s.Client.Collection(bookingsCollection).Doc(booking.ID).Create(ctx, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.get(ctx, bookingsCollection, id, &booking); err != nil {
		return nil, err
	}
	booking.ID = id
	return &booking, nil
}

func (s *Store) SetPaymentOrder(ctx context.Context, id, orderID string) error {
	return s.update(ctx, bookingsCollection, id, []firestore.Update{{Path: "paymentOrderId", Value: orderID}})
}

// ConfirmBooking applies the confirmation inside a transaction that first
// checks the booking is still pending.
func (s *Store) ConfirmBooking(ctx context.Context, booking *models.Booking) error {
	ref := s.Client.Collection(bookingsCollection).Doc(booking.ID)
	return s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return fmt.Errorf("booking %s: %w", booking.ID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("confirm booking %s: %w", booking.ID, err)
		}

		var current models.Booking
		if err := snap.DataTo(&current); err != nil {
			return fmt.Errorf("decode booking %s: %w", booking.ID, err)
		}
		if !current.Status.CanTransition(booking.Status) {
			return fmt.Errorf("booking %s is %s: %w", booking.ID, current.Status, models.ErrInvalidTransition)
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: booking.Status},
			{Path: "paymentId", Value: booking.PaymentID},
			{Path: "paymentMethod", Value: booking.PaymentMethod},
			{Path: "updatedAt", Value: booking.UpdatedAt},
		})
	})
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	q := s.Client.Collection(bookingsCollection).Where("userId", "==", userID)
	list, err := all(ctx, q, func(b *models.Booking, id string) { b.ID = id })
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %s: %w", userID, err)
	}
	return newestFirst(withStatus(list, status)), nil
}

func (s *Store) ListBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	q := s.Client.Collection(bookingsCollection).Where("status", "==", status)
	list, err := all(ctx, q, func(b *models.Booking, id string) { b.ID = id })
	if err != nil {
		return nil, fmt.Errorf("list %s bookings: %w", status, err)
	}
	return newestFirst(list), nil
}

func withStatus(list []models.Booking, status models.BookingStatus) []models.Booking {
	out := list[:0]
	for _, b := range list {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

func newestFirst(list []models.Booking) []models.Booking {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

// Users

// CreateUser rejects a second profile for the same email with ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.UserProfile) error {
	users := s.Client.Collection(usersCollection)
	return s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return fmt.Errorf("check email %s: %w", user.Email, err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("email %s: %w", user.Email, models.ErrConflict)
		}
		return tx.Create(users.Doc(user.ID), user)
	})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := s.get(ctx, usersCollection, id, &user); err != nil {
		return nil, err
	}
	user.ID = id
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	q := s.Client.Collection(usersCollection).Where("email", "==", email).Limit(1)
	list, err := all(ctx, q, func(u *models.UserProfile, id string) { u.ID = id })
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	return &list[0], nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	return s.update(ctx, usersCollection, id, []firestore.Update{{Path: "role", Value: role}})
}

// Scan log

func (s *Store) AddScan(ctx context.Context, scan *models.ScannedTicket) error {
	if _, err := s.Client.Collection(scansCollection).Doc(scan.ID).Create(ctx, scan); err != nil {
		return fmt.Errorf("add scan for booking %s: %w", scan.BookingID, err)
	}
	return nil
}

func (s *Store) ListScans(ctx context.Context, bookingID string) ([]models.ScannedTicket, error) {
	q := s.Client.Collection(scansCollection).Where("bookingId", "==", bookingID)
	list, err := all(ctx, q, func(t *models.ScannedTicket, id string) { t.ID = id })
	if err != nil {
		return nil, fmt.Errorf("list scans for booking %s: %w", bookingID, err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ScannedAt.Before(list[j].ScannedAt) })
	return list, nil
}
