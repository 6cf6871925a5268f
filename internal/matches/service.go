package matches

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cricketbook/internal/feed"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	"cricketbook/internal/utils"
)

type DBLayer interface {
	ListMatches(ctx context.Context, includeDeleted bool) ([]models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	CreateMatch(ctx context.Context, match *models.Match) error
	UpdateMatch(ctx context.Context, match *models.Match) error
	UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error
}

type MatchService struct {
	DB     DBLayer
	Feed   feed.Publisher
	logger *logger.Logger
}

func NewMatchService(db DBLayer, feed feed.Publisher, logger *logger.Logger) *MatchService {
	return &MatchService{DB: db, Feed: feed, logger: logger}
}

// ListMatches returns the public catalog: active matches, soonest first.
func (s *MatchService) ListMatches(ctx context.Context) ([]models.Match, error) {
	return s.DB.ListMatches(ctx, false)
}

// ListAllMatches is the admin view and includes deleted matches.
func (s *MatchService) ListAllMatches(ctx context.Context) ([]models.Match, error) {
	return s.DB.ListMatches(ctx, true)
}

func (s *MatchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	return s.DB.GetMatch(ctx, id)
}

func (s *MatchService) CreateMatch(ctx context.Context, input models.MatchInput) (*models.Match, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	match := &models.Match{
		ID:        utils.GenerateUUID(),
		Status:    models.MatchActive,
		CreatedAt: time.Now().UTC(),
	}
	applyInput(match, input)

	if err := s.DB.CreateMatch(ctx, match); err != nil {
		s.logger.Error("MATCH", fmt.Sprintf("Failed to create match %s: %v", match.Name(), err))
		return nil, err
	}

	s.logger.Info("MATCH", fmt.Sprintf("Created match %s (%s) at %s", match.ID, match.Name(), match.Venue))
	s.Feed.Publish(ctx, models.TopicMatches, models.ChangeCreated, match.ID)
	return match, nil
}

// UpdateMatch replaces the descriptive fields of an active match.
func (s *MatchService) UpdateMatch(ctx context.Context, id string, input models.MatchInput) (*models.Match, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	match, err := s.DB.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if match.Deleted() {
		return nil, fmt.Errorf("match %s is deleted: %w", id, models.ErrInvalidTransition)
	}

	applyInput(match, input)
	if err := s.DB.UpdateMatch(ctx, match); err != nil {
		s.logger.Error("MATCH", fmt.Sprintf("Failed to update match %s: %v", id, err))
		return nil, err
	}

	s.logger.Info("MATCH", fmt.Sprintf("Updated match %s (%s)", id, match.Name()))
	s.Feed.Publish(ctx, models.TopicMatches, models.ChangeUpdated, id)
	return match, nil
}

// DeleteMatch soft-deletes a match. Bookings keep resolving it, and a second
// delete is rejected.
func (s *MatchService) DeleteMatch(ctx context.Context, id string) error {
	match, err := s.DB.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if !match.Status.CanTransition(models.MatchDeleted) {
		return fmt.Errorf("match %s is %s: %w", id, match.Status, models.ErrInvalidTransition)
	}

	if err := s.DB.UpdateMatchStatus(ctx, id, models.MatchDeleted); err != nil {
		s.logger.Error("MATCH", fmt.Sprintf("Failed to delete match %s: %v", id, err))
		return err
	}

	s.logger.Info("MATCH", fmt.Sprintf("Deleted match %s (%s)", id, match.Name()))
	s.Feed.Publish(ctx, models.TopicMatches, models.ChangeDeleted, id)
	return nil
}

// ValidateInput checks the admin form for a match.
func ValidateInput(in models.MatchInput) error {
	switch {
	case strings.TrimSpace(in.Team1) == "":
		return models.Invalid("team1", "team name is required")
	case strings.TrimSpace(in.Team2) == "":
		return models.Invalid("team2", "team name is required")
	case strings.EqualFold(strings.TrimSpace(in.Team1), strings.TrimSpace(in.Team2)):
		return models.Invalid("team2", "a team cannot play itself")
	case strings.TrimSpace(in.Venue) == "":
		return models.Invalid("venue", "venue is required")
	case in.Date.IsZero():
		return models.Invalid("date", "match date is required")
	case !in.MatchType.Valid():
		return models.Invalid("matchType", "must be one of T20, ODI, Test")
	case in.BasePrice <= 0:
		return models.Invalid("basePrice", "must be positive")
	case in.AvailableSeats <= 0:
		return models.Invalid("availableSeats", "must be positive")
	}
	return nil
}

func applyInput(m *models.Match, in models.MatchInput) {
	m.Team1 = strings.TrimSpace(in.Team1)
	m.Team1Flag = in.Team1Flag
	m.Team2 = strings.TrimSpace(in.Team2)
	m.Team2Flag = in.Team2Flag
	m.MatchType = in.MatchType
	m.Venue = strings.TrimSpace(in.Venue)
	m.Date = in.Date.UTC()
	m.BasePrice = in.BasePrice
	m.AvailableSeats = in.AvailableSeats
}
