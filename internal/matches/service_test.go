package matches_test

import (
	"context"
	"io"
	"testing"
	"time"

	"cricketbook/internal/logger"
	"cricketbook/internal/matches"
	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListMatches(ctx context.Context, includeDeleted bool) ([]models.Match, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Match), args.Error(1)
}

func (m *MockDBLayer) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockDBLayer) CreateMatch(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateMatch(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) Publish(ctx context.Context, topic models.Topic, action models.ChangeAction, documentID string) {
	m.Called(ctx, topic, action, documentID)
}

func validInput() models.MatchInput {
	return models.MatchInput{
		Team1:          "India",
		Team2:          "Australia",
		MatchType:      models.MatchT20,
		Venue:          "Wankhede Stadium",
		Date:           time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC),
		BasePrice:      1500,
		AvailableSeats: 500,
	}
}

func newService() (*matches.MatchService, *MockDBLayer, *MockFeed) {
	db := new(MockDBLayer)
	f := new(MockFeed)
	return matches.NewMatchService(db, f, logger.New(io.Discard)), db, f
}

func TestCreateMatch(t *testing.T) {
	svc, db, f := newService()
	ctx := context.Background()

	db.On("CreateMatch", ctx, mock.MatchedBy(func(m *models.Match) bool {
		return m.ID != "" && m.Status == models.MatchActive && m.Team1 == "India" && !m.CreatedAt.IsZero()
	})).Return(nil)
	f.On("Publish", ctx, models.TopicMatches, models.ChangeCreated, mock.AnythingOfType("string")).Return()

	match, err := svc.CreateMatch(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "India vs Australia", match.Name())
	assert.Equal(t, int64(1500), match.BasePrice)
	db.AssertExpectations(t)
	f.AssertExpectations(t)
}

func TestCreateMatchValidation(t *testing.T) {
	cases := map[string]func(*models.MatchInput){
		"missing team":   func(in *models.MatchInput) { in.Team1 = " " },
		"same teams":     func(in *models.MatchInput) { in.Team2 = "india" },
		"missing venue":  func(in *models.MatchInput) { in.Venue = "" },
		"missing date":   func(in *models.MatchInput) { in.Date = time.Time{} },
		"bad type":       func(in *models.MatchInput) { in.MatchType = "T10" },
		"zero price":     func(in *models.MatchInput) { in.BasePrice = 0 },
		"negative seats": func(in *models.MatchInput) { in.AvailableSeats = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, db, _ := newService()
			in := validInput()
			mutate(&in)

			_, err := svc.CreateMatch(context.Background(), in)
			assert.True(t, models.IsValidation(err), "got %v", err)
			db.AssertNotCalled(t, "CreateMatch", mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteMatchIsSoftAndOneWay(t *testing.T) {
	svc, db, f := newService()
	ctx := context.Background()

	db.On("GetMatch", ctx, "m1").Return(&models.Match{ID: "m1", Status: models.MatchActive}, nil).Once()
	db.On("UpdateMatchStatus", ctx, "m1", models.MatchDeleted).Return(nil).Once()
	f.On("Publish", ctx, models.TopicMatches, models.ChangeDeleted, "m1").Return().Once()

	require.NoError(t, svc.DeleteMatch(ctx, "m1"))

	db.On("GetMatch", ctx, "m1").Return(&models.Match{ID: "m1", Status: models.MatchDeleted}, nil).Once()
	err := svc.DeleteMatch(ctx, "m1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	db.AssertNumberOfCalls(t, "UpdateMatchStatus", 1)
	f.AssertExpectations(t)
}

func TestDeleteMatchNotFound(t *testing.T) {
	svc, db, _ := newService()
	ctx := context.Background()
	db.On("GetMatch", ctx, "missing").Return(nil, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteMatch(ctx, "missing"), models.ErrNotFound)
}

func TestUpdateMatchRejectsDeleted(t *testing.T) {
	svc, db, _ := newService()
	ctx := context.Background()
	db.On("GetMatch", ctx, "m1").Return(&models.Match{ID: "m1", Status: models.MatchDeleted}, nil)

	_, err := svc.UpdateMatch(ctx, "m1", validInput())
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	db.AssertNotCalled(t, "UpdateMatch", mock.Anything, mock.Anything)
}

func TestUpdateMatch(t *testing.T) {
	svc, db, f := newService()
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db.On("GetMatch", ctx, "m1").Return(&models.Match{ID: "m1", Status: models.MatchActive, CreatedAt: created}, nil)
	db.On("UpdateMatch", ctx, mock.Anything).Return(nil)
	f.On("Publish", ctx, models.TopicMatches, models.ChangeUpdated, "m1").Return()

	in := validInput()
	in.Venue = "  Eden Gardens "
	match, err := svc.UpdateMatch(ctx, "m1", in)
	require.NoError(t, err)
	assert.Equal(t, "Eden Gardens", match.Venue)
	assert.Equal(t, created, match.CreatedAt)
	assert.Equal(t, models.MatchActive, match.Status)
}

func TestListMatchesHidesDeleted(t *testing.T) {
	svc, db, _ := newService()
	ctx := context.Background()
	db.On("ListMatches", ctx, false).Return([]models.Match{{ID: "m1"}}, nil)
	db.On("ListMatches", ctx, true).Return([]models.Match{{ID: "m1"}, {ID: "m2", Status: models.MatchDeleted}}, nil)

	public, err := svc.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := svc.ListAllMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
