package template

import (
	"path/filepath"
	"testing"
	"time"

	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinSeats(t *testing.T) {
	assert.Equal(t, "3, 4, 5", JoinSeats([]int{3, 4, 5}))
	assert.Equal(t, "12", JoinSeats([]int{12}))
	assert.Equal(t, "", JoinSeats(nil))
}

func TestTicketLines(t *testing.T) {
	booking := models.Booking{ID: "bk-1", Seats: []int{1, 2}, Amount: 3000, PaymentID: "pi_123"}
	match := models.Match{
		Team1: "India", Team2: "England", MatchType: models.MatchODI, Venue: "Eden Gardens",
		Date: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
	}
	holder := models.UserProfile{Name: "Asha"}

	lines := TicketLines(booking, match, holder)
	require.Len(t, lines, 8)
	assert.Equal(t, Line{"Match", "India vs England (ODI)"}, lines[2])
	assert.Equal(t, Line{"Date", "Monday, March 10, 2025 14:00"}, lines[4])
	assert.Equal(t, Line{"Seats", "1, 2"}, lines[5])
	assert.Equal(t, Line{"Amount paid", "INR 3000"}, lines[6])
}

func TestGenerateFailsWithoutFont(t *testing.T) {
	g := NewTicketPDFGenerator(filepath.Join(t.TempDir(), "missing.ttf"))
	_, err := g.Generate(models.Booking{}, models.Match{}, models.UserProfile{}, nil)
	assert.ErrorContains(t, err, "failed to load font")
}
