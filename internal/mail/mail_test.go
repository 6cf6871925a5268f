package mail

import (
	"context"
	"io"
	"testing"
	"time"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEmail() TicketEmail {
	booking := models.Booking{ID: "bk-9", Seats: []int{7, 8, 9}, Amount: 4500}
	match := models.Match{
		Team1: "India", Team2: "Australia", Venue: "Wankhede Stadium",
		Date: time.Date(2025, 2, 17, 19, 30, 0, 0, time.UTC),
	}
	holder := models.UserProfile{Email: "fan@example.com", Name: "Ravi <Fan>"}
	return NewTicketEmail(booking, match, holder, []byte{0x89, 'P', 'N', 'G'})
}

func TestNewTicketEmail(t *testing.T) {
	e := sampleEmail()

	assert.Equal(t, "fan@example.com", e.ToEmail)
	assert.Equal(t, "India vs Australia", e.MatchName)
	assert.Equal(t, "Monday, February 17, 2025", e.MatchDate)
	assert.Equal(t, "7, 8, 9", e.Seats)
	assert.Equal(t, "4500", e.TotalAmount)
	assert.Equal(t, "bk-9", e.BookingID)
}

func TestRenderTicketEscapesFields(t *testing.T) {
	body, err := RenderTicket(sampleEmail())
	require.NoError(t, err)

	assert.Contains(t, body, "Wankhede Stadium")
	assert.Contains(t, body, "7, 8, 9")
	assert.Contains(t, body, "Ravi &lt;Fan&gt;")
	assert.NotContains(t, body, "<Fan>")
}

func TestNewSenderSelectsByConfig(t *testing.T) {
	log := logger.New(io.Discard)

	_, isLog := NewSender(config.EmailConfig{Enabled: false}, log).(*LogSender)
	assert.True(t, isLog)

	_, isSMTP := NewSender(config.EmailConfig{Enabled: true}, log).(*SMTPSender)
	assert.True(t, isSMTP)
}

func TestLogSenderNeverFails(t *testing.T) {
	s := NewLogSender(logger.New(io.Discard))
	assert.NoError(t, s.SendTicket(context.Background(), sampleEmail()))
}
