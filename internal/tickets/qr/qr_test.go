package qr

import (
	"bytes"
	"image/png"
	"testing"

	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() models.TicketPayload {
	return models.TicketPayload{
		BookingID: "bk-42",
		UserID:    "user-1",
		MatchID:   "match-7",
		Seats:     []int{3, 4, 5},
		Timestamp: 1735725600000,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	text, err := Encode(samplePayload())
	require.NoError(t, err)

	got, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, samplePayload(), got)
}

func TestEncodeUsesWireFieldNames(t *testing.T) {
	text, err := Encode(samplePayload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"bookingId":"bk-42","userId":"user-1","matchId":"match-7","seats":[3,4,5],"timestamp":1735725600000}`, text)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"https://example.com/ticket/bk-42",
		`{"userId":"user-1"}`,
		`[1,2,3]`,
	}
	for _, text := range cases {
		_, err := Decode(text)
		assert.ErrorIs(t, err, ErrInvalidPayload, text)
	}
}

func TestGeneratorPNG(t *testing.T) {
	g := NewGenerator(200)
	data, err := g.PNG(samplePayload())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestNewGeneratorDefaultsSize(t *testing.T) {
	assert.Equal(t, 256, NewGenerator(0).size)
}
