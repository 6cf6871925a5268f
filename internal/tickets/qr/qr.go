package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cricketbook/internal/models"

	"github.com/skip2/go-qrcode"
)

// ErrInvalidPayload is returned by Decode for text that is not a ticket.
var ErrInvalidPayload = errors.New("invalid ticket payload")

// Encode renders the payload as the compact JSON string carried in the QR.
func Encode(p models.TicketPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode ticket payload: %w", err)
	}
	return string(data), nil
}

// Decode parses scanned QR text. Any text that is not a JSON object with a
// bookingId is rejected.
func Decode(text string) (models.TicketPayload, error) {
	var p models.TicketPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return models.TicketPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p.BookingID == "" {
		return models.TicketPayload{}, fmt.Errorf("%w: missing bookingId", ErrInvalidPayload)
	}
	return p, nil
}

type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewGenerator returns a PNG generator at high error correction. A size of
// zero falls back to 256px.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = 256
	}
	return &Generator{size: size, level: qrcode.High}
}

func (g *Generator) PNG(p models.TicketPayload) ([]byte, error) {
	text, err := Encode(p)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(text, g.level, g.size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}
