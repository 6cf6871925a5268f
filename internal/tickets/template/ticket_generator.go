package template

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"strings"

	"cricketbook/internal/models"

	"github.com/signintech/gopdf"
)

type TicketPDFGenerator struct {
	fontPath string
}

func NewTicketPDFGenerator(fontPath string) *TicketPDFGenerator {
	return &TicketPDFGenerator{fontPath: fontPath}
}

// Generate lays out a single A4 ticket for a confirmed booking with its QR
// code.
func (g *TicketPDFGenerator) Generate(booking models.Booking, match models.Match, holder models.UserProfile, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont("dejavu", g.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	if err := pdf.SetFont("dejavu", "", 20); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	addHeader(pdf, match)

	if err := pdf.SetFont("dejavu", "", 13); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	pdf.SetY(110)
	addTicketInfo(pdf, TicketLines(booking, match, holder))

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(760)
	addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

type Line struct {
	Label string
	Value string
}

// TicketLines is the label/value block printed on the ticket.
func TicketLines(booking models.Booking, match models.Match, holder models.UserProfile) []Line {
	return []Line{
		{"Booking ID", booking.ID},
		{"Ticket holder", holder.Name},
		{"Match", match.Name() + " (" + string(match.MatchType) + ")"},
		{"Venue", match.Venue},
		{"Date", match.Date.Format("Monday, January 2, 2006 15:04")},
		{"Seats", JoinSeats(booking.Seats)},
		{"Amount paid", "INR " + strconv.FormatInt(booking.Amount, 10)},
		{"Payment ID", booking.PaymentID},
	}
}

// JoinSeats renders seat numbers the way tickets and emails show them: "3, 4, 5".
func JoinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ", ")
}

func addHeader(pdf *gopdf.GoPdf, match models.Match) {
	pdf.SetX(40)
	pdf.SetY(40)
	pdf.Cell(nil, "CRICKET MATCH TICKET")
	pdf.Br(30)
	pdf.SetX(40)
	pdf.Cell(nil, match.Name())
}

func addTicketInfo(pdf *gopdf.GoPdf, lines []Line) {
	for _, item := range lines {
		pdf.SetX(40)
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(22)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.SetX(40)
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 180, H: 180}
	if err := pdf.ImageFrom(img, 40, pdf.GetY(), rect); err != nil {
		pdf.SetX(40)
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.Cell(nil, "Show this QR code at the stadium gate. Each ticket admits once.")
}
