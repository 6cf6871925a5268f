package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	tickettpl "cricketbook/internal/tickets/template"

	"github.com/domodwyer/mailyak/v3"
)

// TicketEmail holds the fields rendered into the ticket email.
type TicketEmail struct {
	ToEmail     string
	ToName      string
	MatchName   string
	MatchDate   string
	MatchVenue  string
	Seats       string
	TotalAmount string
	BookingID   string
	QRCode      []byte
}

// NewTicketEmail builds the email for a confirmed booking.
func NewTicketEmail(booking models.Booking, match models.Match, holder models.UserProfile, qrPNG []byte) TicketEmail {
	return TicketEmail{
		ToEmail:     holder.Email,
		ToName:      holder.Name,
		MatchName:   match.Name(),
		MatchDate:   match.Date.Format("Monday, January 2, 2006"),
		MatchVenue:  match.Venue,
		Seats:       tickettpl.JoinSeats(booking.Seats),
		TotalAmount: strconv.FormatInt(booking.Amount, 10),
		BookingID:   booking.ID,
		QRCode:      qrPNG,
	}
}

type Sender interface {
	SendTicket(ctx context.Context, email TicketEmail) error
}

var ticketTemplate = template.Must(template.New("ticket").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
  <h2>Your tickets are confirmed!</h2>
  <p>Hi {{.ToName}},</p>
  <p>Thanks for booking with CricketBook. Here are your ticket details:</p>
  <table cellpadding="6">
    <tr><td><b>Match</b></td><td>{{.MatchName}}</td></tr>
    <tr><td><b>Date</b></td><td>{{.MatchDate}}</td></tr>
    <tr><td><b>Venue</b></td><td>{{.MatchVenue}}</td></tr>
    <tr><td><b>Seats</b></td><td>{{.Seats}}</td></tr>
    <tr><td><b>Total paid</b></td><td>&#8377;{{.TotalAmount}}</td></tr>
    <tr><td><b>Booking ID</b></td><td>{{.BookingID}}</td></tr>
  </table>
  <p>Your QR ticket is attached. Show it at the stadium gate for entry.</p>
</body>
</html>`))

func RenderTicket(email TicketEmail) (string, error) {
	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, email); err != nil {
		return "", fmt.Errorf("render ticket email: %w", err)
	}
	return buf.String(), nil
}

type SMTPSender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig, logger *logger.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) SendTicket(ctx context.Context, email TicketEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := RenderTicket(email)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	m := mailyak.New(s.cfg.SMTPHost+":"+s.cfg.SMTPPort, auth)
	m.To(email.ToEmail)
	m.From(s.cfg.FromAddress)
	m.FromName(s.cfg.FromName)
	m.Subject(fmt.Sprintf("Your tickets for %s", email.MatchName))
	m.HTML().Set(body)
	if len(email.QRCode) > 0 {
		m.Attach("ticket-"+email.BookingID+".png", bytes.NewReader(email.QRCode))
	}

	if err := m.Send(); err != nil {
		return fmt.Errorf("send ticket email to %s: %w", email.ToEmail, err)
	}
	s.logger.Info("EMAIL", fmt.Sprintf("Ticket email sent to %s for booking %s", email.ToEmail, email.BookingID))
	return nil
}

// LogSender stands in for SMTP when email delivery is disabled.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendTicket(_ context.Context, email TicketEmail) error {
	s.logger.Info("EMAIL", fmt.Sprintf("Email disabled, ticket for booking %s not sent to %s", email.BookingID, email.ToEmail))
	return nil
}

// NewSender picks SMTP delivery when enabled in config.
func NewSender(cfg config.EmailConfig, logger *logger.Logger) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg, logger)
	}
	return NewLogSender(logger)
}
