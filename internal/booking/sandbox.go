package booking

import (
	"context"
	"fmt"
	"strings"

	"cricketbook/internal/models"
	"cricketbook/internal/utils"
)

// SandboxGateway accepts any reported success for a known order reference.
// It stands in for a real provider in development and tests.
type SandboxGateway struct {
	currency string
}

func NewSandboxGateway(currency string) *SandboxGateway {
	return &SandboxGateway{currency: strings.ToUpper(currency)}
}

func (g *SandboxGateway) Name() string {
	return "sandbox"
}

func (g *SandboxGateway) OpenCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	return &Checkout{
		Provider:    g.Name(),
		OrderID:     utils.GenerateID("order"),
		AmountMinor: MinorUnits(req.Amount),
		Currency:    g.currency,
		Description: req.Description,
	}, nil
}

func (g *SandboxGateway) ResolveCallback(_ context.Context, booking models.Booking, cb Callback) (Outcome, error) {
	switch cb.Status {
	case CallbackSuccess:
	case CallbackFailed, CallbackCancelled:
		return Failure{Reason: reasonOrDefault(cb.Reason)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown callback status %q", ErrGateway, cb.Status)
	}

	if booking.PaymentOrderID != "" && cb.OrderID != "" && cb.OrderID != booking.PaymentOrderID {
		return Failure{Reason: "payment order does not match booking"}, nil
	}

	paymentID := cb.PaymentID
	if paymentID == "" {
		paymentID = utils.GenerateID("pay")
	}
	orderID := cb.OrderID
	if orderID == "" {
		orderID = booking.PaymentOrderID
	}
	return Success{PaymentID: paymentID, OrderID: orderID, Signature: cb.Signature, Method: g.Name()}, nil
}

func reasonOrDefault(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return DefaultCancelReason
	}
	return reason
}
