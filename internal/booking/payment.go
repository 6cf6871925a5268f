package booking

import (
	"context"

	"cricketbook/internal/models"
)

// CheckoutRequest is what the gateway needs to open a checkout for a pending
// booking. Amount is in whole currency units.
type CheckoutRequest struct {
	BookingID   string
	MatchID     string
	Amount      int64
	Currency    string
	Description string
	BuyerName   string
	BuyerEmail  string
	BuyerPhone  string
}

// Checkout is handed back to the buyer's client to complete payment.
type Checkout struct {
	Provider       string `json:"provider"`
	OrderID        string `json:"orderId"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	PublishableKey string `json:"publishableKey,omitempty"`
	AmountMinor    int64  `json:"amountMinor"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
}

// Callback is the gateway result as reported by the buyer's client.
type Callback struct {
	Status    string `json:"status"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
	Reason    string `json:"reason"`
}

const (
	CallbackSuccess   = "success"
	CallbackFailed    = "failed"
	CallbackCancelled = "cancelled"
)

// DefaultCancelReason is used when the buyer dismisses checkout without a
// gateway error.
const DefaultCancelReason = "Payment cancelled by user"

// Outcome is the resolved result of one payment attempt: Success or Failure.
type Outcome interface {
	isOutcome()
}

type Success struct {
	PaymentID string
	OrderID   string
	Signature string
	Method    string
}

type Failure struct {
	Reason string
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// Gateway is the external payment provider.
type Gateway interface {
	Name() string
	OpenCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	ResolveCallback(ctx context.Context, booking models.Booking, cb Callback) (Outcome, error)
}

// WebhookResult is a verified provider notification about a booking. An empty
// BookingID means the event is not one we act on.
type WebhookResult struct {
	EventType string
	BookingID string
	Outcome   Outcome
}

// WebhookVerifier is implemented by gateways that push payment results.
type WebhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (*WebhookResult, error)
}

// MinorUnits converts whole currency units to the gateway's smallest unit.
func MinorUnits(amount int64) int64 {
	return amount * 100
}
