package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metaBookingID = "bookingId"
	metaMatchID   = "matchId"
)

// StripeGateway takes payment through Stripe PaymentIntents. The client
// confirms the intent with the returned client secret and reports back the
// intent id.
type StripeGateway struct {
	currency       string
	publishableKey string
	webhookSecret  string
	logger         *logger.Logger
}

// NewStripeGateway initializes the Stripe API with the secret key.
func NewStripeGateway(cfg config.PaymentConfig, logger *logger.Logger) *StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return &StripeGateway{
		currency:       strings.ToLower(cfg.Currency),
		publishableKey: cfg.StripePublishableKey,
		webhookSecret:  cfg.StripeWebhookSecret,
		logger:         logger,
	}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) OpenCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(MinorUnits(req.Amount)),
		Currency:    stripe.String(g.currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.BuyerEmail != "" {
		params.ReceiptEmail = stripe.String(req.BuyerEmail)
	}
	params.Context = ctx
	params.AddMetadata(metaBookingID, req.BookingID)
	params.AddMetadata(metaMatchID, req.MatchID)
	params.AddMetadata("buyerName", req.BuyerName)
	params.AddMetadata("buyerPhone", req.BuyerPhone)

	intent, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("PAYMENT", fmt.Sprintf("Failed to create Stripe payment intent for booking %s: %v", req.BookingID, err))
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrGateway, err)
	}

	g.logger.LogPayment("INTENT", req.BookingID, fmt.Sprintf("created %s (%s %d)", intent.ID, strings.ToUpper(g.currency), req.Amount))
	return &Checkout{
		Provider:       g.Name(),
		OrderID:        intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: g.publishableKey,
		AmountMinor:    intent.Amount,
		Currency:       strings.ToUpper(string(intent.Currency)),
		Description:    req.Description,
	}, nil
}

// ResolveCallback never trusts the client's claim of success: the intent is
// fetched from Stripe and must have succeeded for this booking.
func (g *StripeGateway) ResolveCallback(ctx context.Context, booking models.Booking, cb Callback) (Outcome, error) {
	switch cb.Status {
	case CallbackSuccess:
	case CallbackFailed, CallbackCancelled:
		return Failure{Reason: reasonOrDefault(cb.Reason)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown callback status %q", ErrGateway, cb.Status)
	}

	intentID := cb.PaymentID
	if intentID == "" {
		intentID = booking.PaymentOrderID
	}
	if intentID == "" {
		return Failure{Reason: "no payment reference reported"}, nil
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		g.logger.Error("PAYMENT", fmt.Sprintf("Failed to retrieve Stripe payment intent %s: %v", intentID, err))
		return nil, fmt.Errorf("%w: retrieve payment intent: %v", ErrGateway, err)
	}

	return intentOutcome(intent, booking.ID), nil
}

func intentOutcome(intent *stripe.PaymentIntent, bookingID string) Outcome {
	if intent.Metadata[metaBookingID] != bookingID {
		return Failure{Reason: "payment does not belong to this booking"}
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return Success{PaymentID: intent.ID, OrderID: intent.ID, Method: paymentMethod(intent)}
	case stripe.PaymentIntentStatusProcessing:
		return Failure{Reason: "payment is still processing"}
	default:
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			return Failure{Reason: intent.LastPaymentError.Msg}
		}
		return Failure{Reason: fmt.Sprintf("payment not completed (status %s)", intent.Status)}
	}
}

func paymentMethod(intent *stripe.PaymentIntent) string {
	if intent.PaymentMethod != nil && intent.PaymentMethod.Type != "" {
		return string(intent.PaymentMethod.Type)
	}
	if len(intent.PaymentMethodTypes) > 0 {
		return intent.PaymentMethodTypes[0]
	}
	return "card"
}

// ParseWebhook verifies a Stripe webhook and maps payment intent events to
// booking outcomes.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookResult, error) {
	if g.webhookSecret == "" {
		return nil, &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, opts)
	if err != nil {
		return nil, webhookValidationError("Webhook signature verification failed", err)
	}

	result := &WebhookResult{EventType: string(event.Type)}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, webhookValidationError("Invalid event data", err)
		}

		bookingID := intent.Metadata[metaBookingID]
		if bookingID == "" {
			return nil, webhookValidationError("Invalid payment intent data", fmt.Errorf("payment intent %s has no %s metadata", intent.ID, metaBookingID))
		}

		result.BookingID = bookingID
		result.Outcome = intentOutcome(&intent, bookingID)
	}

	return result, nil
}
