package booking

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrPaymentFailed = errors.New("payment failed")
	ErrNotConfirmed  = errors.New("booking is not confirmed")
	ErrGateway       = errors.New("payment gateway error")
)

// PaymentFailedError leaves the booking pending.
type PaymentFailedError struct {
	BookingID string
	Reason    string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment failed for booking %s: %s", e.BookingID, e.Reason)
}

func (e *PaymentFailedError) Is(target error) bool {
	return target == ErrPaymentFailed
}

// ConfirmationError means the gateway took the money but the booking could not
// be marked confirmed. PaymentID is the reference support needs to reconcile
// by hand.
type ConfirmationError struct {
	BookingID string
	PaymentID string
	Err       error
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("payment %s succeeded but booking %s could not be confirmed: %v", e.PaymentID, e.BookingID, e.Err)
}

func (e *ConfirmationError) Unwrap() error {
	return e.Err
}

// WebhookError represents an error that occurred during webhook processing
type WebhookError struct {
	Category      string // "configuration", "validation", "processing"
	StatusCode    int
	PublicError   string // safe to expose to clients
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

func (e *WebhookError) Unwrap() error {
	return e.OriginalErr
}

func webhookValidationError(public string, err error) *WebhookError {
	return &WebhookError{
		Category:      "validation",
		StatusCode:    http.StatusBadRequest,
		PublicError:   public,
		InternalError: fmt.Sprintf("%s: %v", public, err),
		OriginalErr:   err,
	}
}
