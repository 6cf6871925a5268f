package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cricketbook/internal/auth"
	"cricketbook/internal/booking"
	"cricketbook/internal/logger"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxWebhookBody = 65536

type Handler struct {
	BookingService *booking.BookingService
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.BookingService, logger *logger.Logger) *Handler {
	return &Handler{BookingService: bookingService, Logger: logger}
}

type checkoutRequest struct {
	MatchID string `json:"matchId"`
	Seats   []int  `json:"seats"`
}

// Routes mounts the buyer endpoints under /api/bookings. The caller must be
// signed in.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.StartCheckout)
	r.Get("/me", h.ListMyBookings)
	r.Post("/{bookingId}/payment", h.CompletePayment)
	r.Get("/{bookingId}/qr.png", h.TicketQR)
	r.Get("/{bookingId}/ticket.pdf", h.TicketPDF)
}

// AdminRoutes mounts the confirmed booking listing under /api/admin/bookings.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.ListConfirmedBookings)
}

func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid booking JSON", err)
		return
	}

	res, err := h.BookingService.StartCheckout(r.Context(), auth.SessionFrom(r.Context()), req.MatchID, req.Seats)
	if err != nil {
		h.fail(w, "StartCheckout", "Could not start checkout", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Booking created, complete payment to confirm", res)
}

func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var cb booking.Callback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid payment JSON", err)
		return
	}

	b, err := h.BookingService.CompletePayment(r.Context(), auth.SessionFrom(r.Context()), bookingID, cb)
	if err != nil {
		h.fail(w, "CompletePayment", "Payment was not completed", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Booking confirmed", b)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.BookingService.ListMyBookings(r.Context(), auth.SessionFrom(r.Context()))
	if err != nil {
		h.fail(w, "ListMyBookings", "Failed to load bookings", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Bookings retrieved", list)
}

func (h *Handler) ListConfirmedBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.BookingService.ListConfirmedBookings(r.Context())
	if err != nil {
		h.fail(w, "ListConfirmedBookings", "Failed to load bookings", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Bookings retrieved", list)
}

func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	png, err := h.BookingService.TicketQR(r.Context(), auth.SessionFrom(r.Context()), bookingID)
	if err != nil {
		h.fail(w, "TicketQR", "Ticket not available", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) TicketPDF(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	pdf, err := h.BookingService.TicketPDF(r.Context(), auth.SessionFrom(r.Context()), bookingID)
	if err != nil {
		h.fail(w, "TicketPDF", "Ticket not available", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ticket-%s.pdf", bookingID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// HandleStripeWebhook is mounted outside the auth middleware; Stripe
// authenticates by signature.
func (h *Handler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.Logger.Error("WEBHOOK", fmt.Sprintf("Error reading request body: %v", err))
		utils.WriteError(w, http.StatusServiceUnavailable, "Error reading request body", err)
		return
	}

	err = h.BookingService.HandlePaymentWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		var whErr *booking.WebhookError
		if errors.As(err, &whErr) {
			h.Logger.Error("WEBHOOK", fmt.Sprintf("[%s] %s", whErr.Category, whErr.InternalError))
			utils.WriteJSON(w, whErr.StatusCode, utils.ErrorResponse(whErr.PublicError, ""))
			return
		}
		h.Logger.Error("WEBHOOK", err.Error())
		utils.WriteError(w, http.StatusInternalServerError, "Webhook processing error", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// StatusFor extends the shared mapping with the payment outcomes.
func StatusFor(err error) int {
	var confErr *booking.ConfirmationError
	switch {
	case errors.Is(err, booking.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.As(err, &confErr), errors.Is(err, booking.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, booking.ErrNotConfirmed):
		return http.StatusConflict
	default:
		return utils.StatusFor(err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op, message string, err error) {
	status := StatusFor(err)

	var confErr *booking.ConfirmationError
	if errors.As(err, &confErr) {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		resp := utils.ErrorResponse("Payment received but the booking could not be confirmed. Contact support with your payment reference.", err.Error())
		resp.Data = map[string]string{"paymentId": confErr.PaymentID, "bookingId": confErr.BookingID}
		utils.WriteJSON(w, status, resp)
		return
	}

	if status >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, message, err)
}
