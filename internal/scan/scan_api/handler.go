package scan_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cricketbook/internal/auth"
	"cricketbook/internal/logger"
	"cricketbook/internal/scan"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	ScanService *scan.ScanService
	Logger      *logger.Logger
}

func NewHandler(scanService *scan.ScanService, logger *logger.Logger) *Handler {
	return &Handler{ScanService: scanService, Logger: logger}
}

type scanRequest struct {
	QRText string `json:"qrText"`
}

// Routes mounts the gate endpoints under /api/admin.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/scan", h.Scan)
	r.Get("/scans/{bookingId}", h.ListScans)
}

func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid scan JSON", err)
		return
	}

	result, err := h.ScanService.Scan(r.Context(), auth.SessionFrom(r.Context()), req.QRText)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("API", fmt.Sprintf("Scan: %v", err))
		}
		utils.WriteError(w, status, scanMessage(err), err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, result.Message, result)
}

func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	scans, err := h.ScanService.ListScans(r.Context(), bookingID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListScans: %v", err))
		utils.WriteError(w, utils.StatusFor(err), "Failed to load scans", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Scans retrieved", scans)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, scan.ErrInvalidTicket):
		return http.StatusBadRequest
	case errors.Is(err, scan.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, scan.ErrNotConfirmed):
		return http.StatusConflict
	default:
		return utils.StatusFor(err)
	}
}

func scanMessage(err error) string {
	switch {
	case errors.Is(err, scan.ErrInvalidTicket):
		return "Invalid QR code"
	case errors.Is(err, scan.ErrBookingNotFound):
		return "Booking not found"
	case errors.Is(err, scan.ErrNotConfirmed):
		return "Ticket not confirmed"
	default:
		return "Scan failed"
	}
}
