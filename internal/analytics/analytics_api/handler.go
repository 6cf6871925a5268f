package analytics_api

import (
	"context"
	"fmt"
	"net/http"

	"cricketbook/internal/analytics"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	"cricketbook/internal/sse"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *analytics.AnalyticsService
	Hub     *sse.Hub
	Logger  *logger.Logger
}

func NewHandler(service *analytics.AnalyticsService, hub *sse.Hub, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Hub: hub, Logger: logger}
}

// Routes mounts the dashboard under /api/admin/stats.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetStats)
	r.Get("/stream", h.StreamStats)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetStats: %v", err))
		utils.WriteError(w, utils.StatusFor(err), "Failed to compute stats", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Stats computed", stats)
}

// StreamStats recomputes the dashboard from scratch on every match or booking
// change.
func (h *Handler) StreamStats(w http.ResponseWriter, r *http.Request) {
	load := func(ctx context.Context) (interface{}, error) {
		return h.Service.Stats(ctx)
	}
	if err := sse.ServeSnapshots(w, r, h.Hub, "stats", load, models.TopicMatches, models.TopicBookings); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("StreamStats: stream ended: %v", err))
	}
}
