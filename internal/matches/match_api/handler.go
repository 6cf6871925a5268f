package match_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cricketbook/internal/logger"
	"cricketbook/internal/matches"
	"cricketbook/internal/models"
	"cricketbook/internal/sse"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	MatchService *matches.MatchService
	Hub          *sse.Hub
	Logger       *logger.Logger
}

func NewHandler(matchService *matches.MatchService, hub *sse.Hub, logger *logger.Logger) *Handler {
	return &Handler{MatchService: matchService, Hub: hub, Logger: logger}
}

// PublicRoutes mounts the catalog under /api/matches.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/", h.ListMatches)
	r.Get("/stream", h.StreamMatches)
	r.Get("/{matchId}", h.GetMatch)
}

// AdminRoutes mounts match management under /api/admin/matches.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.ListAllMatches)
	r.Post("/", h.CreateMatch)
	r.Put("/{matchId}", h.UpdateMatch)
	r.Delete("/{matchId}", h.DeleteMatch)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	list, err := h.MatchService.ListMatches(r.Context())
	if err != nil {
		h.fail(w, "ListMatches", "Failed to load matches", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Matches retrieved", list)
}

func (h *Handler) ListAllMatches(w http.ResponseWriter, r *http.Request) {
	list, err := h.MatchService.ListAllMatches(r.Context())
	if err != nil {
		h.fail(w, "ListAllMatches", "Failed to load matches", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Matches retrieved", list)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	match, err := h.MatchService.GetMatch(r.Context(), matchID)
	if err != nil {
		h.fail(w, "GetMatch", "Match not found", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Match retrieved", match)
}

// StreamMatches pushes the full public listing whenever a match changes.
func (h *Handler) StreamMatches(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "StreamMatches: client connected")
	load := func(ctx context.Context) (interface{}, error) {
		return h.MatchService.ListMatches(ctx)
	}
	if err := sse.ServeSnapshots(w, r, h.Hub, "matches", load, models.TopicMatches); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("StreamMatches: stream ended: %v", err))
	}
	h.Logger.Info("API", "StreamMatches: client disconnected")
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input models.MatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid match JSON", err)
		return
	}

	match, err := h.MatchService.CreateMatch(r.Context(), input)
	if err != nil {
		h.fail(w, "CreateMatch", "Could not create match", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Match created", match)
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	var input models.MatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid match JSON", err)
		return
	}

	match, err := h.MatchService.UpdateMatch(r.Context(), matchID, input)
	if err != nil {
		h.fail(w, "UpdateMatch", "Could not update match", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Match updated", match)
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchId")

	if err := h.MatchService.DeleteMatch(r.Context(), matchID); err != nil {
		h.fail(w, "DeleteMatch", "Could not delete match", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Match deleted", map[string]string{"id": matchID})
}

func (h *Handler) fail(w http.ResponseWriter, op, message string, err error) {
	status := utils.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, message, err)
}
