package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pokeslot/slotserver/internal/api/apierr"
	"github.com/pokeslot/slotserver/internal/api/request"
	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/stats"
)

// StatsHandler handles spin outcome updates
type StatsHandler struct {
	updater *stats.Updater
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(updater *stats.Updater) *StatsHandler {
	return &StatsHandler{
		updater: updater,
	}
}

// UpdateStats handles POST /api/update-stats
func (h *StatsHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.SessionID == "" {
		apierr.WriteError(w, apierr.NewFailure("No session ID"))
		return
	}
	if req.Coins == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("coins is required"))
		return
	}

	err := h.updater.RecordOutcome(r.Context(), model.SessionID(req.SessionID), *req.Coins, req.WinAmount)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UpdateStatsResponse{Success: true})
}
