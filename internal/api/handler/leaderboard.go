package handler

import (
	"net/http"
	"strconv"

	"github.com/pokeslot/slotserver/internal/api/apierr"
	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/services/leaderboard"
)

// LeaderboardHandler serves the ranked leaderboard view
type LeaderboardHandler struct {
	projector *leaderboard.Projector
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(projector *leaderboard.Projector) *LeaderboardHandler {
	return &LeaderboardHandler{
		projector: projector,
	}
}

// Leaderboard handles GET /api/leaderboard
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.projector.Top(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}
