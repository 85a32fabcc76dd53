package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics become the uniform JSON failure body.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	response.Fail(w, http.StatusInternalServerError, "Internal server error")
}
