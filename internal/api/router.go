package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pokeslot/slotserver/internal/api/handler"
	apimiddleware "github.com/pokeslot/slotserver/internal/api/middleware"
	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/middleware"
	"github.com/pokeslot/slotserver/internal/services/auth"
	"github.com/pokeslot/slotserver/internal/services/leaderboard"
	"github.com/pokeslot/slotserver/internal/services/stats"
)

// RouterConfig holds the dependencies the API routes need
type RouterConfig struct {
	AuthService          *auth.Service
	StatsUpdater         *stats.Updater
	LeaderboardProjector *leaderboard.Projector
	StaticDir            string
	Logger               *slog.Logger
}

// NewRouter builds the full HTTP handler, routes and middleware included
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	statsHandler := handler.NewStatsHandler(cfg.StatsUpdater)
	lbHandler := handler.NewLeaderboardHandler(cfg.LeaderboardProjector)

	r := mux.NewRouter()

	r.HandleFunc("/api/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/guest", authHandler.Guest).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/update-stats", statsHandler.UpdateStats).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/leaderboard", lbHandler.Leaderboard).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/session", authHandler.Session).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/health", healthHandler).Methods(http.MethodGet, http.MethodOptions)

	r.PathPrefix("/api/").HandlerFunc(notFoundHandler)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	}

	// Middleware wraps the whole router so unknown routes still get
	// CORS headers and request logs.
	var h http.Handler = r
	h = apimiddleware.CORS()(h)
	h = middleware.Logging(cfg.Logger)(h)
	h = apimiddleware.Recovery(cfg.Logger)(h)

	return h
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusNotFound, map[string]string{"error": "Endpoint not found"})
}
