package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pokeslot/slotserver/internal/api/apierr"
	"github.com/pokeslot/slotserver/internal/api/request"
	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/auth"
)

// AuthHandler handles registration, login, guest entry and session checks
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	userID, sessionID, err := h.authService.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegisterResponse{
		Success:   true,
		UserID:    int64(userID),
		SessionID: string(sessionID),
	})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username and password are required"))
		return
	}

	user, sessionID, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginResponse{
		Success: true,
		User: response.UserInfo{
			ID:       int64(user.ID),
			Username: user.Username,
			Coins:    user.Coins,
		},
		SessionID: string(sessionID),
	})
}

// Guest handles POST /api/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	sessionID, state, err := h.authService.CreateGuestSession(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuestResponse{
		Success:   true,
		SessionID: string(sessionID),
		User: response.GuestInfo{
			Username: auth.GuestUsername,
			Coins:    state.Coins,
			IsGuest:  true,
		},
	})
}

// Session handles GET /api/session?session_id=...
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		apierr.WriteError(w, apierr.NewFailure("No session ID provided"))
		return
	}

	resolved, err := h.authService.Resolve(r.Context(), model.SessionID(sessionID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromResolved(resolved))
}
