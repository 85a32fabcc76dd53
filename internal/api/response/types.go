package response

import (
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/auth"
)

// RegisterResponse is the response for POST /api/register
type RegisterResponse struct {
	Success   bool   `json:"success"`
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
}

// UserInfo is the authenticated user summary returned by login
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
}

// LoginResponse is the response for POST /api/login
type LoginResponse struct {
	Success   bool     `json:"success"`
	User      UserInfo `json:"user"`
	SessionID string   `json:"session_id"`
}

// GuestInfo is the fixed identity surfaced for a new guest
type GuestInfo struct {
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
	IsGuest  bool   `json:"is_guest"`
}

// GuestResponse is the response for POST /api/guest
type GuestResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"session_id"`
	User      GuestInfo `json:"user"`
}

// UpdateStatsResponse is the response for POST /api/update-stats
type UpdateStatsResponse struct {
	Success bool `json:"success"`
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Username   string `json:"username"`
	Coins      int64  `json:"coins"`
	TotalWins  int64  `json:"total_wins"`
	BiggestWin int64  `json:"biggest_win"`
}

// LeaderboardResponse is the response for GET /api/leaderboard
type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// LeaderboardFromModel converts leaderboard entries to their wire shape
func LeaderboardFromModel(entries []model.LeaderboardEntry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Username:   e.Username,
			Coins:      e.Coins,
			TotalWins:  e.TotalWins,
			BiggestWin: e.BiggestWin,
		}
	}
	return LeaderboardResponse{Leaderboard: out}
}

// SessionInfo is the resolved session view for GET /api/session
type SessionInfo struct {
	UserID    *int64            `json:"user_id"`
	IsGuest   bool              `json:"is_guest"`
	Username  string            `json:"username"`
	Coins     int64             `json:"coins"`
	GuestData *model.GuestState `json:"guest_data"`
}

// SessionResponse is the response for GET /api/session
type SessionResponse struct {
	Success bool        `json:"success"`
	Session SessionInfo `json:"session"`
}

// SessionFromResolved converts a resolved session to its wire shape.
// Exactly one of user_id or guest_data is non-null, matching the principal.
func SessionFromResolved(rs *auth.ResolvedSession) SessionResponse {
	info := SessionInfo{
		Username: rs.Username,
		Coins:    rs.Coins,
	}

	switch p := rs.Principal.(type) {
	case model.RegisteredPrincipal:
		id := int64(p.UserID)
		info.UserID = &id
	case model.GuestPrincipal:
		info.IsGuest = true
		state := p.State
		info.GuestData = &state
	}

	return SessionResponse{Success: true, Session: info}
}
