package request

// RegisterRequest is the request body for POST /api/register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest is the request body for POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateStatsRequest is the request body for POST /api/update-stats.
// Coins is the caller-computed post-spin balance; a pointer distinguishes
// an explicit zero balance from a missing field.
type UpdateStatsRequest struct {
	SessionID string `json:"session_id"`
	Coins     *int64 `json:"coins"`
	WinAmount int64  `json:"win_amount,omitempty"`
}
