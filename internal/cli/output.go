package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		o.printRegisterResult(v)
	case LoginResult:
		o.printLoginResult(v)
	case GuestResult:
		o.printGuestResult(v)
	case SessionResult:
		o.printSessionResult(v)
	case LeaderboardResult:
		o.printLeaderboardResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RegisterResult response type (matches API)
type RegisterResult struct {
	Success   bool   `json:"success"`
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
}

// UserInfo response type
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
}

// LoginResult response type
type LoginResult struct {
	Success   bool     `json:"success"`
	User      UserInfo `json:"user"`
	SessionID string   `json:"session_id"`
}

// GuestInfo response type
type GuestInfo struct {
	Username string `json:"username"`
	Coins    int64  `json:"coins"`
	IsGuest  bool   `json:"is_guest"`
}

// GuestResult response type
type GuestResult struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"session_id"`
	User      GuestInfo `json:"user"`
}

// GuestStats response type
type GuestStats struct {
	Coins      int64 `json:"coins"`
	TotalSpins int64 `json:"total_spins"`
	TotalWins  int64 `json:"total_wins"`
	BiggestWin int64 `json:"biggest_win"`
}

// SessionResult response type
type SessionResult struct {
	Success bool `json:"success"`
	Session struct {
		UserID    *int64      `json:"user_id,omitempty"`
		IsGuest   bool        `json:"is_guest"`
		Username  string      `json:"username"`
		Coins     int64       `json:"coins"`
		GuestData *GuestStats `json:"guest_data,omitempty"`
	} `json:"session"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Username   string `json:"username"`
	Coins      int64  `json:"coins"`
	TotalWins  int64  `json:"total_wins"`
	BiggestWin int64  `json:"biggest_win"`
}

// LeaderboardResult response type
type LeaderboardResult struct {
	Success     bool               `json:"success"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// SpinResult response type
type SpinResult struct {
	Success bool `json:"success"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRegisterResult(r RegisterResult) {
	fmt.Printf("Registered user %d\n", r.UserID)
	fmt.Printf("Session: %s\n", r.SessionID)
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Printf("Logged in as %s (%d)\n", l.User.Username, l.User.ID)
	fmt.Printf("Coins: %d\n", l.User.Coins)
	fmt.Printf("Session: %s\n", l.SessionID)
}

func (o *Output) printGuestResult(g GuestResult) {
	fmt.Printf("Playing as %s\n", g.User.Username)
	fmt.Printf("Coins: %d\n", g.User.Coins)
	fmt.Printf("Session: %s\n", g.SessionID)
}

func (o *Output) printSessionResult(s SessionResult) {
	switch {
	case s.Session.IsGuest:
		fmt.Printf("Guest session: %s\n", s.Session.Username)
	case s.Session.UserID != nil:
		fmt.Printf("User session: %s (%d)\n", s.Session.Username, *s.Session.UserID)
	default:
		fmt.Printf("User session: %s\n", s.Session.Username)
	}
	fmt.Printf("Coins: %d\n", s.Session.Coins)
	if s.Session.GuestData != nil {
		fmt.Printf("Spins: %d\n", s.Session.GuestData.TotalSpins)
		fmt.Printf("Wins: %d\n", s.Session.GuestData.TotalWins)
		fmt.Printf("Biggest Win: %d\n", s.Session.GuestData.BiggestWin)
	}
}

func (o *Output) printLeaderboardResult(l LeaderboardResult) {
	if len(l.Leaderboard) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}

	fmt.Printf("%-4s %-20s %10s %6s %12s\n", "#", "Player", "Coins", "Wins", "Biggest Win")
	for i, e := range l.Leaderboard {
		fmt.Printf("%-4d %-20s %10d %6d %12d\n", i+1, e.Username, e.Coins, e.TotalWins, e.BiggestWin)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
