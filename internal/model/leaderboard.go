package model

import "time"

// LeaderboardEntry is a read-optimized projection of a registered user's
// ranking stats. The user row stays authoritative; exactly one entry exists
// per registered user, created with the user and updated in lockstep with
// every stats update. Guests never appear here.
type LeaderboardEntry struct {
	UserID     UserID
	Username   string
	Coins      int64
	TotalWins  int64
	BiggestWin int64
	UpdatedAt  time.Time
}
