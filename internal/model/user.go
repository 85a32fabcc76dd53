package model

import "time"

// UserID uniquely identifies a registered user
type UserID int64

// StartingCoins is the balance every new player (registered or guest) begins with
const StartingCoins = 100

// User is the durable record for a registered player.
// Stats are mutated only via the stats updater or the registration flow.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string // bcrypt hash, opaque to everything but the auth service
	Email        string
	Coins        int64
	TotalSpins   int64
	TotalWins    int64
	BiggestWin   int64 // monotonically non-decreasing
	CreatedAt    time.Time
	LastLogin    time.Time
}
