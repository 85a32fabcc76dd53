package storage

import (
	"context"
	"time"

	"github.com/pokeslot/slotserver/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations must provide row-level atomicity for the mutating
// operations: CreateUser inserts the user and its leaderboard entry as one
// unit (and enforces username uniqueness with a constraint, not a pre-check),
// and ApplyOutcome updates the user row and its leaderboard entry as one unit
// with increment semantics that survive concurrent callers.
type Storage interface {
	// User operations
	// CreateUser assigns the new user's ID and creates the matching
	// leaderboard entry. Returns model.ErrUsernameExists on collision.
	CreateUser(ctx context.Context, user *model.User) (model.UserID, error)
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id model.UserID, at time.Time) error
	// ApplyOutcome sets coins to the caller-computed balance, increments
	// total_spins, increments total_wins when winAmount > 0 and raises
	// biggest_win to winAmount if larger, on both the user row and the
	// leaderboard entry. The leaderboard entry is stamped with at.
	ApplyOutcome(ctx context.Context, id model.UserID, newCoins, winAmount int64, at time.Time) error

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	// GetSession returns the raw session row; expiry is the caller's concern.
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	UpdateGuestState(ctx context.Context, id model.SessionID, state model.GuestState) error
	// DeleteExpiredSessions reclaims rows whose expiry is at or before the
	// given instant and reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	// Leaderboard operations
	// TopEntries returns up to limit entries ordered by coins descending,
	// ties broken by total wins descending.
	TopEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)

	// Reset destructively reinitializes the store to an empty state
	Reset(ctx context.Context) error

	Close() error
}
