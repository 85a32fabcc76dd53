package model

import "time"

// SessionID is an opaque, unguessable bearer token
type SessionID string

// GuestState is the ephemeral stats blob for a guest session.
// It lives inside exactly one session row and has no durable identity.
type GuestState struct {
	Coins      int64 `json:"coins"`
	TotalSpins int64 `json:"total_spins"`
	TotalWins  int64 `json:"total_wins"`
	BiggestWin int64 `json:"biggest_win"`
}

// NewGuestState returns the initial state for a fresh guest session
func NewGuestState() GuestState {
	return GuestState{Coins: StartingCoins}
}

// ApplyOutcome applies a spin outcome: coins are replaced with the
// caller-computed balance, spins increment, wins and biggest win only
// move on a winning spin.
func (g *GuestState) ApplyOutcome(newCoins, winAmount int64) {
	g.Coins = newCoins
	g.TotalSpins++
	if winAmount > 0 {
		g.TotalWins++
		if winAmount > g.BiggestWin {
			g.BiggestWin = winAmount
		}
	}
}

// Session is a stored session row. A session is either guest-mode with an
// inline GuestState and no user reference, or registered-mode with a UserID
// and no inline stats. Use NewUserSession/NewGuestSession to keep that
// invariant.
type Session struct {
	ID        SessionID
	ExpiresAt time.Time
	IsGuest   bool
	UserID    UserID      // set when registered
	Guest     *GuestState // set when guest
}

// NewUserSession creates a registered-mode session row
func NewUserSession(id SessionID, userID UserID, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		ExpiresAt: expiresAt,
		UserID:    userID,
	}
}

// NewGuestSession creates a guest-mode session row
func NewGuestSession(id SessionID, state GuestState, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		ExpiresAt: expiresAt,
		IsGuest:   true,
		Guest:     &state,
	}
}

// Principal is the resolved identity behind a session: exactly one of
// RegisteredPrincipal or GuestPrincipal. The closed interface stops callers
// from reading a user id off a guest or inline stats off a registered user.
type Principal interface {
	isPrincipal()
}

// RegisteredPrincipal references a durable user record
type RegisteredPrincipal struct {
	UserID UserID
}

// GuestPrincipal carries the inline guest stats
type GuestPrincipal struct {
	State GuestState
}

func (RegisteredPrincipal) isPrincipal() {}
func (GuestPrincipal) isPrincipal()      {}

// Principal returns the tagged variant for this session row
func (s *Session) Principal() Principal {
	if s.IsGuest {
		state := GuestState{}
		if s.Guest != nil {
			state = *s.Guest
		}
		return GuestPrincipal{State: state}
	}
	return RegisteredPrincipal{UserID: s.UserID}
}

// Expired reports whether the session is expired at the given instant.
// Expired sessions must be treated identically to unknown ones.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
