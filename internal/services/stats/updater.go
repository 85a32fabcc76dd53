package stats

import (
	"context"
	"log/slog"

	"github.com/pokeslot/slotserver/internal/dependencies/clock"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/auth"
	"github.com/pokeslot/slotserver/internal/storage"
)

// Updater applies spin outcomes to whichever store backs the session's
// principal: the durable user row (plus its leaderboard entry) for
// registered players, or the inline guest blob for guests.
type Updater struct {
	storage storage.Storage
	auth    *auth.Service
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new stats updater
func New(storage storage.Storage, authService *auth.Service, clk clock.Clock, logger *slog.Logger) *Updater {
	return &Updater{
		storage: storage,
		auth:    authService,
		clock:   clk,
		logger:  logger,
	}
}

// RecordOutcome records one spin against the session's principal. newCoins
// is the post-spin balance computed by the caller; winAmount > 0 marks a
// winning spin. Returns auth.ErrInvalidSession for unknown or expired
// tokens; any other error is a storage failure and is surfaced as-is.
func (u *Updater) RecordOutcome(ctx context.Context, sessionID model.SessionID, newCoins, winAmount int64) error {
	resolved, err := u.auth.Resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	switch p := resolved.Principal.(type) {
	case model.GuestPrincipal:
		// Guest state lives inside exactly one session row, so this
		// read-modify-write cannot race another session.
		state := p.State
		state.ApplyOutcome(newCoins, winAmount)
		return u.storage.UpdateGuestState(ctx, sessionID, state)
	case model.RegisteredPrincipal:
		return u.storage.ApplyOutcome(ctx, p.UserID, newCoins, winAmount, u.clock.Now())
	}
	return nil
}
