package leaderboard

import (
	"context"
	"log/slog"

	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/storage"
)

// DefaultLimit is the number of entries returned when none is requested
const DefaultLimit = 10

// Projector serves the ranking view derived from registered users' stats.
// It is read-only; the projection itself is maintained in lockstep with
// stat writes by the storage layer.
type Projector struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new leaderboard projector
func New(storage storage.Storage, logger *slog.Logger) *Projector {
	return &Projector{
		storage: storage,
		logger:  logger,
	}
}

// Top returns up to limit entries ordered by coins descending, ties broken
// by total wins descending. A non-positive limit falls back to DefaultLimit.
func (p *Projector) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return p.storage.TopEntries(ctx, limit)
}
