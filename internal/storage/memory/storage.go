package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	nextUserID    model.UserID
	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	sessions      map[model.SessionID]*model.Session
	leaderboard   map[model.UserID]*model.LeaderboardEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	s := &Storage{}
	s.init()
	return s
}

func (s *Storage) init() {
	s.nextUserID = 0
	s.users = make(map[model.UserID]*model.User)
	s.usernameIndex = make(map[string]model.UserID)
	s.sessions = make(map[model.SessionID]*model.Session)
	s.leaderboard = make(map[model.UserID]*model.LeaderboardEntry)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) (model.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernameIndex[user.Username]; taken {
		return 0, model.ErrUsernameExists
	}

	s.nextUserID++
	stored := *user
	stored.ID = s.nextUserID

	s.users[stored.ID] = &stored
	s.usernameIndex[stored.Username] = stored.ID
	s.leaderboard[stored.ID] = &model.LeaderboardEntry{
		UserID:     stored.ID,
		Username:   stored.Username,
		Coins:      stored.Coins,
		TotalWins:  stored.TotalWins,
		BiggestWin: stored.BiggestWin,
		UpdatedAt:  stored.CreatedAt,
	}

	return stored.ID, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Storage) TouchLastLogin(ctx context.Context, id model.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	user.LastLogin = at
	return nil
}

func (s *Storage) ApplyOutcome(ctx context.Context, id model.UserID, newCoins, winAmount int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	entry, ok := s.leaderboard[id]
	if !ok {
		return model.ErrUserNotFound
	}

	user.Coins = newCoins
	user.TotalSpins++
	if winAmount > 0 {
		user.TotalWins++
		if winAmount > user.BiggestWin {
			user.BiggestWin = winAmount
		}
	}

	entry.Coins = user.Coins
	entry.TotalWins = user.TotalWins
	entry.BiggestWin = user.BiggestWin
	entry.UpdatedAt = at

	return nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	if session.Guest != nil {
		state := *session.Guest
		copied.Guest = &state
	}
	s.sessions[copied.ID] = &copied
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	copied := *session
	if session.Guest != nil {
		state := *session.Guest
		copied.Guest = &state
	}
	return &copied, nil
}

func (s *Storage) UpdateGuestState(ctx context.Context, id model.SessionID, state model.GuestState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	session.Guest = &state
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, session := range s.sessions {
		if !before.Before(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Leaderboard operations

func (s *Storage) TopEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.LeaderboardEntry, 0, len(s.leaderboard))
	for _, entry := range s.leaderboard {
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Coins != entries[j].Coins {
			return entries[i].Coins > entries[j].Coins
		}
		return entries[i].TotalWins > entries[j].TotalWins
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Maintenance

func (s *Storage) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return nil
}

func (s *Storage) Close() error {
	return nil
}
