package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Users and leaderboard entries are hashes so stat increments happen
// server-side; session keys carry a TTL matching their expiry so Redis
// reclaims expired rows on its own.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// applyOutcomeScript updates the user hash and its leaderboard entry as one
// atomic unit. KEYS[1] = user hash, KEYS[2] = leaderboard hash;
// ARGV = new coins, win amount, updated_at.
var applyOutcomeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], "coins", ARGV[1])
redis.call("HSET", KEYS[2], "coins", ARGV[1])
redis.call("HINCRBY", KEYS[1], "total_spins", 1)
local win = tonumber(ARGV[2])
if win > 0 then
	redis.call("HINCRBY", KEYS[1], "total_wins", 1)
	redis.call("HINCRBY", KEYS[2], "total_wins", 1)
	local best = tonumber(redis.call("HGET", KEYS[1], "biggest_win") or "0")
	if win > best then
		redis.call("HSET", KEYS[1], "biggest_win", ARGV[2])
		redis.call("HSET", KEYS[2], "biggest_win", ARGV[2])
	end
end
redis.call("HSET", KEYS[2], "updated_at", ARGV[3])
return 1
`)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) (model.UserID, error) {
	id, err := s.client.Incr(ctx, nextUserIDKey()).Result()
	if err != nil {
		return 0, err
	}
	userID := model.UserID(id)

	// SETNX on the username index is the uniqueness constraint; losing the
	// race means the name is taken and the allocated id is simply skipped.
	claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), id, 0).Result()
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, model.ErrUsernameExists
	}

	// MULTI/EXEC so the user hash and its leaderboard entry land together
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, userKey(userID), map[string]any{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"email":         user.Email,
		"coins":         user.Coins,
		"total_spins":   user.TotalSpins,
		"total_wins":    user.TotalWins,
		"biggest_win":   user.BiggestWin,
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
		"last_login":    user.LastLogin.Format(time.RFC3339Nano),
	})
	pipe.HSet(ctx, leaderboardKey(userID), map[string]any{
		"username":    user.Username,
		"coins":       user.Coins,
		"total_wins":  user.TotalWins,
		"biggest_win": user.BiggestWin,
		"updated_at":  user.CreatedAt.Format(time.RFC3339Nano),
	})
	pipe.SAdd(ctx, leaderboardIndexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the claimed name and any partial rows so a failed
		// registration does not block the username forever.
		cleanupCtx := context.WithoutCancel(ctx)
		_ = s.client.Del(cleanupCtx, usernameIndexKey(user.Username), userKey(userID), leaderboardKey(userID)).Err()
		_ = s.client.SRem(cleanupCtx, leaderboardIndexKey(), id).Err()
		return 0, err
	}

	return userID, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	fields, err := s.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrUserNotFound
	}
	return userFromFields(id, fields), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	idStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) TouchLastLogin(ctx context.Context, id model.UserID, at time.Time) error {
	exists, err := s.client.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrUserNotFound
	}
	return s.client.HSet(ctx, userKey(id), "last_login", at.Format(time.RFC3339Nano)).Err()
}

func (s *Storage) ApplyOutcome(ctx context.Context, id model.UserID, newCoins, winAmount int64, at time.Time) error {
	keys := []string{userKey(id), leaderboardKey(id)}
	updated, err := applyOutcomeScript.Run(ctx, s.client, keys,
		newCoins, winAmount, at.Format(time.RFC3339Nano)).Int()
	if err != nil {
		return err
	}
	if updated == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Already expired; nothing worth storing
		return nil
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) UpdateGuestState(ctx context.Context, id model.SessionID, state model.GuestState) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	session.Guest = &state

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	// Guest state is scoped to one session row, so a plain overwrite is
	// race-free; KEEPTTL preserves the expiry.
	return s.client.Set(ctx, sessionKey(id), data, redis.KeepTTL).Err()
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	// Session keys expire via TTL; Redis reclaims them itself
	return 0, nil
}

// Leaderboard operations

func (s *Storage) TopEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	ids, err := s.client.SMembers(ctx, leaderboardIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.LeaderboardEntry{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, err
		}
		cmds[i] = pipe.HGetAll(ctx, leaderboardKey(model.UserID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		id, _ := strconv.ParseInt(ids[i], 10, 64)
		entries = append(entries, entryFromFields(model.UserID(id), fields))
	}

	// The full set is small at this scale; sort in process
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

// Reset deletes every key under the slotserver prefix
func (s *Storage) Reset(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, keyPrefix+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Field parsing helpers

func userFromFields(id model.UserID, fields map[string]string) *model.User {
	return &model.User{
		ID:           id,
		Username:     fields["username"],
		PasswordHash: fields["password_hash"],
		Email:        fields["email"],
		Coins:        parseInt(fields["coins"]),
		TotalSpins:   parseInt(fields["total_spins"]),
		TotalWins:    parseInt(fields["total_wins"]),
		BiggestWin:   parseInt(fields["biggest_win"]),
		CreatedAt:    parseTime(fields["created_at"]),
		LastLogin:    parseTime(fields["last_login"]),
	}
}

func entryFromFields(id model.UserID, fields map[string]string) model.LeaderboardEntry {
	return model.LeaderboardEntry{
		UserID:     id,
		Username:   fields["username"],
		Coins:      parseInt(fields["coins"]),
		TotalWins:  parseInt(fields["total_wins"]),
		BiggestWin: parseInt(fields["biggest_win"]),
		UpdatedAt:  parseTime(fields["updated_at"]),
	}
}

func parseInt(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}
