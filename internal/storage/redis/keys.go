package redis

import (
	"fmt"

	"github.com/pokeslot/slotserver/internal/model"
)

// Key prefix for all slot-game data
const keyPrefix = "slotserver"

// userKey returns the Redis key for a user's stats hash
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%d", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// nextUserIDKey returns the Redis key for the user id counter
func nextUserIDKey() string {
	return fmt.Sprintf("%s:next_user_id", keyPrefix)
}

// sessionKey returns the Redis key for a session row
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// leaderboardKey returns the Redis key for a user's leaderboard entry hash
func leaderboardKey(id model.UserID) string {
	return fmt.Sprintf("%s:lb:%d", keyPrefix, id)
}

// leaderboardIndexKey returns the Redis key for the SET of leaderboard user ids
func leaderboardIndexKey() string {
	return fmt.Sprintf("%s:idx:lb", keyPrefix)
}
