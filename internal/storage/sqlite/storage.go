package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface.
// It is the default backend: a single file holds users, sessions and the
// leaderboard projection.
type Storage struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and runs migrations
func New(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer at a time; funnel all access through a
	// single connection so concurrent requests serialize instead of
	// returning SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Storage{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			email TEXT,
			coins INTEGER DEFAULT 100,
			total_spins INTEGER DEFAULT 0,
			total_wins INTEGER DEFAULT 0,
			biggest_win INTEGER DEFAULT 0,
			created_at TIMESTAMP,
			last_login TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id INTEGER,
			expires_at TIMESTAMP NOT NULL,
			is_guest BOOLEAN DEFAULT FALSE,
			guest_data TEXT,
			FOREIGN KEY (user_id) REFERENCES users (id)
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			coins INTEGER NOT NULL,
			total_wins INTEGER NOT NULL,
			biggest_win INTEGER NOT NULL,
			updated_at TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users (id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) (model.UserID, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, coins, total_spins, total_wins, biggest_win, created_at, last_login)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, nullableString(user.Email),
		user.Coins, user.TotalSpins, user.TotalWins, user.BiggestWin,
		user.CreatedAt, user.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrUsernameExists
		}
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	// Leaderboard entry is created in the same transaction: no user row
	// may exist without its projection.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO leaderboard (user_id, username, coins, total_wins, biggest_win, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, user.Username, user.Coins, user.TotalWins, user.BiggestWin, user.CreatedAt,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return model.UserID(id), nil
}

const userColumns = `id, username, password_hash, email, coins, total_spins, total_wins, biggest_win, created_at, last_login`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var email sql.NullString
	var coins sql.NullInt64
	var createdAt, lastLogin sql.NullTime

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &coins,
		&u.TotalSpins, &u.TotalWins, &u.BiggestWin, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	u.Email = email.String
	// Legacy rows may carry a NULL balance; treat it as the starting grant
	u.Coins = model.StartingCoins
	if coins.Valid {
		u.Coins = coins.Int64
	}
	u.CreatedAt = createdAt.Time
	u.LastLogin = lastLogin.Time
	return &u, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *Storage) TouchLastLogin(ctx context.Context, id model.UserID, at time.Time) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *Storage) ApplyOutcome(ctx context.Context, id model.UserID, newCoins, winAmount int64, at time.Time) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Increments happen in SQL so concurrent outcomes both land even when
	// the last-committed balance wins.
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET
			coins = ?,
			total_spins = total_spins + 1,
			total_wins = total_wins + ?,
			biggest_win = CASE WHEN ? > biggest_win THEN ? ELSE biggest_win END
		 WHERE id = ?`,
		newCoins, winIncrement(winAmount), winAmount, winAmount, id)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE leaderboard SET
			coins = ?,
			total_wins = total_wins + ?,
			biggest_win = CASE WHEN ? > biggest_win THEN ? ELSE biggest_win END,
			updated_at = ?
		 WHERE user_id = ?`,
		newCoins, winIncrement(winAmount), winAmount, winAmount, at, id)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	return tx.Commit()
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	var userID sql.NullInt64
	if !session.IsGuest {
		userID = sql.NullInt64{Int64: int64(session.UserID), Valid: true}
	}

	var guestData sql.NullString
	if session.Guest != nil {
		data, err := json.Marshal(session.Guest)
		if err != nil {
			return err
		}
		guestData = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (session_id, user_id, expires_at, is_guest, guest_data)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID, userID, session.ExpiresAt, session.IsGuest, guestData)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT session_id, user_id, expires_at, is_guest, guest_data FROM sessions WHERE session_id = ?`, id)

	var session model.Session
	var userID sql.NullInt64
	var guestData sql.NullString

	err := row.Scan(&session.ID, &userID, &session.ExpiresAt, &session.IsGuest, &guestData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	if userID.Valid {
		session.UserID = model.UserID(userID.Int64)
	}
	if guestData.Valid {
		var state model.GuestState
		if err := json.Unmarshal([]byte(guestData.String), &state); err != nil {
			return nil, err
		}
		session.Guest = &state
	}
	return &session, nil
}

func (s *Storage) UpdateGuestState(ctx context.Context, id model.SessionID, state model.GuestState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	result, err := s.conn.ExecContext(ctx,
		`UPDATE sessions SET guest_data = ? WHERE session_id = ?`, string(data), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Leaderboard operations

func (s *Storage) TopEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT user_id, username, coins, total_wins, biggest_win, updated_at
		 FROM leaderboard
		 ORDER BY coins DESC, total_wins DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		var updatedAt sql.NullTime
		if err := rows.Scan(&e.UserID, &e.Username, &e.Coins, &e.TotalWins, &e.BiggestWin, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt = updatedAt.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Maintenance

// Reset drops all tables and recreates them empty
func (s *Storage) Reset(ctx context.Context) error {
	for _, table := range []string{"sessions", "leaderboard", "users"} {
		if _, err := s.conn.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return s.migrate()
}

func (s *Storage) Close() error {
	return s.conn.Close()
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func winIncrement(winAmount int64) int64 {
	if winAmount > 0 {
		return 1
	}
	return 0
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
