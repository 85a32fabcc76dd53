package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pokeslot/slotserver/internal/dependencies/clock"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// GuestUsername is the placeholder name surfaced for guest sessions
const GuestUsername = "Guest"

// sessionTokenBytes is the entropy of a session token before encoding
const sessionTokenBytes = 32

// ResolvedSession is the live view of a session: for registered users the
// username and coins come from the user row at resolve time, so stat changes
// are visible to the next resolve.
type ResolvedSession struct {
	ID        model.SessionID
	Username  string
	Coins     int64
	ExpiresAt time.Time
	Principal model.Principal
}

// IsGuest reports whether the session belongs to a guest principal
func (r *ResolvedSession) IsGuest() bool {
	_, guest := r.Principal.(model.GuestPrincipal)
	return guest
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Service handles credentials and session lifecycle
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	sessionDuration time.Duration
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
	}
}

// Register creates a user account plus its leaderboard entry and issues a
// session. Returns model.ErrUsernameExists when the name is taken; the
// storage layer enforces that with a constraint rather than a pre-check.
func (s *Service) Register(ctx context.Context, username, password, email string) (model.UserID, model.SessionID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	now := s.clock.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Coins:        model.StartingCoins,
		CreatedAt:    now,
		LastLogin:    now,
	}

	userID, err := s.storage.CreateUser(ctx, user)
	if err != nil {
		return 0, "", err
	}

	sessionID, err := s.createUserSession(ctx, userID)
	if err != nil {
		return 0, "", err
	}
	return userID, sessionID, nil
}

// Login authenticates a registered user and issues a session. The stored
// hash is compared against the supplied password; plaintext is never
// compared, and an unknown username reports the same error as a bad
// password.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, model.SessionID, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := s.clock.Now()
	if err := s.storage.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", err
	}
	user.LastLogin = now

	sessionID, err := s.createUserSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, sessionID, nil
}

// CreateGuestSession issues a session carrying fresh inline guest state.
// Guests have no durable identity; their stats live and die with the row.
func (s *Service) CreateGuestSession(ctx context.Context) (model.SessionID, model.GuestState, error) {
	state := model.NewGuestState()
	session := model.NewGuestSession(s.generateToken(), state, s.clock.Now().Add(s.sessionDuration))

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return "", model.GuestState{}, err
	}
	return session.ID, state, nil
}

// Resolve maps a token to its principal. Unknown and expired tokens are
// indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, id model.SessionID) (*ResolvedSession, error) {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if session.Expired(s.clock.Now()) {
		return nil, ErrInvalidSession
	}

	resolved := &ResolvedSession{
		ID:        session.ID,
		ExpiresAt: session.ExpiresAt,
		Principal: session.Principal(),
	}

	switch p := resolved.Principal.(type) {
	case model.GuestPrincipal:
		resolved.Username = GuestUsername
		resolved.Coins = p.State.Coins
	case model.RegisteredPrincipal:
		user, err := s.storage.GetUser(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		resolved.Username = user.Username
		resolved.Coins = user.Coins
	}

	return resolved, nil
}

// CleanExpiredSessions reclaims expired session rows (call periodically)
func (s *Service) CleanExpiredSessions(ctx context.Context) error {
	removed, err := s.storage.DeleteExpiredSessions(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("reclaimed expired sessions", slog.Int64("count", removed))
	}
	return nil
}

func (s *Service) createUserSession(ctx context.Context, userID model.UserID) (model.SessionID, error) {
	session := model.NewUserSession(s.generateToken(), userID, s.clock.Now().Add(s.sessionDuration))
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// generateToken returns a URL-safe token with 32 bytes of entropy
func (s *Service) generateToken() model.SessionID {
	b := make([]byte, sessionTokenBytes)
	_, _ = rand.Read(b)
	return model.SessionID(base64.RawURLEncoding.EncodeToString(b))
}
