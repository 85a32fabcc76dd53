package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pokeslot/slotserver/internal/dependencies/mocks"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/auth"
	"github.com/pokeslot/slotserver/internal/storage/memory"
	"github.com/pokeslot/slotserver/internal/testutil"
)

type UpdaterSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	auth    *auth.Service
	updater *Updater
	ctx     context.Context
}

func TestUpdaterSuite(t *testing.T) {
	suite.Run(t, new(UpdaterSuite))
}

func (s *UpdaterSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.auth = auth.New(s.storage, s.clock, auth.DefaultConfig(), testutil.NopLogger())
	s.updater = New(s.storage, s.auth, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Registered principal tests

func (s *UpdaterSuite) TestRecordOutcomeForRegisteredUser() {
	userID, sessionID, err := s.auth.Register(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	err = s.updater.RecordOutcome(s.ctx, sessionID, 150, 50)
	s.Require().NoError(err)

	user, err := s.storage.GetUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(int64(150), user.Coins)
	s.Equal(int64(1), user.TotalSpins)
	s.Equal(int64(1), user.TotalWins)
	s.Equal(int64(50), user.BiggestWin)
}

func (s *UpdaterSuite) TestRegisteredOutcomeReachesLeaderboard() {
	_, sessionID, err := s.auth.Register(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	err = s.updater.RecordOutcome(s.ctx, sessionID, 500, 400)
	s.Require().NoError(err)

	entries, err := s.storage.TopEntries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(int64(500), entries[0].Coins)
	s.Equal(int64(400), entries[0].BiggestWin)
}

func (s *UpdaterSuite) TestRegisteredOutcomeStampsLeaderboard() {
	_, sessionID, err := s.auth.Register(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	err = s.updater.RecordOutcome(s.ctx, sessionID, 150, 50)
	s.Require().NoError(err)

	entries, err := s.storage.TopEntries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(s.clock.Now(), entries[0].UpdatedAt)
}

// Guest principal tests

func (s *UpdaterSuite) TestRecordOutcomeForGuest() {
	sessionID, _, err := s.auth.CreateGuestSession(s.ctx)
	s.Require().NoError(err)

	err = s.updater.RecordOutcome(s.ctx, sessionID, 80, 0)
	s.Require().NoError(err)

	session, err := s.storage.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().NotNil(session.Guest)
	s.Equal(int64(80), session.Guest.Coins)
	s.Equal(int64(1), session.Guest.TotalSpins)
	s.Zero(session.Guest.TotalWins)
}

func (s *UpdaterSuite) TestGuestOutcomesAccumulate() {
	sessionID, _, err := s.auth.CreateGuestSession(s.ctx)
	s.Require().NoError(err)

	_ = s.updater.RecordOutcome(s.ctx, sessionID, 80, 0)
	_ = s.updater.RecordOutcome(s.ctx, sessionID, 180, 100)
	_ = s.updater.RecordOutcome(s.ctx, sessionID, 200, 20)

	session, err := s.storage.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(int64(200), session.Guest.Coins)
	s.Equal(int64(3), session.Guest.TotalSpins)
	s.Equal(int64(2), session.Guest.TotalWins)
	s.Equal(int64(100), session.Guest.BiggestWin)
}

func (s *UpdaterSuite) TestGuestOutcomeNeverTouchesLeaderboard() {
	sessionID, _, err := s.auth.CreateGuestSession(s.ctx)
	s.Require().NoError(err)

	_ = s.updater.RecordOutcome(s.ctx, sessionID, 500, 400)

	entries, err := s.storage.TopEntries(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

// Session validation tests

func (s *UpdaterSuite) TestRecordOutcomeUnknownSession() {
	err := s.updater.RecordOutcome(s.ctx, "invalid_token", 100, 0)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

func (s *UpdaterSuite) TestRecordOutcomeExpiredSession() {
	sessionID, _, err := s.auth.CreateGuestSession(s.ctx)
	s.Require().NoError(err)

	s.clock.Advance(25 * time.Hour)

	err = s.updater.RecordOutcome(s.ctx, sessionID, 100, 0)
	s.ErrorIs(err, auth.ErrInvalidSession)
}

func (s *UpdaterSuite) TestRecordOutcomeMissingUserRow() {
	_, sessionID, err := s.auth.Register(s.ctx, "alice", "password123", "")
	s.Require().NoError(err)

	// Simulate a user row vanishing behind a live session
	s.Require().NoError(s.storage.Reset(s.ctx))
	session := model.NewUserSession(sessionID, 1, s.clock.Now().Add(time.Hour))
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	err = s.updater.RecordOutcome(s.ctx, sessionID, 100, 0)
	s.ErrorIs(err, model.ErrUserNotFound)
}
