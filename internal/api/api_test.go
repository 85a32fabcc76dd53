package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokeslot/slotserver/internal/api"
	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/factory"
	"github.com/pokeslot/slotserver/internal/storage/memory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:               logger,
		AuthService:          app.AuthService,
		StatsUpdater:         app.StatsUpdater,
		LeaderboardProjector: app.LeaderboardProjector,
	})

	return &testServer{
		handler: router,
		storage: app.Storage.(*memory.Storage),
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "ash", "password": "pikachu25"}
	rr := ts.request(http.MethodPost, "/api/register", body)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.RegisterResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotZero(t, resp.UserID)
	assert.NotEmpty(t, resp.SessionID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "ash", "password": "pikachu25"}
	rr := ts.request(http.MethodPost, "/api/register", body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/register", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Username already exists", resp.Error)
}

func TestRegisterMissingFields(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/register", map[string]string{"username": "ash"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/register", map[string]string{"password": "pikachu25"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts, "ash", "pikachu25")

	body := map[string]string{"username": "ash", "password": "pikachu25"}
	rr := ts.request(http.MethodPost, "/api/login", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.LoginResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "ash", resp.User.Username)
	assert.Equal(t, int64(100), resp.User.Coins)
	assert.NotEmpty(t, resp.SessionID)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts, "ash", "pikachu25")

	body := map[string]string{"username": "ash", "password": "charizard"}
	rr := ts.request(http.MethodPost, "/api/login", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Error)
}

func TestLoginUnknownUser(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "nobody", "password": "whatever"}
	rr := ts.request(http.MethodPost, "/api/login", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Error)
}

func TestGuestSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/guest", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.GuestResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Guest", resp.User.Username)
	assert.Equal(t, int64(100), resp.User.Coins)
	assert.True(t, resp.User.IsGuest)
}

func TestUpdateStatsForRegisteredUser(t *testing.T) {
	ts := newTestServer(t)

	sessionID := registerUser(t, ts, "ash", "pikachu25")

	body := map[string]any{"session_id": sessionID, "coins": 150, "win_amount": 50}
	rr := ts.request(http.MethodPost, "/api/update-stats", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.UpdateStatsResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Stats should show up on the leaderboard
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var lbResp response.LeaderboardResponse
	err = json.Unmarshal(rr.Body.Bytes(), &lbResp)
	require.NoError(t, err)
	require.Len(t, lbResp.Leaderboard, 1)
	assert.Equal(t, "ash", lbResp.Leaderboard[0].Username)
	assert.Equal(t, int64(150), lbResp.Leaderboard[0].Coins)
	assert.Equal(t, int64(1), lbResp.Leaderboard[0].TotalWins)
	assert.Equal(t, int64(50), lbResp.Leaderboard[0].BiggestWin)
}

func TestUpdateStatsForGuest(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/guest", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var guestResp response.GuestResponse
	err := json.Unmarshal(rr.Body.Bytes(), &guestResp)
	require.NoError(t, err)

	body := map[string]any{"session_id": guestResp.SessionID, "coins": 80}
	rr = ts.request(http.MethodPost, "/api/update-stats", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Guest stats live on the session, not the leaderboard
	rr = ts.request(http.MethodGet, "/api/session?session_id="+guestResp.SessionID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var sessResp response.SessionResponse
	err = json.Unmarshal(rr.Body.Bytes(), &sessResp)
	require.NoError(t, err)
	assert.True(t, sessResp.Session.IsGuest)
	assert.Equal(t, int64(80), sessResp.Session.Coins)
	require.NotNil(t, sessResp.Session.GuestData)
	assert.Equal(t, int64(1), sessResp.Session.GuestData.TotalSpins)

	rr = ts.request(http.MethodGet, "/api/leaderboard", nil)
	var lbResp response.LeaderboardResponse
	err = json.Unmarshal(rr.Body.Bytes(), &lbResp)
	require.NoError(t, err)
	assert.Empty(t, lbResp.Leaderboard)
}

func TestUpdateStatsInvalidSession(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"session_id": "bogus", "coins": 100}
	rr := ts.request(http.MethodPost, "/api/update-stats", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid session", resp.Error)
}

func TestUpdateStatsMissingSessionID(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"coins": 100}
	rr := ts.request(http.MethodPost, "/api/update-stats", body)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestUpdateStatsMissingCoins(t *testing.T) {
	ts := newTestServer(t)

	sessionID := registerUser(t, ts, "ash", "pikachu25")

	body := map[string]any{"session_id": sessionID}
	rr := ts.request(http.MethodPost, "/api/update-stats", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionCheckForRegisteredUser(t *testing.T) {
	ts := newTestServer(t)

	sessionID := registerUser(t, ts, "ash", "pikachu25")

	rr := ts.request(http.MethodGet, "/api/session?session_id="+sessionID, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.SessionResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.Session.IsGuest)
	assert.Equal(t, "ash", resp.Session.Username)
	assert.Equal(t, int64(100), resp.Session.Coins)
	require.NotNil(t, resp.Session.UserID)
	assert.Nil(t, resp.Session.GuestData)
}

func TestSessionCheckMissingID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "No session ID provided", resp.Error)
}

func TestSessionCheckUnknownID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/session?session_id=bogus", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid session", resp.Error)
}

func TestLeaderboardOrderingAndLimit(t *testing.T) {
	ts := newTestServer(t)

	low := registerUser(t, ts, "misty", "staryu")
	high := registerUser(t, ts, "brock", "onix")
	registerUser(t, ts, "ash", "pikachu25")

	updateStats(t, ts, low, 50, 0)
	updateStats(t, ts, high, 900, 800)

	rr := ts.request(http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.LeaderboardResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 3)
	assert.Equal(t, "brock", resp.Leaderboard[0].Username)
	assert.Equal(t, "ash", resp.Leaderboard[1].Username)
	assert.Equal(t, "misty", resp.Leaderboard[2].Username)

	rr = ts.request(http.MethodGet, "/api/leaderboard?limit=1", nil)
	err = json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp.Leaderboard, 1)
}

func TestUnknownEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error": "Endpoint not found"}`, rr.Body.String())
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	// Unknown routes still carry CORS headers
	rr = ts.request(http.MethodGet, "/api/nonexistent", nil)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodOptions, "/api/register", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMalformedJSONBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp response.Failure
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

// Helper functions

func registerUser(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()

	body := map[string]string{"username": username, "password": password}
	rr := ts.request(http.MethodPost, "/api/register", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.RegisterResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.True(t, resp.Success)

	return resp.SessionID
}

func updateStats(t *testing.T, ts *testServer, sessionID string, coins, winAmount int64) {
	t.Helper()

	body := map[string]any{"session_id": sessionID, "coins": coins}
	if winAmount > 0 {
		body["win_amount"] = winAmount
	}
	rr := ts.request(http.MethodPost, "/api/update-stats", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.UpdateStatsResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.True(t, resp.Success)
}
