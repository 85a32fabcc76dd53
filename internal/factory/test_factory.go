package factory

import (
	"time"

	"github.com/pokeslot/slotserver/internal/dependencies/mocks"
	"github.com/pokeslot/slotserver/internal/services/auth"
	"github.com/pokeslot/slotserver/internal/storage/memory"
	"github.com/pokeslot/slotserver/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
