package factory

import (
	"time"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/mocks"
	"github.com/lostbeltno7/GameGuardian/internal/storage/memory"
	"github.com/lostbeltno7/GameGuardian/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The overrides are applied on top of a memory store and default bounds.
func NewTestApp(overrides ...func(*Config)) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		Logger: testutil.NopLogger(),
	}
	for _, o := range overrides {
		o(&cfg)
	}

	app := newWithDependencies(store, mockClock, mockRandom, cfg, cfg.Logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
