package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/mocks"
	"github.com/lostbeltno7/GameGuardian/internal/model"
)

type VerifierSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	verifier *Verifier
	baseTime time.Time
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.clock = mocks.NewMockClock(s.baseTime)
	s.verifier = New(DefaultBounds(), s.clock)
}

func (s *VerifierSuite) record(data model.GameValues) *model.PlayerRecord {
	return &model.PlayerRecord{
		PlayerID: "player-1",
		GameData: data,
		LastSync: s.baseTime.Add(-time.Minute),
	}
}

// millis returns the client timestamp for an offset from LastSync
func (s *VerifierSuite) millis(offset time.Duration) any {
	return float64(s.baseTime.Add(-time.Minute).Add(offset).UnixMilli())
}

func (s *VerifierSuite) TestFirstSyncAlwaysValid() {
	record := s.record(nil)

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(999999)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestUnparsableTimestampRejected() {
	record := s.record(model.GameValues{"coins": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(100)},
		ClientTimestamp: "not-a-number",
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "Invalid timestamp")
}

func (s *VerifierSuite) TestFutureTimestampRejected() {
	record := s.record(model.GameValues{"coins": float64(100)})

	future := float64(s.clock.Now().Add(6 * time.Minute).UnixMilli())
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(100)},
		ClientTimestamp: future,
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "Future timestamp")
}

func (s *VerifierSuite) TestSlightFutureSkewAllowed() {
	record := s.record(model.GameValues{"coins": float64(100)})

	future := float64(s.clock.Now().Add(4 * time.Minute).UnixMilli())
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(100)},
		ClientTimestamp: future,
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestCoinsOverBoundRejected() {
	// Concrete scenario from the design: 5100 coins in one minute
	record := s.record(model.GameValues{"health": float64(100), "maxHealth": float64(100), "coins": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(5100)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "Coins increased too fast")
}

func (s *VerifierSuite) TestCoinsAtBoundAccepted() {
	record := s.record(model.GameValues{"coins": float64(100)})

	// Exactly 1000/min for one minute is boundary-inclusive
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(1100)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestCoinsDecreaseAccepted() {
	record := s.record(model.GameValues{"coins": float64(500)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(10)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestXPOverBoundRejected() {
	record := s.record(model.GameValues{"xp": float64(1000)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"xp": float64(2001)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "XP increased too fast")
}

func (s *VerifierSuite) TestHealthAboveMaxRejected() {
	record := s.record(model.GameValues{"health": float64(80), "maxHealth": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(150), "maxHealth": float64(100)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "exceeds maximum")
}

func (s *VerifierSuite) TestHealthAboveMaxWithPowerupAccepted() {
	record := s.record(model.GameValues{"health": float64(80), "maxHealth": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(150), "maxHealth": float64(100)},
		ClientTimestamp: s.millis(time.Minute),
		HealthPowerup:   true,
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestHealthRegenTooFastRejected() {
	record := s.record(model.GameValues{"health": float64(10), "maxHealth": float64(100)})

	// 10/min regen allows +10 over one minute; +50 is implausible
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(60)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "regenerated too fast")
}

func (s *VerifierSuite) TestHealthRegenAtRateAccepted() {
	record := s.record(model.GameValues{"health": float64(10), "maxHealth": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(20)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestHealthDecreaseAccepted() {
	record := s.record(model.GameValues{"health": float64(90), "maxHealth": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(5)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestHealthCapBeforeRegenRule() {
	// Both rules violated: the cap reason wins
	record := s.record(model.GameValues{"health": float64(10), "maxHealth": float64(100)})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(500)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "exceeds maximum")
}

func (s *VerifierSuite) TestHealthBeforeCoinsOrdering() {
	record := s.record(model.GameValues{
		"health": float64(10), "maxHealth": float64(100), "coins": float64(0),
	})

	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"health": float64(500), "coins": float64(99999)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.False(result.Valid)
	s.Contains(result.Reason, "Health")
}

func (s *VerifierSuite) TestRecordNotMutated() {
	data := model.GameValues{"coins": float64(100)}
	record := s.record(data)

	_ = s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(9999999)},
		ClientTimestamp: s.millis(time.Minute),
	})

	s.Equal(float64(100), record.GameData["coins"])
	s.Equal(0, record.TamperingAttempts)
	s.False(record.IsBanned)
}

func (s *VerifierSuite) TestMissingValuesSkipped() {
	record := s.record(model.GameValues{"coins": float64(100)})

	// No coins in the proposal: the rule does not apply
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"level": float64(3)},
		ClientTimestamp: s.millis(time.Minute),
	})
	s.True(result.Valid)
}

func (s *VerifierSuite) TestNegativeElapsedClampedToZero() {
	record := s.record(model.GameValues{"coins": float64(100)})

	// Client timestamp before lastSync: any increase is implausible
	result := s.verifier.Verify(record, Input{
		Proposed:        model.GameValues{"coins": float64(101)},
		ClientTimestamp: s.millis(-time.Minute),
	})
	s.False(result.Valid)
}
