package verify

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/mocks"
	"github.com/lostbeltno7/GameGuardian/internal/model"
)

// Property tests for the rate bounds: deltas strictly over the per-minute
// limit are always rejected, deltas at or under it are always accepted.

func propVerifier() (*Verifier, time.Time) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return New(DefaultBounds(), mocks.NewMockClock(base)), base
}

func TestCoinBoundProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	verifier, base := propVerifier()
	bound := DefaultBounds().MaxCoinsPerMinute

	properties.Property("coin deltas over the bound are rejected", prop.ForAll(
		func(start int, over int, minutes int) bool {
			elapsed := time.Duration(minutes) * time.Minute
			record := &model.PlayerRecord{
				GameData: model.GameValues{"coins": float64(start)},
				LastSync: base.Add(-elapsed),
			}
			delta := bound*float64(minutes) + float64(over)
			result := verifier.Verify(record, Input{
				Proposed:        model.GameValues{"coins": float64(start) + delta},
				ClientTimestamp: float64(base.UnixMilli()),
			})
			return !result.Valid
		},
		gen.IntRange(0, 100000),
		gen.IntRange(1, 100000),
		gen.IntRange(1, 60),
	))

	properties.Property("coin deltas at or under the bound are accepted", prop.ForAll(
		func(start int, frac int, minutes int) bool {
			elapsed := time.Duration(minutes) * time.Minute
			record := &model.PlayerRecord{
				GameData: model.GameValues{"coins": float64(start)},
				LastSync: base.Add(-elapsed),
			}
			// frac% of the allowed budget, inclusive of 100%
			delta := bound * float64(minutes) * float64(frac) / 100
			result := verifier.Verify(record, Input{
				Proposed:        model.GameValues{"coins": float64(start) + delta},
				ClientTimestamp: float64(base.UnixMilli()),
			})
			return result.Valid
		},
		gen.IntRange(0, 100000),
		gen.IntRange(0, 100),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

func TestHealthRegenProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	verifier, base := propVerifier()
	regen := DefaultBounds().HealthRegenRate

	properties.Property("below-max health gains over the regen rate are rejected without a powerup", prop.ForAll(
		func(start int, over int, minutes int) bool {
			elapsed := time.Duration(minutes) * time.Minute
			record := &model.PlayerRecord{
				GameData: model.GameValues{"health": float64(start), "maxHealth": float64(1000000)},
				LastSync: base.Add(-elapsed),
			}
			proposed := float64(start) + regen*float64(minutes) + float64(over)
			result := verifier.Verify(record, Input{
				Proposed:        model.GameValues{"health": proposed},
				ClientTimestamp: float64(base.UnixMilli()),
			})
			return !result.Valid
		},
		gen.IntRange(0, 1000),
		gen.IntRange(1, 1000),
		gen.IntRange(1, 60),
	))

	properties.Property("health decreases are always accepted", prop.ForAll(
		func(start int, drop int, minutes int) bool {
			elapsed := time.Duration(minutes) * time.Minute
			record := &model.PlayerRecord{
				GameData: model.GameValues{"health": float64(start), "maxHealth": float64(start)},
				LastSync: base.Add(-elapsed),
			}
			proposed := float64(start - drop)
			result := verifier.Verify(record, Input{
				Proposed:        model.GameValues{"health": proposed},
				ClientTimestamp: float64(base.UnixMilli()),
			})
			return result.Valid
		},
		gen.IntRange(1, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

func TestFirstSyncProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	verifier, base := propVerifier()

	properties.Property("empty history accepts any proposal", prop.ForAll(
		func(coins int, health int, xp int) bool {
			record := &model.PlayerRecord{GameData: nil, LastSync: base}
			result := verifier.Verify(record, Input{
				Proposed: model.GameValues{
					"coins":  float64(coins),
					"health": float64(health),
					"xp":     float64(xp),
				},
				ClientTimestamp: float64(base.UnixMilli()),
			})
			return result.Valid
		},
		gen.IntRange(0, 1<<30),
		gen.IntRange(0, 1<<30),
		gen.IntRange(0, 1<<30),
	))

	properties.TestingRun(t)
}
