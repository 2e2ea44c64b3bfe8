package verify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/model"
)

// Bounds holds the physical plausibility limits for protected values
type Bounds struct {
	// HealthRegenRate is the maximum natural health gain per minute
	HealthRegenRate float64
	// MaxCoinsPerMinute is the maximum legitimate coin gain per minute
	MaxCoinsPerMinute float64
	// MaxXPPerMinute is the maximum legitimate experience gain per minute
	MaxXPPerMinute float64
	// DefaultMaxHealth applies when neither side declares a maxHealth value
	DefaultMaxHealth float64
	// MaxFutureSkew is how far ahead of server time a client timestamp may be
	MaxFutureSkew time.Duration
}

// DefaultBounds returns the default plausibility limits
func DefaultBounds() Bounds {
	return Bounds{
		HealthRegenRate:   10,
		MaxCoinsPerMinute: 1000,
		MaxXPPerMinute:    500,
		DefaultMaxHealth:  100,
		MaxFutureSkew:     5 * time.Minute,
	}
}

// Input carries one proposed state change for verification
type Input struct {
	// Proposed is the client-reported new state
	Proposed model.GameValues
	// ClientTimestamp is the raw client-supplied timestamp: epoch millis as
	// a JSON number or numeric string
	ClientTimestamp any
	// HealthPowerup indicates the client declared an active health powerup,
	// which exempts health from the cap and regen-rate rules
	HealthPowerup bool
}

// Result is the verification verdict. Reason is set only when invalid.
type Result struct {
	Valid  bool
	Reason string
}

// Verifier decides whether a proposed state change is physically plausible
// given a player's stored history. It is pure with respect to the record:
// escalation and persistence are the caller's job.
type Verifier struct {
	bounds Bounds
	clock  clock.Clock
}

// New creates a Verifier with the given bounds
func New(bounds Bounds, clk clock.Clock) *Verifier {
	if bounds.DefaultMaxHealth == 0 {
		bounds.DefaultMaxHealth = DefaultBounds().DefaultMaxHealth
	}
	if bounds.MaxFutureSkew == 0 {
		bounds.MaxFutureSkew = DefaultBounds().MaxFutureSkew
	}
	return &Verifier{bounds: bounds, clock: clk}
}

// Verify applies the rate-of-change rules to a proposed state.
// The first violated rule wins, in order: future/invalid timestamp,
// health cap, health regen, coins, xp. The record is never mutated.
func (v *Verifier) Verify(record *model.PlayerRecord, in Input) Result {
	// First sync: no history to compare against
	if len(record.GameData) == 0 {
		return Result{Valid: true}
	}

	clientTime, err := parseTimestamp(in.ClientTimestamp)
	if err != nil {
		return Result{Reason: "Invalid timestamp"}
	}
	if clientTime.Sub(v.clock.Now()) > v.bounds.MaxFutureSkew {
		return Result{Reason: "Future timestamp"}
	}

	elapsed := clientTime.Sub(record.LastSync).Minutes()
	if elapsed < 0 {
		elapsed = 0
	}

	if r := v.checkHealth(record.GameData, in, elapsed); !r.Valid {
		return r
	}
	if r := v.checkRate(record.GameData, in.Proposed, model.ValueCoins, v.bounds.MaxCoinsPerMinute, elapsed, "Coins increased too fast"); !r.Valid {
		return r
	}
	if r := v.checkRate(record.GameData, in.Proposed, model.ValueXP, v.bounds.MaxXPPerMinute, elapsed, "XP increased too fast"); !r.Valid {
		return r
	}

	return Result{Valid: true}
}

// checkHealth enforces the health cap and the regeneration rate.
// A declared health powerup exempts both rules.
func (v *Verifier) checkHealth(old model.GameValues, in Input, elapsedMinutes float64) Result {
	proposed, ok := in.Proposed.Number(model.ValueHealth)
	if !ok {
		return Result{Valid: true}
	}
	prior, ok := old.Number(model.ValueHealth)
	if !ok {
		return Result{Valid: true}
	}

	if in.HealthPowerup {
		return Result{Valid: true}
	}

	maxHealth := v.bounds.DefaultMaxHealth
	if m, ok := in.Proposed.Number(model.ValueMaxHealth); ok {
		maxHealth = m
	} else if m, ok := old.Number(model.ValueMaxHealth); ok {
		maxHealth = m
	}

	if proposed > maxHealth {
		return Result{Reason: fmt.Sprintf("Health %g exceeds maximum %g", proposed, maxHealth)}
	}

	// Regen rate only applies while recovering below the cap
	if prior < maxHealth && proposed > prior {
		allowed := v.bounds.HealthRegenRate * elapsedMinutes
		if proposed-prior > allowed {
			return Result{Reason: fmt.Sprintf("Health regenerated too fast: +%g in %.1f min", proposed-prior, elapsedMinutes)}
		}
	}

	return Result{Valid: true}
}

// checkRate rejects increases beyond rate*elapsed. Boundary-inclusive:
// a delta exactly at the bound passes.
func (v *Verifier) checkRate(old, proposed model.GameValues, key string, rate, elapsedMinutes float64, reason string) Result {
	newVal, ok := proposed.Number(key)
	if !ok {
		return Result{Valid: true}
	}
	oldVal, ok := old.Number(key)
	if !ok {
		return Result{Valid: true}
	}

	if newVal-oldVal > rate*elapsedMinutes {
		return Result{Reason: fmt.Sprintf("%s: +%g in %.1f min", reason, newVal-oldVal, elapsedMinutes)}
	}
	return Result{Valid: true}
}

// parseTimestamp accepts epoch millis as float64, int64, json.Number-style
// strings, or time.Time
func parseTimestamp(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		return t, nil
	case float64:
		return time.UnixMilli(int64(t)), nil
	case int64:
		return time.UnixMilli(t), nil
	case int:
		return time.UnixMilli(int64(t)), nil
	case string:
		ms, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return time.Time{}, model.ErrInvalidTimestamp
		}
		return time.UnixMilli(ms), nil
	default:
		return time.Time{}, model.ErrInvalidTimestamp
	}
}
