package model

// GameValues maps protected value names to their reported values.
// Values are JSON scalars: numbers, booleans or strings.
type GameValues map[string]any

// Well-known value names the verifier applies rate bounds to
const (
	ValueHealth    = "health"
	ValueMaxHealth = "maxHealth"
	ValueCoins     = "coins"
	ValueXP        = "xp"
)

// Number extracts a named value as float64. JSON decoding yields float64
// for all numbers; ints stored directly are converted too.
func (v GameValues) Number(key string) (float64, bool) {
	raw, ok := v[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Clone returns a shallow copy. Values are scalars so a shallow copy is
// a full copy.
func (v GameValues) Clone() GameValues {
	if v == nil {
		return nil
	}
	out := make(GameValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge overlays other onto a copy of v and returns the result.
func (v GameValues) Merge(other GameValues) GameValues {
	out := v.Clone()
	if out == nil {
		out = make(GameValues, len(other))
	}
	for k, val := range other {
		out[k] = val
	}
	return out
}
