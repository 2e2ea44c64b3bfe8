// Package shield is the client-side tamper-detection library. Game code
// wraps sensitive quantities in integrity containers, a local guardian
// checks them and a set of detection probes on a periodic cycle, and a
// sync client reconciles the local mirror against the authoritative
// server. The local layer is advisory only: the server always wins on
// disagreement.
package shield

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// TamperingReport is the wire shape for POST /api/log-tampering
type TamperingReport struct {
	Type      string            `json:"type"`
	Severity  string            `json:"severity"`
	DeviceID  string            `json:"deviceId"`
	PlayerID  string            `json:"playerId,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// TamperingResult is the server's response to a tampering report
type TamperingResult struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	Duration  string `json:"duration,omitempty"`
	RequestID string `json:"requestId"`
}

// RegisterRequest is the wire shape for POST /api/register-player
type RegisterRequest struct {
	PlayerID    string         `json:"playerId"`
	DeviceID    string         `json:"deviceId"`
	InitialData map[string]any `json:"initialData,omitempty"`
}

// RegisterResult is the server's response to a registration
type RegisterResult struct {
	Message   string `json:"message"`
	PlayerID  string `json:"playerId"`
	Created   bool   `json:"created"`
	RequestID string `json:"requestId"`
}

// SyncRequest is the wire shape for POST /api/sync-game-values
type SyncRequest struct {
	PlayerID        string         `json:"playerId"`
	SessionID       string         `json:"sessionId"`
	GameValues      map[string]any `json:"gameValues"`
	ClientTimestamp int64          `json:"clientTimestamp"`
	Checksum        string         `json:"checksum"`
	Powerups        []string       `json:"powerups,omitempty"`
}

// SyncResult is the server's verdict on a value sync. VerifiedValues is
// populated on acceptance, ServerValues on rejection; either one must
// overwrite the local mirror.
type SyncResult struct {
	Status          string         `json:"status"`
	Reason          string         `json:"reason,omitempty"`
	Action          string         `json:"action,omitempty"`
	VerifiedValues  map[string]any `json:"verifiedValues,omitempty"`
	ServerValues    map[string]any `json:"serverValues,omitempty"`
	RequestID       string         `json:"requestId"`
}

// Valid reports whether the server accepted the synced values
func (r *SyncResult) Valid() bool {
	return r.Status == "valid"
}

// Suspended reports whether the account is suspended
func (r *SyncResult) Suspended() bool {
	return r.Status == "suspended"
}

// AuthoritativeValues returns whichever value set the server sent back
func (r *SyncResult) AuthoritativeValues() map[string]any {
	if r.VerifiedValues != nil {
		return r.VerifiedValues
	}
	return r.ServerValues
}

// ValuesChecksum computes the hex SHA-256 fingerprint of a value set in
// key order, so both sides derive the same digest regardless of map
// iteration order.
func ValuesChecksum(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write(encodeValue(values[k]))
		h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encodeValue(v any) []byte {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case float64:
		return strconv.AppendFloat(nil, t, 'g', -1, 64)
	case int:
		return strconv.AppendInt(nil, int64(t), 10)
	case int64:
		return strconv.AppendInt(nil, t, 10)
	case bool:
		return strconv.AppendBool(nil, t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	}
}
