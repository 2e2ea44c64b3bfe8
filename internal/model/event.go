package model

import "time"

// Severity classifies how serious a tampering signal is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// ParseSeverity normalizes a client-supplied severity string.
// Unrecognized inputs map to SeverityUnknown rather than erroring:
// a malformed severity is still a report worth recording.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s)
	default:
		return SeverityUnknown
	}
}

// MaxEventKindLength bounds the free-form classification string
const MaxEventKindLength = 64

// TamperingEvent is an immutable record of a single tampering signal,
// appended to the per-system event log.
type TamperingEvent struct {
	ID              string            `json:"id"`
	ServerTimestamp time.Time         `json:"server_timestamp"`
	ClientTimestamp *time.Time        `json:"client_timestamp,omitempty"`
	Severity        Severity          `json:"severity"`
	Kind            string            `json:"kind"`
	DeviceID        DeviceID          `json:"device_id"`
	PlayerID        PlayerID          `json:"player_id,omitempty"`
	Details         map[string]string `json:"details,omitempty"`
}

// SyncOutcome is the verdict of a value-sync exchange
type SyncOutcome string

const (
	SyncValid     SyncOutcome = "valid"
	SyncInvalid   SyncOutcome = "invalid"
	SyncSuspended SyncOutcome = "suspended"
)

// SyncEvent records one value-sync exchange for a player, appended to
// the per-player sync log.
type SyncEvent struct {
	PlayerID         PlayerID    `json:"player_id"`
	SessionID        string      `json:"session_id,omitempty"`
	Outcome          SyncOutcome `json:"outcome"`
	Reason           string      `json:"reason,omitempty"`
	DeclaredChecksum string      `json:"declared_checksum,omitempty"`
	ServerTimestamp  time.Time   `json:"server_timestamp"`
}
