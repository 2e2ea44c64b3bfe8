package response

import (
	"time"

	"github.com/lostbeltno7/GameGuardian/internal/model"
)

// TamperingResponse is the response for a tampering report.
// Action is "warn" or "ban"; Duration is set only for bans.
type TamperingResponse struct {
	Message   string `json:"message"`
	Action    string `json:"action"`
	Duration  string `json:"duration,omitempty"`
	RequestID string `json:"requestId"`
}

// RegisterResponse is the response for player registration
type RegisterResponse struct {
	Message   string `json:"message"`
	PlayerID  string `json:"playerId"`
	Created   bool   `json:"created"`
	RequestID string `json:"requestId"`
}

// SyncResponse is the response for a value-sync exchange.
// Status is "valid", "invalid" or "suspended".
type SyncResponse struct {
	Status          string         `json:"status"`
	Reason          string         `json:"reason,omitempty"`
	Action          string         `json:"action,omitempty"`
	ServerTimestamp time.Time      `json:"serverTimestamp"`
	VerifiedValues  map[string]any `json:"verifiedValues,omitempty"`
	ServerValues    map[string]any `json:"serverValues,omitempty"`
	RequestID       string         `json:"requestId"`
}

// TamperingEventSummary is a tampering event in management responses
type TamperingEventSummary struct {
	ID              string            `json:"id"`
	ServerTimestamp time.Time         `json:"serverTimestamp"`
	Severity        string            `json:"severity"`
	Kind            string            `json:"kind"`
	Details         map[string]string `json:"details,omitempty"`
}

// SyncEventSummary is a sync-log entry in management responses
type SyncEventSummary struct {
	Outcome         string    `json:"outcome"`
	Reason          string    `json:"reason,omitempty"`
	ServerTimestamp time.Time `json:"serverTimestamp"`
}

// PlayerSummary is the sanitized player record for the management API.
// DeviceID is withheld: it identifies hardware, not gameplay.
type PlayerSummary struct {
	PlayerID          string         `json:"playerId"`
	Status            string         `json:"status"`
	GameData          map[string]any `json:"gameData"`
	TamperingAttempts int            `json:"tamperingAttempts"`
	LastSync          time.Time      `json:"lastSync"`
	BanTimestamp      *time.Time     `json:"banTimestamp,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// PlayerDetailResponse is the management view of a player
type PlayerDetailResponse struct {
	Player          PlayerSummary           `json:"player"`
	TamperingEvents []TamperingEventSummary `json:"tamperingEvents"`
	SyncEvents      []SyncEventSummary      `json:"syncEvents"`
}

// PlayerSummaryFromModel converts a PlayerRecord to its sanitized view
func PlayerSummaryFromModel(r *model.PlayerRecord) PlayerSummary {
	return PlayerSummary{
		PlayerID:          string(r.PlayerID),
		Status:            string(r.Status()),
		GameData:          r.GameData,
		TamperingAttempts: r.TamperingAttempts,
		LastSync:          r.LastSync,
		BanTimestamp:      r.BanTimestamp,
		CreatedAt:         r.CreatedAt,
	}
}

// TamperingEventSummaryFromModel converts a TamperingEvent
func TamperingEventSummaryFromModel(e *model.TamperingEvent) TamperingEventSummary {
	return TamperingEventSummary{
		ID:              e.ID,
		ServerTimestamp: e.ServerTimestamp,
		Severity:        string(e.Severity),
		Kind:            e.Kind,
		Details:         e.Details,
	}
}

// SyncEventSummaryFromModel converts a SyncEvent
func SyncEventSummaryFromModel(e *model.SyncEvent) SyncEventSummary {
	return SyncEventSummary{
		Outcome:         string(e.Outcome),
		Reason:          e.Reason,
		ServerTimestamp: e.ServerTimestamp,
	}
}
