package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// DeviceID identifies the device a shield instance runs on
type DeviceID string

// PlayerStatus describes the escalation state of a player account
type PlayerStatus string

const (
	StatusActive    PlayerStatus = "active"
	StatusSuspended PlayerStatus = "suspended"
)

// PlayerRecord is the authoritative server-side state for a player.
// The client only ever holds a non-authoritative mirror of GameData.
type PlayerRecord struct {
	PlayerID          PlayerID   `json:"player_id"`
	DeviceID          DeviceID   `json:"device_id"`
	GameData          GameValues `json:"game_data"`
	TamperingAttempts int        `json:"tampering_attempts"`
	IsBanned          bool       `json:"is_banned"`
	LastSync          time.Time  `json:"last_sync"`
	BanTimestamp      *time.Time `json:"ban_timestamp,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Status derives the escalation state from the ban flag.
// IsBanned is monotonic: once set it is never cleared by the core.
func (r *PlayerRecord) Status() PlayerStatus {
	if r.IsBanned {
		return StatusSuspended
	}
	return StatusActive
}

// Ban marks the record suspended at the given time. Calling Ban on an
// already-banned record keeps the original ban timestamp.
func (r *PlayerRecord) Ban(at time.Time) {
	if r.IsBanned {
		return
	}
	r.IsBanned = true
	t := at
	r.BanTimestamp = &t
}
