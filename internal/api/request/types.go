package request

// MaxIdentifierLength bounds playerId and deviceId fields
const MaxIdentifierLength = 100

// LogTamperingRequest is the request body for reporting a tampering signal
type LogTamperingRequest struct {
	Type      string            `json:"type"`
	Severity  string            `json:"severity"`
	DeviceID  string            `json:"deviceId"`
	PlayerID  string            `json:"playerId,omitempty"`
	Timestamp any               `json:"timestamp,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// RegisterPlayerRequest is the request body for registering a player
type RegisterPlayerRequest struct {
	PlayerID    string         `json:"playerId"`
	DeviceID    string         `json:"deviceId"`
	InitialData map[string]any `json:"initialData,omitempty"`
}

// SyncValuesRequest is the request body for a value-sync exchange
type SyncValuesRequest struct {
	PlayerID        string         `json:"playerId"`
	SessionID       string         `json:"sessionId"`
	GameValues      map[string]any `json:"gameValues"`
	ClientTimestamp any            `json:"clientTimestamp"`
	Checksum        string         `json:"checksum"`
	Powerups        []string       `json:"powerups,omitempty"`
}

// HasPowerup reports whether the named powerup is declared
func (r *SyncValuesRequest) HasPowerup(name string) bool {
	for _, p := range r.Powerups {
		if p == name {
			return true
		}
	}
	return false
}
