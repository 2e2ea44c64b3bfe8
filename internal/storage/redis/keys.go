package redis

import (
	"fmt"

	"github.com/lostbeltno7/GameGuardian/internal/model"
)

// Key prefix for all guardian data
const keyPrefix = "ggshield"

// playerKey returns the Redis key for a PlayerRecord
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// tamperingLogKey returns the Redis key for a player's tampering event list
func tamperingLogKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:tampering:player:%s", keyPrefix, playerID)
}

// deviceLogKey returns the Redis key for device-only tampering events,
// used when a report carries no player identity
func deviceLogKey(deviceID model.DeviceID) string {
	return fmt.Sprintf("%s:tampering:device:%s", keyPrefix, deviceID)
}

// syncLogKey returns the Redis key for a player's sync event list
func syncLogKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:sync:%s", keyPrefix, playerID)
}
