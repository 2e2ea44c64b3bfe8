package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Escalation errors
	ErrPlayerSuspended = errors.New("player account is suspended")

	// Verification errors
	ErrInvalidTimestamp = errors.New("invalid client timestamp")

	// Store errors
	ErrStoreUnavailable = errors.New("player record store unavailable")
	ErrUpdateConflict   = errors.New("record update conflict")
)
