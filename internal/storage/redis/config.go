package redis

import "time"

// Config holds Redis storage configuration
type Config struct {
	// URL is the Redis connection URL (redis://host:port/db)
	URL string

	// PoolSize is the maximum number of socket connections
	PoolSize int

	// MinIdleConns is the minimum number of idle connections
	MinIdleConns int

	// UpdateRetries bounds optimistic-transaction retries in UpdatePlayer
	UpdateRetries int

	// EventLogCap caps the length of each tampering/sync event list
	EventLogCap int64

	// ConnectTimeout bounds the initial connection verification
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis storage
func DefaultConfig() Config {
	return Config{
		PoolSize:       10,
		MinIdleConns:   2,
		UpdateRetries:  5,
		EventLogCap:    1000,
		ConnectTimeout: 5 * time.Second,
	}
}
