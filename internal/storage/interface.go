package storage

import (
	"context"

	"github.com/lostbeltno7/GameGuardian/internal/model"
)

// UpdateFunc mutates a player record in place inside a serialized update.
// Returning an error aborts the update without writing.
type UpdateFunc func(*model.PlayerRecord) error

// Storage defines the player-record store contract.
//
// UpdatePlayer must be serializable per player key: two concurrent updates
// for the same player never both observe the same starting record. Updates
// for different players may run fully in parallel.
type Storage interface {
	// Player record operations
	SavePlayer(ctx context.Context, record *model.PlayerRecord) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error)
	UpdatePlayer(ctx context.Context, id model.PlayerID, fn UpdateFunc) (*model.PlayerRecord, error)
	PlayerExists(ctx context.Context, id model.PlayerID) (bool, error)

	// Tampering event log, append-only, newest first
	AppendTamperingEvent(ctx context.Context, event *model.TamperingEvent) error
	ListTamperingEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.TamperingEvent, error)

	// Per-player sync event log, newest first
	AppendSyncEvent(ctx context.Context, event *model.SyncEvent) error
	ListSyncEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.SyncEvent, error)
}
