package memory

import (
	"context"
	"sync"

	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Intended for tests and single-process deployments.
type Storage struct {
	mu sync.RWMutex

	players    map[model.PlayerID]*model.PlayerRecord
	events     []*model.TamperingEvent
	syncEvents map[model.PlayerID][]*model.SyncEvent

	// Per-player locks serialize UpdatePlayer for a given key without
	// blocking updates for other players.
	lockMu      sync.Mutex
	playerLocks map[model.PlayerID]*sync.Mutex
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.PlayerRecord),
		syncEvents:  make(map[model.PlayerID][]*model.SyncEvent),
		playerLocks: make(map[model.PlayerID]*sync.Mutex),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) playerLock(id model.PlayerID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.playerLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.playerLocks[id] = l
	}
	return l
}

// cloneRecord deep-copies a record so callers never alias stored state
func cloneRecord(r *model.PlayerRecord) *model.PlayerRecord {
	out := *r
	out.GameData = r.GameData.Clone()
	if r.BanTimestamp != nil {
		t := *r.BanTimestamp
		out.BanTimestamp = &t
	}
	return &out
}

// Player record operations

func (s *Storage) SavePlayer(ctx context.Context, record *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[record.PlayerID] = cloneRecord(record)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return cloneRecord(record), nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, fn storage.UpdateFunc) (*model.PlayerRecord, error) {
	lock := s.playerLock(id)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(record); err != nil {
		return nil, err
	}

	if err := s.SavePlayer(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[id]
	return ok, nil
}

// Tampering event log

func (s *Storage) AppendTamperingEvent(ctx context.Context, event *model.TamperingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *event
	// Newest first
	s.events = append([]*model.TamperingEvent{&e}, s.events...)
	return nil
}

func (s *Storage) ListTamperingEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.TamperingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.TamperingEvent, 0, limit)
	for _, e := range s.events {
		if e.PlayerID != playerID {
			continue
		}
		ev := *e
		out = append(out, &ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Sync event log

func (s *Storage) AppendSyncEvent(ctx context.Context, event *model.SyncEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *event
	s.syncEvents[event.PlayerID] = append([]*model.SyncEvent{&e}, s.syncEvents[event.PlayerID]...)
	return nil
}

func (s *Storage) ListSyncEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.SyncEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.syncEvents[playerID]
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	out := make([]*model.SyncEvent, len(events))
	for i, e := range events {
		ev := *e
		out[i] = &ev
	}
	return out, nil
}
