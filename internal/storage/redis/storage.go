package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player record operations

func (s *Storage) SavePlayer(ctx context.Context, record *model.PlayerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.wrapStoreErr(s.client.Set(ctx, playerKey(record.PlayerID), data, 0).Err())
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, s.wrapStoreErr(err)
	}

	var record model.PlayerRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdatePlayer applies fn inside an optimistic WATCH transaction.
// A concurrent write to the same player key aborts the transaction and the
// read-modify-write is retried from scratch, which gives per-key
// serializability without locking out other players.
func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, fn storage.UpdateFunc) (*model.PlayerRecord, error) {
	key := playerKey(id)
	var updated *model.PlayerRecord

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var record model.PlayerRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}

		if err := fn(&record); err != nil {
			return err
		}

		out, err := json.Marshal(&record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = &record
		}
		return err
	}

	retries := s.cfg.UpdateRetries
	if retries <= 0 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		// fn errors and ErrPlayerNotFound propagate untouched
		return nil, err
	}
	return nil, model.ErrUpdateConflict
}

func (s *Storage) PlayerExists(ctx context.Context, id model.PlayerID) (bool, error) {
	n, err := s.client.Exists(ctx, playerKey(id)).Result()
	if err != nil {
		return false, s.wrapStoreErr(err)
	}
	return n > 0, nil
}

// Tampering event log

func (s *Storage) AppendTamperingEvent(ctx context.Context, event *model.TamperingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := deviceLogKey(event.DeviceID)
	if event.PlayerID != "" {
		key = tamperingLogKey(event.PlayerID)
	}

	// LPUSH keeps newest first; LTRIM bounds the log
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, s.cfg.EventLogCap-1)
	_, err = pipe.Exec(ctx)
	return s.wrapStoreErr(err)
}

func (s *Storage) ListTamperingEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.TamperingEvent, error) {
	stop := int64(limit - 1)
	if limit <= 0 {
		stop = -1
	}
	items, err := s.client.LRange(ctx, tamperingLogKey(playerID), 0, stop).Result()
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	events := make([]*model.TamperingEvent, 0, len(items))
	for _, item := range items {
		var e model.TamperingEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue // skip malformed entries
		}
		events = append(events, &e)
	}
	return events, nil
}

// Sync event log

func (s *Storage) AppendSyncEvent(ctx context.Context, event *model.SyncEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := syncLogKey(event.PlayerID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, s.cfg.EventLogCap-1)
	_, err = pipe.Exec(ctx)
	return s.wrapStoreErr(err)
}

func (s *Storage) ListSyncEvents(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.SyncEvent, error) {
	stop := int64(limit - 1)
	if limit <= 0 {
		stop = -1
	}
	items, err := s.client.LRange(ctx, syncLogKey(playerID), 0, stop).Result()
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}

	events := make([]*model.SyncEvent, 0, len(items))
	for _, item := range items {
		var e model.SyncEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

// wrapStoreErr tags connection-level failures as ErrStoreUnavailable so the
// API layer can surface 503 instead of guessing a verdict
func (s *Storage) wrapStoreErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
