package escalate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// Action is the escalation outcome returned to the caller
type Action string

const (
	ActionWarn Action = "warn"
	ActionBan  Action = "ban"
)

// Config holds escalation configuration
type Config struct {
	// ViolationThreshold is the tampering count at which a player is banned
	ViolationThreshold int
	// BanDuration is reported to clients in ban responses. The core treats
	// suspension as terminal; lifting a ban is an operator concern.
	BanDuration time.Duration
}

// DefaultConfig returns default escalation configuration
func DefaultConfig() Config {
	return Config{
		ViolationThreshold: 3,
		BanDuration:        24 * time.Hour,
	}
}

// Outcome describes the result of recording a violation
type Outcome struct {
	Record *model.PlayerRecord
	Action Action
}

// Service tracks per-player violations and escalates repeat offenders
// into suspension. All counter updates go through the store's serialized
// per-player update, so concurrent violations never lose increments.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a new escalation service
func New(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.ViolationThreshold <= 0 {
		cfg.ViolationThreshold = DefaultConfig().ViolationThreshold
	}
	if cfg.BanDuration == 0 {
		cfg.BanDuration = DefaultConfig().BanDuration
	}
	return &Service{
		storage: store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
	}
}

// BanDuration exposes the configured ban duration for response payloads
func (s *Service) BanDuration() time.Duration {
	return s.cfg.BanDuration
}

// RecordViolation increments the player's tampering counter and bans the
// player once the threshold is reached. IsBanned is monotonic: an already
// banned player stays banned and the outcome is ActionBan.
func (s *Service) RecordViolation(ctx context.Context, playerID model.PlayerID, reason string) (Outcome, error) {
	now := s.clock.Now()

	record, err := s.storage.UpdatePlayer(ctx, playerID, func(r *model.PlayerRecord) error {
		r.TamperingAttempts++
		if r.TamperingAttempts >= s.cfg.ViolationThreshold {
			r.Ban(now)
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	action := ActionWarn
	if record.IsBanned {
		action = ActionBan
		s.logger.Warn("player suspended",
			slog.String("player_id", string(playerID)),
			slog.Int("tampering_attempts", record.TamperingAttempts),
			slog.String("reason", reason),
		)
	} else {
		s.logger.Info("violation recorded",
			slog.String("player_id", string(playerID)),
			slog.Int("tampering_attempts", record.TamperingAttempts),
			slog.String("reason", reason),
		)
	}

	return Outcome{Record: record, Action: action}, nil
}

// RecordTamperingReport handles a client-side tampering report. The event is
// appended to the log first; if the report names a known player the counter
// escalates through the same threshold logic as a value violation, and a
// critical severity bans immediately regardless of the counter state.
func (s *Service) RecordTamperingReport(ctx context.Context, event *model.TamperingEvent) (Action, error) {
	if err := s.storage.AppendTamperingEvent(ctx, event); err != nil {
		return "", err
	}

	critical := event.Severity == model.SeverityCritical

	if event.PlayerID == "" {
		// Device-only report: nothing to escalate against, the action hint
		// still reflects severity so the client can react.
		if critical {
			return ActionBan, nil
		}
		return ActionWarn, nil
	}

	now := s.clock.Now()
	record, err := s.storage.UpdatePlayer(ctx, event.PlayerID, func(r *model.PlayerRecord) error {
		r.TamperingAttempts++
		if critical || r.TamperingAttempts >= s.cfg.ViolationThreshold {
			r.Ban(now)
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			// Unregistered player: the action hint still reflects severity
			if critical {
				return ActionBan, nil
			}
			return ActionWarn, nil
		}
		return "", err
	}

	if record.IsBanned {
		return ActionBan, nil
	}
	return ActionWarn, nil
}
