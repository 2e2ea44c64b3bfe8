package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lostbeltno7/GameGuardian/internal/api/apierr"
	"github.com/lostbeltno7/GameGuardian/internal/api/request"
	"github.com/lostbeltno7/GameGuardian/internal/api/response"
	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/metrics"
	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/services/escalate"
	"github.com/lostbeltno7/GameGuardian/internal/services/verify"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// SyncHandler reconciles client-reported game values against the
// authoritative store
type SyncHandler struct {
	storage   storage.Storage
	verifier  *verify.Verifier
	escalator *escalate.Service
	clock     clock.Clock
	logger    *slog.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(store storage.Storage, verifier *verify.Verifier, escalator *escalate.Service, clk clock.Clock, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		storage:   store,
		verifier:  verifier,
		escalator: escalator,
		clock:     clk,
		logger:    logger,
	}
}

// SyncValues handles POST /api/sync-game-values.
//
// The suspension check runs before any value rule, and a suspended player
// gets a 403 without re-evaluating values. Invalid values escalate through
// the violation counter exactly once per request.
func (h *SyncHandler) SyncValues(w http.ResponseWriter, r *http.Request) {
	var req request.SyncValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.PlayerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("playerId is required"))
		return
	}
	if len(req.PlayerID) > request.MaxIdentifierLength {
		apierr.WriteError(w, apierr.NewInvalidRequestError("identifier exceeds maximum length"))
		return
	}

	playerID := model.PlayerID(req.PlayerID)
	requestID := uuid.NewString()
	now := h.clock.Now()

	record, err := h.storage.GetPlayer(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if record.IsBanned {
		h.appendSyncEvent(r.Context(), &req, model.SyncSuspended, "Account suspended", now)
		metrics.SyncRequestsTotal.WithLabelValues(string(model.SyncSuspended)).Inc()
		response.JSON(w, http.StatusForbidden, response.SyncResponse{
			Status:          string(model.SyncSuspended),
			Reason:          "Account suspended",
			Action:          string(escalate.ActionBan),
			ServerTimestamp: now,
			RequestID:       requestID,
		})
		return
	}

	result := h.verifier.Verify(record, verify.Input{
		Proposed:        model.GameValues(req.GameValues),
		ClientTimestamp: req.ClientTimestamp,
		HealthPowerup:   req.HasPowerup("health"),
	})

	if result.Valid {
		updated, err := h.storage.UpdatePlayer(r.Context(), playerID, func(rec *model.PlayerRecord) error {
			if rec.IsBanned {
				return model.ErrPlayerSuspended
			}
			rec.GameData = rec.GameData.Merge(model.GameValues(req.GameValues))
			rec.LastSync = now
			rec.UpdatedAt = now
			return nil
		})
		if err != nil {
			apierr.WriteError(w, err)
			return
		}

		h.appendSyncEvent(r.Context(), &req, model.SyncValid, "", now)
		metrics.SyncRequestsTotal.WithLabelValues(string(model.SyncValid)).Inc()

		response.JSON(w, http.StatusOK, response.SyncResponse{
			Status:          string(model.SyncValid),
			ServerTimestamp: now,
			VerifiedValues:  updated.GameData,
			RequestID:       requestID,
		})
		return
	}

	outcome, err := h.escalator.RecordViolation(r.Context(), playerID, result.Reason)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.appendSyncEvent(r.Context(), &req, model.SyncInvalid, result.Reason, now)
	metrics.SyncRequestsTotal.WithLabelValues(string(model.SyncInvalid)).Inc()
	metrics.SyncRejectionsTotal.Inc()

	status := http.StatusOK
	if outcome.Action == escalate.ActionBan {
		status = http.StatusForbidden
		metrics.BansIssuedTotal.Inc()
	}

	response.JSON(w, status, response.SyncResponse{
		Status:          string(model.SyncInvalid),
		Reason:          result.Reason,
		Action:          string(outcome.Action),
		ServerTimestamp: now,
		ServerValues:    outcome.Record.GameData,
		RequestID:       requestID,
	})
}

// appendSyncEvent logs the exchange; log failures are non-fatal because
// the verdict has already been decided and persisted.
func (h *SyncHandler) appendSyncEvent(ctx context.Context, req *request.SyncValuesRequest, outcome model.SyncOutcome, reason string, now time.Time) {
	event := &model.SyncEvent{
		PlayerID:         model.PlayerID(req.PlayerID),
		SessionID:        req.SessionID,
		Outcome:          outcome,
		Reason:           reason,
		DeclaredChecksum: req.Checksum,
		ServerTimestamp:  now,
	}
	if err := h.storage.AppendSyncEvent(ctx, event); err != nil {
		h.logger.Warn("failed to append sync event",
			slog.String("player_id", req.PlayerID),
			slog.String("error", err.Error()),
		)
	}
}
