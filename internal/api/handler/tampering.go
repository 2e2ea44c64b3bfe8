package handler

import (
	"encoding/json"
	"fmt"
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
)

// TamperingHandler handles tampering report endpoints
type TamperingHandler struct {
	escalator *escalate.Service
	clock     clock.Clock
}

// NewTamperingHandler creates a new tampering handler
func NewTamperingHandler(escalator *escalate.Service, clk clock.Clock) *TamperingHandler {
	return &TamperingHandler{
		escalator: escalator,
		clock:     clk,
	}
}

// LogTampering handles POST /api/log-tampering
func (h *TamperingHandler) LogTampering(w http.ResponseWriter, r *http.Request) {
	var req request.LogTamperingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.DeviceID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("deviceId is required"))
		return
	}
	if len(req.DeviceID) > request.MaxIdentifierLength || len(req.PlayerID) > request.MaxIdentifierLength {
		apierr.WriteError(w, apierr.NewInvalidRequestError("identifier exceeds maximum length"))
		return
	}
	if req.Type == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("type is required"))
		return
	}

	kind := req.Type
	if len(kind) > model.MaxEventKindLength {
		kind = kind[:model.MaxEventKindLength]
	}

	event := &model.TamperingEvent{
		ID:              uuid.NewString(),
		ServerTimestamp: h.clock.Now(),
		ClientTimestamp: parseClientTime(req.Timestamp),
		Severity:        model.ParseSeverity(req.Severity),
		Kind:            kind,
		DeviceID:        model.DeviceID(req.DeviceID),
		PlayerID:        model.PlayerID(req.PlayerID),
		Details:         req.Details,
	}

	action, err := h.escalator.RecordTamperingReport(r.Context(), event)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	metrics.TamperingReportsTotal.WithLabelValues(string(event.Severity)).Inc()

	if action == escalate.ActionBan {
		metrics.BansIssuedTotal.Inc()
		response.JSON(w, http.StatusForbidden, response.TamperingResponse{
			Message:   "Tampering detected, account suspended",
			Action:    string(action),
			Duration:  h.escalator.BanDuration().String(),
			RequestID: event.ID,
		})
		return
	}

	response.JSON(w, http.StatusOK, response.TamperingResponse{
		Message:   fmt.Sprintf("Tampering report recorded (%s)", event.Severity),
		Action:    string(action),
		RequestID: event.ID,
	})
}

// parseClientTime converts a client epoch-millis timestamp if present.
// Malformed timestamps are dropped rather than rejected: the report
// itself is still worth recording.
func parseClientTime(raw any) *time.Time {
	switch v := raw.(type) {
	case float64:
		t := time.UnixMilli(int64(v))
		return &t
	case int64:
		t := time.UnixMilli(v)
		return &t
	default:
		return nil
	}
}
