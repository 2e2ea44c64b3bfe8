package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lostbeltno7/GameGuardian/internal/api/apierr"
	"github.com/lostbeltno7/GameGuardian/internal/api/request"
	"github.com/lostbeltno7/GameGuardian/internal/api/response"
	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// PlayerHandler handles player registration
type PlayerHandler struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(store storage.Storage, clk clock.Clock) *PlayerHandler {
	return &PlayerHandler{
		storage: store,
		clock:   clk,
	}
}

// Register handles POST /api/register-player.
// Registering an existing player merges initialData into the stored record
// and answers 200; a new player answers 201.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.PlayerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("playerId is required"))
		return
	}
	if req.DeviceID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("deviceId is required"))
		return
	}
	if len(req.PlayerID) > request.MaxIdentifierLength || len(req.DeviceID) > request.MaxIdentifierLength {
		apierr.WriteError(w, apierr.NewInvalidRequestError("identifier exceeds maximum length"))
		return
	}

	playerID := model.PlayerID(req.PlayerID)
	now := h.clock.Now()
	requestID := uuid.NewString()

	updated, err := h.storage.UpdatePlayer(r.Context(), playerID, func(rec *model.PlayerRecord) error {
		rec.DeviceID = model.DeviceID(req.DeviceID)
		rec.GameData = rec.GameData.Merge(model.GameValues(req.InitialData))
		rec.UpdatedAt = now
		return nil
	})
	if err == nil {
		response.JSON(w, http.StatusOK, response.RegisterResponse{
			Message:   "Player updated",
			PlayerID:  string(updated.PlayerID),
			Created:   false,
			RequestID: requestID,
		})
		return
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		apierr.WriteError(w, err)
		return
	}

	record := &model.PlayerRecord{
		PlayerID:  playerID,
		DeviceID:  model.DeviceID(req.DeviceID),
		GameData:  model.GameValues(req.InitialData).Clone(),
		LastSync:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if record.GameData == nil {
		record.GameData = model.GameValues{}
	}

	if err := h.storage.SavePlayer(r.Context(), record); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RegisterResponse{
		Message:   "Player registered",
		PlayerID:  string(record.PlayerID),
		Created:   true,
		RequestID: requestID,
	})
}
