package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lostbeltno7/GameGuardian/internal/api/apierr"
	"github.com/lostbeltno7/GameGuardian/internal/api/response"
	"github.com/lostbeltno7/GameGuardian/internal/model"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// historyLimit bounds the tampering and sync histories returned per player
const historyLimit = 50

// ManagementHandler serves the operator-facing player inspection endpoint
type ManagementHandler struct {
	storage storage.Storage
}

// NewManagementHandler creates a new management handler
func NewManagementHandler(store storage.Storage) *ManagementHandler {
	return &ManagementHandler{
		storage: store,
	}
}

// GetPlayer handles GET /api/management/player/{playerId}
func (h *ManagementHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["playerId"])
	if playerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("playerId is required"))
		return
	}

	record, err := h.storage.GetPlayer(r.Context(), playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	tamperingEvents, err := h.storage.ListTamperingEvents(r.Context(), playerID, historyLimit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	syncEvents, err := h.storage.ListSyncEvents(r.Context(), playerID, historyLimit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.PlayerDetailResponse{
		Player:          response.PlayerSummaryFromModel(record),
		TamperingEvents: make([]response.TamperingEventSummary, 0, len(tamperingEvents)),
		SyncEvents:      make([]response.SyncEventSummary, 0, len(syncEvents)),
	}
	for _, e := range tamperingEvents {
		resp.TamperingEvents = append(resp.TamperingEvents, response.TamperingEventSummaryFromModel(e))
	}
	for _, e := range syncEvents {
		resp.SyncEvents = append(resp.SyncEvents, response.SyncEventSummaryFromModel(e))
	}

	response.JSON(w, http.StatusOK, resp)
}
