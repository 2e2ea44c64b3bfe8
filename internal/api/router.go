package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lostbeltno7/GameGuardian/internal/api/handler"
	"github.com/lostbeltno7/GameGuardian/internal/api/middleware"
	"github.com/lostbeltno7/GameGuardian/internal/dependencies/clock"
	"github.com/lostbeltno7/GameGuardian/internal/services/auth"
	"github.com/lostbeltno7/GameGuardian/internal/services/escalate"
	"github.com/lostbeltno7/GameGuardian/internal/services/verify"
	"github.com/lostbeltno7/GameGuardian/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	Verifier    *verify.Verifier
	Escalator   *escalate.Service
	AuthService *auth.Service
	Clock       clock.Clock
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	tamperingHandler := handler.NewTamperingHandler(cfg.Escalator, cfg.Clock)
	playerHandler := handler.NewPlayerHandler(cfg.Storage, cfg.Clock)
	syncHandler := handler.NewSyncHandler(cfg.Storage, cfg.Verifier, cfg.Escalator, cfg.Clock, cfg.Logger)
	managementHandler := handler.NewManagementHandler(cfg.Storage)

	// Create middleware
	apiKeyMiddleware := middleware.APIKey(cfg.AuthService)
	adminKeyMiddleware := middleware.AdminKey(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Client-facing routes, gated on the shared API key
	client := api.NewRoute().Subrouter()
	client.Use(apiKeyMiddleware)
	client.HandleFunc("/log-tampering", tamperingHandler.LogTampering).Methods(http.MethodPost)
	client.HandleFunc("/register-player", playerHandler.Register).Methods(http.MethodPost)
	client.HandleFunc("/sync-game-values", syncHandler.SyncValues).Methods(http.MethodPost)

	// Management routes, gated on the admin key
	management := api.PathPrefix("/management").Subrouter()
	management.Use(adminKeyMiddleware)
	management.HandleFunc("/player/{playerId}", managementHandler.GetPlayer).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint, outside the /api tree
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
