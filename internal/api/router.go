package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partyquiz/partyquiz/internal/api/handler"
	"github.com/partyquiz/partyquiz/internal/api/middleware"
	"github.com/partyquiz/partyquiz/internal/services/auth"
	"github.com/partyquiz/partyquiz/internal/services/game"
	"github.com/partyquiz/partyquiz/internal/services/membership"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger               *slog.Logger
	AuthService          *auth.Service
	MembershipController *membership.Controller
	GameController       *game.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.MembershipController, cfg.GameController)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no auth required for creating accounts/logging in)
	api.HandleFunc("/auth/guest", authHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Protected auth routes
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(authMiddleware)
	authProtected.HandleFunc("/me", authHandler.GetMe).Methods(http.MethodGet)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{game_id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{game_id}/start", gameHandler.Start).Methods(http.MethodPost)
	games.HandleFunc("/{game_id}/question", gameHandler.Question).Methods(http.MethodGet)
	games.HandleFunc("/{game_id}/answer", gameHandler.SubmitAnswer).Methods(http.MethodPost)
	games.HandleFunc("/{game_id}/reveal", gameHandler.Reveal).Methods(http.MethodGet)
	games.HandleFunc("/{game_id}/advance", gameHandler.Advance).Methods(http.MethodPost)
	games.HandleFunc("/{game_id}/vote", gameHandler.Vote).Methods(http.MethodPost)
	games.HandleFunc("/{game_id}/results", gameHandler.Results).Methods(http.MethodGet)
	games.HandleFunc("/{game_id}/next", gameHandler.Next).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
