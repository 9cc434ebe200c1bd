package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/partyquiz/partyquiz/internal/api/middleware"
	"github.com/partyquiz/partyquiz/internal/api/request"
	"github.com/partyquiz/partyquiz/internal/api/response"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/game"
	"github.com/partyquiz/partyquiz/internal/services/membership"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	membership *membership.Controller
	games      *game.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(membershipController *membership.Controller, gameController *game.Controller) *GameHandler {
	return &GameHandler{
		membership: membershipController,
		games:      gameController,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["game_id"])
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for default config
		req = request.CreateGameRequest{}
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = user.Name
	}

	cfg := model.GameConfig{
		QuestionsPerRound: req.QuestionsPerRound,
		TimerSeconds:      req.TimerSeconds,
	}
	created, _, err := h.membership.CreateGame(r.Context(), user, displayName, cfg)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), created.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(created, players))
}

// Join handles POST /api/v1/games/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = user.Name
	}

	joined, _, err := h.membership.JoinGame(r.Context(), req.Code, user, displayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), joined.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(joined, players))
}

// Get handles GET /api/v1/games/{game_id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	id := gameID(r)

	current, err := h.membership.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if _, err := h.membership.Member(r.Context(), id, user.ID); err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(current, players))
}

// Start handles POST /api/v1/games/{game_id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	id := gameID(r)

	started, err := h.membership.StartGame(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(started, players))
}

// Question handles GET /api/v1/games/{game_id}/question
func (h *GameHandler) Question(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	question, err := h.games.CurrentQuestion(r.Context(), gameID(r), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuestionFromModel(question))
}

// SubmitAnswer handles POST /api/v1/games/{game_id}/answer
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	answer, err := h.games.SubmitAnswer(r.Context(), gameID(r), user.ID, req.Text)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AnswerFromModel(answer))
}

// Reveal handles GET /api/v1/games/{game_id}/reveal
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	revealed, err := h.games.Reveal(r.Context(), gameID(r), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RevealResponseFromModel(revealed))
}

// Advance handles POST /api/v1/games/{game_id}/advance
func (h *GameHandler) Advance(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	id := gameID(r)

	advanced, err := h.games.AdvanceToVoting(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(advanced, players))
}

// Vote handles POST /api/v1/games/{game_id}/vote
func (h *GameHandler) Vote(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AnswerID == "" {
		WriteError(w, NewInvalidRequestError("answer_id is required"))
		return
	}

	vote, err := h.games.SubmitVote(r.Context(), gameID(r), user.ID, model.AnswerID(req.AnswerID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VoteFromModel(vote))
}

// Results handles GET /api/v1/games/{game_id}/results
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	results, err := h.games.Results(r.Context(), gameID(r), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultsResponseFromModel(results))
}

// Next handles POST /api/v1/games/{game_id}/next
func (h *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	id := gameID(r)

	advanced, err := h.games.NextRound(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	players, err := h.membership.Players(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(advanced, players))
}
