package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeGameAlreadyStarted  = "GAME_ALREADY_STARTED"
	CodeGameNotStarted      = "GAME_NOT_STARTED"
	CodeGameFinished        = "GAME_FINISHED"
	CodeWrongPhase          = "WRONG_PHASE"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeAlreadyJoined       = "ALREADY_JOINED"
	CodeNotInGame           = "NOT_IN_GAME"
	CodeNotHost             = "NOT_HOST"
	CodeEmptyName           = "EMPTY_NAME"
	CodeQuestionNotFound    = "QUESTION_NOT_FOUND"
	CodeAnswerNotFound      = "ANSWER_NOT_FOUND"
	CodeEmptyAnswer         = "EMPTY_ANSWER"
	CodeNoQuestions         = "NO_QUESTIONS_LOADED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameAlreadyStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameAlreadyStarted, "Game has already started"}}
	case errors.Is(err, model.ErrGameNotStarted):
		return &httpError{http.StatusConflict, APIError{CodeGameNotStarted, "Game has not started yet"}}
	case errors.Is(err, model.ErrGameFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameFinished, "Game is finished"}}
	case errors.Is(err, model.ErrWrongPhase):
		return &httpError{http.StatusConflict, APIError{CodeWrongPhase, "Action not valid in the current game phase"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Need at least 2 players to start"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrAlreadyJoined):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyJoined, "Already joined this game"}}
	case errors.Is(err, model.ErrNotInGame):
		return &httpError{http.StatusForbidden, APIError{CodeNotInGame, "You are not a player in this game"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrEmptyName):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyName, "Display name must not be empty"}}
	case errors.Is(err, model.ErrQuestionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeQuestionNotFound, "Question not found"}}
	case errors.Is(err, model.ErrAnswerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAnswerNotFound, "Answer not found"}}
	case errors.Is(err, model.ErrEmptyAnswer):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyAnswer, "Answer text must not be empty"}}
	case errors.Is(err, model.ErrEmptyQuestionCorpus):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeNoQuestions, "No questions loaded"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{CodeEmailExists, "Email is already registered"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
