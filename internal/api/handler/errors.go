package handler

import (
	"net/http"

	"github.com/partyquiz/partyquiz/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeUnauthorized        = apierr.CodeUnauthorized
	CodeInvalidCredentials  = apierr.CodeInvalidCredentials
	CodeEmailExists         = apierr.CodeEmailExists
	CodeUserNotFound        = apierr.CodeUserNotFound
	CodeGameNotFound        = apierr.CodeGameNotFound
	CodeGameAlreadyStarted  = apierr.CodeGameAlreadyStarted
	CodeGameNotStarted      = apierr.CodeGameNotStarted
	CodeGameFinished        = apierr.CodeGameFinished
	CodeWrongPhase          = apierr.CodeWrongPhase
	CodeInsufficientPlayers = apierr.CodeInsufficientPlayers
	CodePlayerNotFound      = apierr.CodePlayerNotFound
	CodeAlreadyJoined       = apierr.CodeAlreadyJoined
	CodeNotInGame           = apierr.CodeNotInGame
	CodeNotHost             = apierr.CodeNotHost
	CodeEmptyName           = apierr.CodeEmptyName
	CodeQuestionNotFound    = apierr.CodeQuestionNotFound
	CodeAnswerNotFound      = apierr.CodeAnswerNotFound
	CodeEmptyAnswer         = apierr.CodeEmptyAnswer
	CodeNoQuestions         = apierr.CodeNoQuestions
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}
