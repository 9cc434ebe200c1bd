package middleware

import (
	"log/slog"
	"net/http"

	"github.com/partyquiz/partyquiz/internal/api/apierr"
	"github.com/partyquiz/partyquiz/internal/middleware"
)

// Logging re-exports the shared request logging middleware
var Logging = middleware.Logging

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
