package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/zenkey/internal/api/middleware"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

// OAuthErrorResponse is the error body of the discovery endpoint.
type OAuthErrorResponse struct {
	Error       string `json:"error"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	resp := ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.CorrelationCtx(r.Context()),
	}
	JSON(w, r, resp, status)
}

// OAuthError writes an error in the shape carriers use for discovery failures.
func OAuthError(w http.ResponseWriter, r *http.Request, code, redirectURI string, status int) {
	JSON(w, r, OAuthErrorResponse{Error: code, RedirectURI: redirectURI}, status)
}
