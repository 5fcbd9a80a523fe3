package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	"github.com/jrsteele09/go-atlassian-gateway/auth"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
)

const maxRequestBody = 1 << 20

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"message": "Healthy", "status": "ok"})
	}
}

// providerFromPath reads the {provider} path segment, writing a 400 when it is unknown.
func providerFromPath(w http.ResponseWriter, r *http.Request) (atlassian.Provider, bool) {
	provider, err := atlassian.ParseProvider(r.PathValue("provider"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, apperrors.CodeUnsupportedProvider, err.Error())
		return "", false
	}
	return provider, true
}

// decodeRequest reads a JSON body into dst and validates it, writing a 422 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, apperrors.CodeValidationError, "Invalid request body")
		return false
	}

	if err := auth.ValidateRequest(dst); err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			writeHTTPError(w, r, &apperrors.HTTPError{
				StatusCode: http.StatusUnprocessableEntity,
				Code:       apperrors.CodeValidationError,
				Message:    "Request validation failed",
				Details:    verr.Fields,
			})
			return false
		}
		writeError(w, r, http.StatusUnprocessableEntity, apperrors.CodeValidationError, "Invalid request body")
		return false
	}
	return true
}
