package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type listMeta struct {
	Total int `json:"total"`
}

type successResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Message string    `json:"message,omitempty"`
	Meta    *listMeta `json:"meta,omitempty"`
}

// writeJSON encodes data before any header is sent so an encoding failure can
// still be reported as a 500 envelope.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("response.encode")
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: errorBody{
			Code:    apperrors.CodeInternalError,
			Message: "Internal server error",
		}})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(r.Context()).Debug().Err(err).Msg("response.write")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeHTTPError(w http.ResponseWriter, r *http.Request, e *apperrors.HTTPError) {
	writeJSON(w, r, e.StatusCode, errorResponse{Error: errorBody{Code: e.Code, Message: e.Message, Details: e.Details}})
}

// writeServiceError reports an upstream failure using the error classifier.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, service string) {
	c := apperrors.Classify(err, service)

	event := log.Ctx(r.Context()).Warn()
	if c.Status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("service", service).Int("status", c.Status).Str("code", c.Code).Msg("upstream.failed")

	writeJSON(w, r, c.Status, errorResponse{Error: errorBody{Code: c.Code, Message: c.Message, Type: c.Kind}})
}

// writeAuthError maps the authentication flow sentinels to their responses.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidState):
		writeError(w, r, http.StatusBadRequest, apperrors.CodeInvalidState, "Invalid OAuth state")
	case apperrors.Is(err, apperrors.ErrTokenExchangeFailed):
		writeError(w, r, http.StatusBadRequest, apperrors.CodeTokenExchangeFailed, "Failed to exchange code for token")
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, apperrors.CodeInvalidCredentials, "Invalid API token credentials")
	case apperrors.Is(err, apperrors.ErrUnsupportedProvider):
		writeError(w, r, http.StatusBadRequest, apperrors.CodeUnsupportedProvider, "Unsupported provider")
	case apperrors.Is(err, apperrors.ErrConfiguration):
		writeError(w, r, http.StatusInternalServerError, apperrors.CodeConfigurationError, "Server configuration error")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("auth.failed")
		writeError(w, r, http.StatusInternalServerError, apperrors.CodeInternalError, "An unexpected error occurred")
	}
}
