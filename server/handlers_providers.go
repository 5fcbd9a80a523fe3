package server

import (
	"net/http"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// ValidationResponse is returned by the connection probes.
type ValidationResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// credentials returns the record SessionGate attached. Reaching a provider route
// without one means the gate was not configured for it.
func credentials(r *http.Request) atlassian.TokenInfo {
	info, ok := CredentialsFromContext(r.Context())
	if !ok {
		panic(apperrors.NewHTTPError(http.StatusUnauthorized, apperrors.CodeAuthenticationRequired, "Authentication required"))
	}
	return info
}

// writeServiceInitError reports a failure to build a service client.
func writeServiceInitError(w http.ResponseWriter, r *http.Request, err error, service string) {
	var svcErr *apperrors.ServiceError
	if apperrors.As(err, &svcErr) && svcErr.Kind == apperrors.KindConfiguration {
		log.Ctx(r.Context()).Error().Err(err).Str("service", service).Msg("service.misconfigured")
		writeError(w, r, http.StatusInternalServerError, apperrors.CodeConfigurationError, svcErr.Message)
		return
	}
	writeServiceError(w, r, err, service)
}

func validationResponse(valid bool) ValidationResponse {
	msg := "Connection is invalid"
	if valid {
		msg = "Connection is valid"
	}
	return ValidationResponse{Success: true, Valid: valid, Message: msg}
}
