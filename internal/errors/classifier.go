package errors

import (
	"net/http"
	"strings"
)

// Machine codes returned to clients.
const (
	CodeAuthFailed             = "AUTH_FAILED"
	CodeAccessForbidden        = "ACCESS_FORBIDDEN"
	CodeNetworkError           = "NETWORK_ERROR"
	CodeRateLimit              = "RATE_LIMIT"
	CodeServiceError           = "SERVICE_ERROR"
	CodeInternalError          = "INTERNAL_ERROR"
	CodeConfigurationError     = "CONFIGURATION_ERROR"
	CodeInvalidState           = "INVALID_STATE"
	CodeTokenExchangeFailed    = "TOKEN_EXCHANGE_FAILED"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeInvalidSession         = "INVALID_SESSION"
	CodeInsufficientPerms      = "INSUFFICIENT_PERMISSIONS"
	CodeNotFound               = "NOT_FOUND"
	CodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeUnsupportedProvider    = "UNSUPPORTED_PROVIDER"
)

// Classification is the client-facing outcome of an error.
type Classification struct {
	Status  int
	Kind    string
	Message string
	Code    string
}

type rule struct {
	phrases []string
	build   func(err error, service string) Classification
}

// rules are evaluated in order; the first phrase match wins.
var rules = []rule{
	{
		phrases: []string{"authentication failed", "invalid or expired token"},
		build: func(err error, _ string) Classification {
			return Classification{http.StatusUnauthorized, "Authentication Error", err.Error(), CodeAuthFailed}
		},
	},
	{
		phrases: []string{"access forbidden", "insufficient permissions"},
		build: func(err error, _ string) Classification {
			return Classification{http.StatusForbidden, "Permission Error", err.Error(), CodeAccessForbidden}
		},
	},
	{
		phrases: []string{"network error"},
		build: func(error, string) Classification {
			return Classification{http.StatusBadGateway, "Network Error", "Unable to connect to external service", CodeNetworkError}
		},
	},
	{
		phrases: []string{"rate limit", "too many requests"},
		build: func(error, string) Classification {
			return Classification{http.StatusTooManyRequests, "Rate Limit Exceeded", "Too many requests. Please try again later.", CodeRateLimit}
		},
	},
}

// Classify maps a service failure to an HTTP outcome by inspecting its message.
// Errors that are not ServiceErrors are reported as internal errors without detail.
func Classify(err error, service string) Classification {
	var svcErr *ServiceError
	if err == nil || !As(err, &svcErr) {
		return Classification{
			Status:  http.StatusInternalServerError,
			Kind:    "Internal Server Error",
			Message: "An unexpected error occurred",
			Code:    CodeInternalError,
		}
	}

	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, phrase := range r.phrases {
			if strings.Contains(msg, phrase) {
				return r.build(err, service)
			}
		}
	}

	return Classification{
		Status:  http.StatusBadRequest,
		Kind:    service + " Error",
		Message: err.Error(),
		Code:    CodeServiceError,
	}
}
