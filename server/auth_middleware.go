package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyCredentials stores the session's atlassian.TokenInfo
	ContextKeyCredentials ContextKey = "credentials"
	// ContextKeySessionID stores the session identifier the credentials were resolved from
	ContextKeySessionID ContextKey = "session_id"
)

// CredentialsFromContext returns the credential record attached by SessionGate.
func CredentialsFromContext(ctx context.Context) (atlassian.TokenInfo, bool) {
	info, ok := ctx.Value(ContextKeyCredentials).(atlassian.TokenInfo)
	return info, ok
}

// SessionIDFromContext returns the session identifier attached by SessionGate.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeySessionID).(string)
	return id
}

// protectedPrefix returns the configured prefix guarding path, if any.
func protectedPrefix(path string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		p = "/" + strings.Trim(p, "/")
		if path == p || strings.HasPrefix(path, p+"/") {
			return p, true
		}
	}
	return "", false
}

// SessionGate requires a valid session cookie for every path under prefixes.
// When a prefix names a provider, the session must belong to that provider.
// Pre-flight requests always pass.
func (s *Server) SessionGate(prefixes []string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next(w, r)
				return
			}
			prefix, protected := protectedPrefix(r.URL.Path, prefixes)
			if !protected {
				next(w, r)
				return
			}

			sessionID, info, err := s.sessionFromRequest(r)
			if err != nil {
				writeSessionError(w, r, err)
				return
			}

			if required, perr := atlassian.ParseProvider(strings.TrimPrefix(prefix, "/")); perr == nil && info.Provider != required {
				log.Ctx(r.Context()).Info().
					Str("required", string(required)).
					Str("provider", string(info.Provider)).
					Msg("gate.provider_mismatch")
				writeHTTPError(w, r, &apperrors.HTTPError{
					StatusCode: http.StatusForbidden,
					Code:       apperrors.CodeInsufficientPerms,
					Message:    "Insufficient permissions",
					Details: map[string]string{
						"required_provider": string(required),
						"reason":            "Session not authenticated for " + required.Title(),
					},
				})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyCredentials, info)
			ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromRequest resolves the session named by the request's cookie.
func (s *Server) sessionFromRequest(r *http.Request) (string, atlassian.TokenInfo, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", atlassian.TokenInfo{}, apperrors.ErrAuthenticationRequired
	}
	info, ok := s.loginSessions.Get(cookie.Value)
	if !ok {
		return "", atlassian.TokenInfo{}, apperrors.ErrSessionNotFound
	}
	return cookie.Value, info, nil
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		writeError(w, r, http.StatusUnauthorized, apperrors.CodeInvalidSession, "Invalid session")
		return
	}
	writeError(w, r, http.StatusUnauthorized, apperrors.CodeAuthenticationRequired, "Authentication required")
}
