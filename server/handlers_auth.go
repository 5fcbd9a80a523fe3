package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	"github.com/jrsteele09/go-atlassian-gateway/auth"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// AuthResponse is returned by every authentication endpoint.
type AuthResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	SessionID string             `json:"session_id,omitempty"`
	UserInfo  atlassian.Document `json:"user_info,omitempty"`
}

// SessionInfo describes the current session without exposing secrets.
type SessionInfo struct {
	Provider   atlassian.Provider   `json:"provider"`
	AuthMethod atlassian.AuthMethod `json:"auth_method"`
	Domain     string               `json:"domain,omitempty"`
	ExpiresAt  time.Time            `json:"expires_at,omitzero"`
	UserInfo   atlassian.Document   `json:"user_info,omitempty"`
}

// OAuthStartHandler issues a state token and returns the Atlassian consent URL.
func (s *Server) OAuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := providerFromPath(w, r)
		if !ok {
			return
		}

		res, err := s.oauth.Start(provider)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrConfiguration) {
				log.Ctx(r.Context()).Error().Err(err).Str("provider", string(provider)).Msg("oauth.not_configured")
				writeError(w, r, http.StatusInternalServerError, apperrors.CodeConfigurationError, fmt.Sprintf(
					"OAuth configuration not properly set. Please configure ATLASSIAN_CLIENT_ID and %s_REDIRECT_URI.",
					strings.ToUpper(string(provider))))
				return
			}
			writeAuthError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

// OAuthCallbackHandler completes the flow and opens a session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := providerFromPath(w, r)
		if !ok {
			return
		}

		var req auth.OAuthCallbackRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		info, err := s.oauth.HandleCallback(r.Context(), req.Code, req.State, provider)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Str("provider", string(provider)).Msg("oauth.callback_failed")
			writeAuthError(w, r, err)
			return
		}

		s.openSession(w, r, info, "Successfully authenticated with "+provider.Title())
	}
}

// APITokenHandler validates email + API token credentials and opens a session.
func (s *Server) APITokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := providerFromPath(w, r)
		if !ok {
			return
		}

		var req auth.APITokenRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		info, err := s.apiTokens.Validate(r.Context(), req.Domain, req.Email, req.APIToken, provider)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Str("provider", string(provider)).Str("domain", req.Domain).Msg("api_token.rejected")
			writeAuthError(w, r, err)
			return
		}

		s.openSession(w, r, info, "Successfully authenticated with "+provider.Title()+" API token")
	}
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request, info atlassian.TokenInfo, message string) {
	sessionID, err := s.loginSessions.Create(info)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().
		Str("provider", string(info.Provider)).
		Str("auth_method", string(info.AuthMethod)).
		Msg("session.created")

	s.setSessionCookie(w, sessionID)
	writeJSON(w, r, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   message,
		SessionID: sessionID,
		UserInfo:  info.UserInfo,
	})
}

// LogoutHandler deletes the session named by the cookie or the session_id query parameter.
// It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get(SessionCookieName)
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		}

		if sessionID != "" && s.loginSessions.Delete(sessionID) {
			log.Ctx(r.Context()).Info().Msg("session.deleted")
		}

		s.clearSessionCookie(w)
		writeJSON(w, r, http.StatusOK, AuthResponse{Success: true, Message: "Successfully logged out"})
	}
}

// SessionHandler reports which provider the caller's session is bound to.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, info, err := s.sessionFromRequest(r)
		if err != nil {
			writeSessionError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, successResponse{
			Success: true,
			Data: SessionInfo{
				Provider:   info.Provider,
				AuthMethod: info.AuthMethod,
				Domain:     info.Domain,
				ExpiresAt:  info.ExpiresAt,
				UserInfo:   info.UserInfo,
			},
		})
	}
}
