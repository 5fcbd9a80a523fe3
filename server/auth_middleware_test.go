package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/server"
	"github.com/stretchr/testify/require"
)

func TestSessionGate(t *testing.T) {
	env := newTestEnv(t, nil)
	jira := env.session(t, atlassian.ProviderJira)
	confluence := env.session(t, atlassian.ProviderConfluence)

	t.Run("no cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/jira/projects", nil)
		errBody := requireError(t, rec, http.StatusUnauthorized, apperrors.CodeAuthenticationRequired)
		require.Equal(t, "Authentication required", errBody["message"])
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/confluence/spaces", nil,
			&http.Cookie{Name: server.SessionCookieName, Value: "does-not-exist"})
		errBody := requireError(t, rec, http.StatusUnauthorized, apperrors.CodeInvalidSession)
		require.Equal(t, "Invalid session", errBody["message"])
	})

	t.Run("session for another provider", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/jira/projects", nil, confluence)
		errBody := requireError(t, rec, http.StatusForbidden, apperrors.CodeInsufficientPerms)
		require.Equal(t, "Insufficient permissions", errBody["message"])
		details, ok := errBody["details"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "jira", details["required_provider"])

		rec = env.do(t, http.MethodGet, "/confluence/spaces/ENG/content", nil, jira)
		requireError(t, rec, http.StatusForbidden, apperrors.CodeInsufficientPerms)
	})

	t.Run("matching session", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/jira/projects", nil, jira)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("pre-flight passes without a cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/jira/projects", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

		rec = env.do(t, http.MethodOptions, "/confluence/spaces", nil, jira)
		require.NotEqual(t, http.StatusUnauthorized, rec.Code)
		require.NotEqual(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unprotected paths are not gated", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/jiraboard", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSessionGate_CustomPrefixes(t *testing.T) {
	env := newTestEnv(t, map[string]any{"protected_paths": "/confluence"})

	// The handler still refuses to run without credentials.
	rec := env.do(t, http.MethodGet, "/jira/projects", nil)
	requireError(t, rec, http.StatusUnauthorized, apperrors.CodeAuthenticationRequired)

	rec = env.do(t, http.MethodGet, "/confluence/spaces", nil)
	requireError(t, rec, http.StatusUnauthorized, apperrors.CodeAuthenticationRequired)
}

func TestCors(t *testing.T) {
	env := newTestEnv(t, map[string]any{"allowed_origins": "https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, server.CorrelationIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
}
