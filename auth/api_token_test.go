package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	"github.com/jrsteele09/go-atlassian-gateway/auth"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/stretchr/testify/require"
)

func newWhoamiSite(t *testing.T) (domain string, client *http.Client) {
	t.Helper()
	check := func(w http.ResponseWriter, r *http.Request, body string) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "jane@example.com" || pass != "good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/myself", func(w http.ResponseWriter, r *http.Request) {
		check(w, r, `{"accountId":"abc","emailAddress":"jane@example.com","displayName":"Jane"}`)
	})
	mux.HandleFunc("GET /wiki/rest/api/user/current", func(w http.ResponseWriter, r *http.Request) {
		check(w, r, `{"accountId":"abc","email":"jane@example.com","displayName":"Jane"}`)
	})
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "https://"), srv.Client()
}

func TestAPITokenValidator_Validate(t *testing.T) {
	domain, client := newWhoamiSite(t)
	v := auth.NewAPITokenValidator(client)
	ctx := context.Background()

	for _, provider := range atlassian.Providers {
		t.Run(string(provider), func(t *testing.T) {
			info, err := v.Validate(ctx, domain, "jane@example.com", "good-token", provider)
			require.NoError(t, err)
			require.Equal(t, "good-token", info.AccessToken)
			require.Equal(t, "Basic", info.TokenType)
			require.Equal(t, domain, info.Domain)
			require.Equal(t, atlassian.AuthMethodAPIToken, info.AuthMethod)
			require.Equal(t, provider, info.Provider)
			require.Equal(t, "jane@example.com", info.BasicEmail())
			require.Equal(t, "Jane", info.UserInfo.String("displayName"))
			require.NoError(t, info.Validate())
		})
	}
}

func TestAPITokenValidator_Rejects(t *testing.T) {
	domain, client := newWhoamiSite(t)
	v := auth.NewAPITokenValidator(client)
	ctx := context.Background()

	t.Run("wrong token", func(t *testing.T) {
		_, err := v.Validate(ctx, domain, "jane@example.com", "bad-token", atlassian.ProviderJira)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unreachable site", func(t *testing.T) {
		_, err := v.Validate(ctx, "127.0.0.1:1", "jane@example.com", "good-token", atlassian.ProviderConfluence)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := v.Validate(ctx, domain, "jane@example.com", "good-token", atlassian.Provider("bitbucket"))
		require.ErrorIs(t, err, apperrors.ErrUnsupportedProvider)
	})
}
