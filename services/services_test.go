package services_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/services"
	"github.com/stretchr/testify/require"
)

// newSite starts a TLS server and returns an API token credential addressing it.
func newSite(t *testing.T, provider atlassian.Provider, handler http.Handler) (*httptest.Server, atlassian.TokenInfo) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	return srv, atlassian.TokenInfo{
		AccessToken: "api-token",
		TokenType:   "Basic",
		Domain:      strings.TrimPrefix(srv.URL, "https://"),
		UserInfo:    atlassian.Document{"emailAddress": "john.doe@example.com"},
		AuthMethod:  atlassian.AuthMethodAPIToken,
		Provider:    provider,
	}
}

func oauthToken(provider atlassian.Provider) atlassian.TokenInfo {
	return atlassian.TokenInfo{
		AccessToken: "bearer-token",
		TokenType:   "Bearer",
		AuthMethod:  atlassian.AuthMethodOAuth,
		Provider:    provider,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func requireServiceError(t *testing.T, err error) *apperrors.ServiceError {
	t.Helper()
	var svcErr *apperrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	return svcErr
}

func TestNewServices_APITokenWithoutDomain(t *testing.T) {
	token := atlassian.TokenInfo{AccessToken: "x", AuthMethod: atlassian.AuthMethodAPIToken}

	_, err := services.NewJiraService(token, nil, "")
	svcErr := requireServiceError(t, err)
	require.Equal(t, apperrors.KindConfiguration, svcErr.Kind)
	require.True(t, apperrors.Is(err, apperrors.ErrConfiguration))

	_, err = services.NewConfluenceService(token, nil, "")
	require.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
}

func TestJiraService_ListProjects_APIToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/project", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, []map[string]any{
			{
				"id": "10000", "key": "ENG", "name": "Engineering", "projectTypeKey": "software",
				"simplified": true, "style": "next-gen", "isPrivate": true,
				"avatarUrls": map[string]string{"48x48": "https://example.com/a.png"},
				"lead":       map[string]any{"displayName": "dropped"},
			},
			{"id": "10001", "key": "OPS", "name": "Operations", "projectTypeKey": "business"},
		})
	})
	srv, token := newSite(t, atlassian.ProviderJira, mux)

	jira, err := services.NewJiraService(token, srv.Client(), srv.URL)
	require.NoError(t, err)

	projects, err := jira.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("john.doe@example.com:api-token"))
	require.Equal(t, want, gotAuth)

	require.Equal(t, "ENG", projects[0].Key)
	require.NotNil(t, projects[0].Simplified)
	require.True(t, *projects[0].Simplified)
	require.True(t, projects[0].IsPrivate)
	require.NotNil(t, projects[0].Style)
	require.Equal(t, "next-gen", *projects[0].Style)
	require.Equal(t, "https://example.com/a.png", projects[0].AvatarURLs["48x48"])

	require.Equal(t, "OPS", projects[1].Key)
	require.Nil(t, projects[1].Simplified)
	require.Nil(t, projects[1].Style)
	require.False(t, projects[1].IsPrivate)
	require.NotNil(t, projects[1].AvatarURLs)
	require.Empty(t, projects[1].AvatarURLs)

	raw, err := json.Marshal(projects[1])
	require.NoError(t, err)
	require.NotContains(t, string(raw), "lead")
	require.Contains(t, string(raw), `"avatarUrls":{}`)
	require.Contains(t, string(raw), `"style":null`)
	require.Contains(t, string(raw), `"simplified":null`)
}

func TestJiraService_GetProjectDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/project/{key}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("key") {
		case "ENG":
			writeJSON(w, map[string]any{"id": "10000", "key": "ENG", "lead": map[string]any{"displayName": "Jane"}})
		case "LOCKED":
			w.WriteHeader(http.StatusUnauthorized)
		case "HTML":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>login</html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv, token := newSite(t, atlassian.ProviderJira, mux)
	jira, err := services.NewJiraService(token, srv.Client(), srv.URL)
	require.NoError(t, err)

	t.Run("found is passed through unmodified", func(t *testing.T) {
		project, found, err := jira.GetProjectDetails(context.Background(), "ENG")
		require.NoError(t, err)
		require.True(t, found)
		require.JSONEq(t, `{"id":"10000","key":"ENG","lead":{"displayName":"Jane"}}`, string(project))
	})

	t.Run("404 is not found", func(t *testing.T) {
		project, found, err := jira.GetProjectDetails(context.Background(), "NOPE")
		require.NoError(t, err)
		require.False(t, found)
		require.Nil(t, project)
	})

	t.Run("401 is an authentication failure", func(t *testing.T) {
		_, _, err := jira.GetProjectDetails(context.Background(), "LOCKED")
		svcErr := requireServiceError(t, err)
		require.Equal(t, apperrors.KindAuthenticationFailed, svcErr.Kind)

		c := apperrors.Classify(err, "Jira")
		require.Equal(t, http.StatusUnauthorized, c.Status)
		require.Equal(t, apperrors.CodeAuthFailed, c.Code)
	})

	t.Run("non-JSON body is unexpected", func(t *testing.T) {
		project, found, err := jira.GetProjectDetails(context.Background(), "HTML")
		svcErr := requireServiceError(t, err)
		require.Equal(t, apperrors.KindUnexpected, svcErr.Kind)
		require.Equal(t, "Unexpected error while fetching project details", svcErr.Message)
		require.False(t, found)
		require.Nil(t, project)

		c := apperrors.Classify(err, "Jira")
		require.Equal(t, http.StatusBadRequest, c.Status)
		require.Equal(t, apperrors.CodeServiceError, c.Code)
	})
}

func TestJiraService_OAuthDiscovery(t *testing.T) {
	var resourceAuth, projectAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/token/accessible-resources", func(w http.ResponseWriter, r *http.Request) {
		resourceAuth = r.Header.Get("Authorization")
		writeJSON(w, []services.AccessibleResource{
			{ID: "cloud-1", URL: "https://acme.atlassian.net", Name: "acme"},
			{ID: "cloud-2", URL: "https://other.atlassian.net", Name: "other"},
		})
	})
	mux.HandleFunc("GET /ex/jira/cloud-1/rest/api/3/project", func(w http.ResponseWriter, r *http.Request) {
		projectAuth = r.Header.Get("Authorization")
		writeJSON(w, []map[string]any{{"id": "1", "key": "ENG", "name": "Engineering", "projectTypeKey": "software"}})
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()

	jira, err := services.NewJiraService(oauthToken(atlassian.ProviderJira), srv.Client(), srv.URL)
	require.NoError(t, err)

	projects, err := jira.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Bearer bearer-token", resourceAuth)
	require.Equal(t, "Bearer bearer-token", projectAuth)
	require.True(t, jira.ValidateConnection(context.Background()))
}

func TestServices_NoAccessibleResources(t *testing.T) {
	var upstreamCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/token/accessible-resources", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []services.AccessibleResource{})
	})
	mux.HandleFunc("/ex/", func(w http.ResponseWriter, _ *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewTLSServer(mux)
	defer srv.Close()
	ctx := context.Background()

	jira, err := services.NewJiraService(oauthToken(atlassian.ProviderJira), srv.Client(), srv.URL)
	require.NoError(t, err)

	projects, err := jira.ListProjects(ctx)
	require.NoError(t, err)
	require.NotNil(t, projects)
	require.Empty(t, projects)

	_, found, err := jira.GetProjectDetails(ctx, "ENG")
	require.NoError(t, err)
	require.False(t, found)

	confluence, err := services.NewConfluenceService(oauthToken(atlassian.ProviderConfluence), srv.Client(), srv.URL)
	require.NoError(t, err)

	spaces, err := confluence.ListSpaces(ctx)
	require.NoError(t, err)
	require.NotNil(t, spaces)
	require.Empty(t, spaces)

	content, err := confluence.ListSpaceContent(ctx, "ENG", 10)
	require.NoError(t, err)
	require.NotNil(t, content)
	require.Empty(t, content)

	_, found, err = confluence.GetSpaceDetails(ctx, "ENG")
	require.NoError(t, err)
	require.False(t, found)

	require.Zero(t, upstreamCalls)
}

func TestServices_AccessibleResourcesFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	jira, err := services.NewJiraService(oauthToken(atlassian.ProviderJira), srv.Client(), srv.URL)
	require.NoError(t, err)

	_, err = jira.ListProjects(context.Background())
	require.EqualError(t, err, "Failed to get accessible resources: 500")

	c := apperrors.Classify(err, "Jira")
	require.Equal(t, http.StatusBadRequest, c.Status)
	require.Equal(t, "Jira Error", c.Kind)
	require.False(t, jira.ValidateConnection(context.Background()))
}

func TestServices_NetworkError(t *testing.T) {
	srv, token := newSite(t, atlassian.ProviderJira, http.NotFoundHandler())
	httpClient := srv.Client()
	srv.Close()

	jira, err := services.NewJiraService(token, httpClient, srv.URL)
	require.NoError(t, err)

	_, err = jira.ListProjects(context.Background())
	svcErr := requireServiceError(t, err)
	require.Equal(t, apperrors.KindNetwork, svcErr.Kind)
	require.Equal(t, "Network error while fetching projects", svcErr.Message)

	c := apperrors.Classify(err, "Jira")
	require.Equal(t, http.StatusBadGateway, c.Status)
	require.Equal(t, "Unable to connect to external service", c.Message)
}

func TestServices_Timeout(t *testing.T) {
	srv, token := newSite(t, atlassian.ProviderJira, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	httpClient := srv.Client()
	httpClient.Timeout = 50 * time.Millisecond

	jira, err := services.NewJiraService(token, httpClient, srv.URL)
	require.NoError(t, err)

	start := time.Now()
	_, err = jira.ListProjects(context.Background())
	require.Less(t, time.Since(start), 250*time.Millisecond)

	svcErr := requireServiceError(t, err)
	require.Equal(t, apperrors.KindNetwork, svcErr.Kind)
	require.Equal(t, "Network error while fetching projects", svcErr.Message)

	c := apperrors.Classify(err, "Jira")
	require.Equal(t, http.StatusBadGateway, c.Status)
	require.Equal(t, apperrors.CodeNetworkError, c.Code)
}

func TestServices_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   apperrors.ErrorKind
		wantStatus int
		wantMsg    string
	}{
		{"forbidden", http.StatusForbidden, apperrors.KindPermissionDenied, http.StatusForbidden, "Access forbidden - insufficient permissions"},
		{"rate limited", http.StatusTooManyRequests, apperrors.KindRateLimited, http.StatusTooManyRequests, "Rate limit exceeded while fetching spaces: HTTP 429"},
		{"server error", http.StatusInternalServerError, apperrors.KindUpstream, http.StatusBadRequest, "Failed to fetch spaces: HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, token := newSite(t, atlassian.ProviderConfluence, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			confluence, err := services.NewConfluenceService(token, srv.Client(), srv.URL)
			require.NoError(t, err)

			_, err = confluence.ListSpaces(context.Background())
			svcErr := requireServiceError(t, err)
			require.Equal(t, tt.wantKind, svcErr.Kind)
			require.Equal(t, tt.status, svcErr.StatusCode)
			require.Equal(t, tt.wantMsg, svcErr.Message)
			require.Equal(t, tt.wantStatus, apperrors.Classify(err, "Confluence").Status)
		})
	}
}
