package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/server/authflowrepo"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	stateLength = 32
	audience    = "api.atlassian.com"
	meEndpoint  = "/me"
)

// scopes requested for each provider; read only.
var scopes = map[atlassian.Provider][]string{
	atlassian.ProviderJira:       {"read:jira-user", "read:jira-work"},
	atlassian.ProviderConfluence: {"read:confluence-user", "read:confluence-content.summary"},
}

// OAuthSettings is the slice of configuration the OAuth flow needs.
type OAuthSettings interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI(provider atlassian.Provider) string
	GetOAuthURL() string
	GetTokenURL() string
	GetAPIBase() string
}

// StartResult is returned to the browser to begin the consent redirect.
type StartResult struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// OAuthFlow drives the Atlassian 3LO authorization-code flow.
type OAuthFlow struct {
	settings   OAuthSettings
	states     authflowrepo.Repo
	httpClient *http.Client
}

// NewOAuthFlow creates an OAuthFlow. httpClient is used for the token exchange and identity lookup.
func NewOAuthFlow(settings OAuthSettings, states authflowrepo.Repo, httpClient *http.Client) *OAuthFlow {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OAuthFlow{settings: settings, states: states, httpClient: httpClient}
}

func (f *OAuthFlow) oauthConfig(provider atlassian.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     f.settings.GetClientID(),
		ClientSecret: f.settings.GetClientSecret(),
		RedirectURL:  f.settings.GetRedirectURI(provider),
		Scopes:       scopes[provider],
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.settings.GetOAuthURL(),
			TokenURL:  f.settings.GetTokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Start issues a fresh state token and builds the consent URL for provider.
func (f *OAuthFlow) Start(provider atlassian.Provider) (StartResult, error) {
	cfg := f.oauthConfig(provider)
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return StartResult{}, apperrors.Wrapf(apperrors.ErrConfiguration,
			"OAuth configuration not properly set. Please configure ATLASSIAN_CLIENT_ID and %s_REDIRECT_URI",
			strings.ToUpper(string(provider)))
	}

	state, err := generateRandomString(stateLength)
	if err != nil {
		return StartResult{}, fmt.Errorf("generate state: %w", err)
	}
	if err := f.states.Store(state, provider, cfg.RedirectURL); err != nil {
		return StartResult{}, fmt.Errorf("store state: %w", err)
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("audience", audience),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return StartResult{AuthURL: authURL, State: state}, nil
}

// HandleCallback consumes state, exchanges code for a token and builds the credential record.
// The state is consumed even when the exchange later fails.
func (f *OAuthFlow) HandleCallback(ctx context.Context, code, state string, provider atlassian.Provider) (atlassian.TokenInfo, error) {
	if !f.states.ValidateAndConsume(state, provider) {
		return atlassian.TokenInfo{}, apperrors.ErrInvalidState
	}

	cfg := f.oauthConfig(provider)
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return atlassian.TokenInfo{}, apperrors.Wrapf(apperrors.ErrTokenExchangeFailed, "client credentials not configured")
	}

	tok, err := cfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, f.httpClient), code)
	if err != nil {
		return atlassian.TokenInfo{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExchangeFailed, err)
	}

	info := atlassian.TokenInfo{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
		UserInfo:     f.userInfo(ctx, tok.AccessToken),
		AuthMethod:   atlassian.AuthMethodOAuth,
		Provider:     provider,
	}
	return info, nil
}

// userInfo fetches the identity payload. Failures are logged and yield nil.
func (f *OAuthFlow) userInfo(ctx context.Context, accessToken string) atlassian.Document {
	logger := log.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.settings.GetAPIBase()+meEndpoint, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("auth.userinfo.request")
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("auth.userinfo.failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Msg("auth.userinfo.failed")
		return nil
	}

	var doc atlassian.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		logger.Warn().Err(err).Msg("auth.userinfo.decode")
		return nil
	}
	return doc
}

// generateRandomString returns n random bytes encoded as unpadded base64url.
func generateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
