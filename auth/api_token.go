package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

var whoamiPaths = map[atlassian.Provider]string{
	atlassian.ProviderJira:       "/rest/api/3/myself",
	atlassian.ProviderConfluence: "/wiki/rest/api/user/current",
}

// APITokenValidator checks email + API token credentials against the site's whoami endpoint.
type APITokenValidator struct {
	httpClient *http.Client
}

func NewAPITokenValidator(httpClient *http.Client) *APITokenValidator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APITokenValidator{httpClient: httpClient}
}

// Validate returns a credential record when the site accepts the credentials.
func (v *APITokenValidator) Validate(ctx context.Context, domain, email, token string, provider atlassian.Provider) (atlassian.TokenInfo, error) {
	path, ok := whoamiPaths[provider]
	if !ok {
		return atlassian.TokenInfo{}, apperrors.ErrUnsupportedProvider
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domain+path, nil)
	if err != nil {
		return atlassian.TokenInfo{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}
	req.SetBasicAuth(email, token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("domain", domain).Msg("auth.api_token.unreachable")
		return atlassian.TokenInfo{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return atlassian.TokenInfo{}, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "whoami returned %d", resp.StatusCode)
	}

	var user atlassian.Document
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return atlassian.TokenInfo{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	return atlassian.TokenInfo{
		AccessToken: token,
		TokenType:   "Basic",
		Domain:      domain,
		Email:       email,
		UserInfo:    user,
		AuthMethod:  atlassian.AuthMethodAPIToken,
		Provider:    provider,
	}, nil
}
