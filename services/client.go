package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	accessibleResourcesPath = "/oauth/token/accessible-resources"

	// DefaultAPIBase is the Atlassian platform gateway used for OAuth requests.
	DefaultAPIBase = "https://api.atlassian.com"

	maxBodyBytes = 10 << 20
)

// Messages inspected by the error classifier.
const (
	msgAuthenticationFailed = "Authentication failed - invalid or expired token"
	msgAccessForbidden      = "Access forbidden - insufficient permissions"
)

var errInvalidJSON = fmt.Errorf("response body is not valid JSON")

// AccessibleResource is one site an OAuth token may address.
type AccessibleResource struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// client holds everything shared by the provider services: credentials, header
// derivation, site resolution and status handling.
type client struct {
	provider   atlassian.Provider
	service    string
	token      atlassian.TokenInfo
	httpClient *http.Client
	apiBase    string

	// restPath is appended to the site root, e.g. "/rest/api/3".
	restPath string
}

func newClient(provider atlassian.Provider, token atlassian.TokenInfo, httpClient *http.Client, apiBase, restPath string) (*client, error) {
	if err := token.Validate(); err != nil {
		return nil, apperrors.NewServiceError(provider.Title(), apperrors.KindConfiguration, 0,
			"Domain is required for API token authentication", apperrors.ErrConfiguration)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &client{
		provider:   provider,
		service:    provider.Title(),
		token:      token,
		httpClient: httpClient,
		apiBase:    strings.TrimRight(apiBase, "/"),
		restPath:   restPath,
	}, nil
}

// authorization returns the Authorization header value for the credential.
func (c *client) authorization() string {
	if c.token.AuthMethod == atlassian.AuthMethodAPIToken {
		creds := c.token.BasicEmail() + ":" + c.token.AccessToken
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	}
	return "Bearer " + c.token.AccessToken
}

func (c *client) newRequest(ctx context.Context, rawURL string, query url.Values) (*http.Request, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorization())
	return req, nil
}

// baseURL returns the REST root for this credential. found is false when an OAuth
// token has no accessible sites, in which case callers return an empty result.
func (c *client) baseURL(ctx context.Context, what string) (base string, found bool, err error) {
	if c.token.AuthMethod == atlassian.AuthMethodAPIToken {
		return "https://" + c.token.Domain + c.restPath, true, nil
	}

	resources, err := c.accessibleResources(ctx, what)
	if err != nil {
		return "", false, err
	}
	if len(resources) == 0 {
		return "", false, nil
	}
	// Always the first site; there is no tenant selection.
	siteID := resources[0].ID
	return fmt.Sprintf("%s/ex/%s/%s%s", c.apiBase, c.provider, url.PathEscape(siteID), c.restPath), true, nil
}

func (c *client) accessibleResources(ctx context.Context, what string) ([]AccessibleResource, error) {
	req, err := c.newRequest(ctx, c.apiBase+accessibleResourcesPath, nil)
	if err != nil {
		return nil, c.unexpected(what, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.network(what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewServiceError(c.service, apperrors.KindUpstream, resp.StatusCode,
			fmt.Sprintf("Failed to get accessible resources: %d", resp.StatusCode), nil)
	}

	var resources []AccessibleResource
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&resources); err != nil {
		return nil, c.unexpected(what, err)
	}
	return resources, nil
}

// get issues a GET against base+path and returns the body of a 200 response.
// notFound is true only for a 404 when allowNotFound is set.
func (c *client) get(ctx context.Context, rawURL string, query url.Values, what string, allowNotFound bool) (body []byte, notFound bool, err error) {
	req, err := c.newRequest(ctx, rawURL, query)
	if err != nil {
		return nil, false, c.unexpected(what, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, c.network(what, err)
	}
	defer resp.Body.Close()

	log.Ctx(ctx).Debug().
		Str("provider", string(c.provider)).
		Str("resource", what).
		Int("status", resp.StatusCode).
		Msg("upstream.response")

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, false, c.network(what, err)
		}
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound && allowNotFound:
		return nil, true, nil
	default:
		return nil, false, c.statusError(resp.StatusCode, what)
	}
}

func (c *client) statusError(status int, what string) error {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.NewServiceError(c.service, apperrors.KindAuthenticationFailed, status, msgAuthenticationFailed, nil)
	case http.StatusForbidden:
		return apperrors.NewServiceError(c.service, apperrors.KindPermissionDenied, status, msgAccessForbidden, nil)
	case http.StatusTooManyRequests:
		return apperrors.NewServiceError(c.service, apperrors.KindRateLimited, status,
			fmt.Sprintf("Rate limit exceeded while fetching %s: HTTP %d", what, status), nil)
	}
	return apperrors.NewServiceError(c.service, apperrors.KindUpstream, status,
		fmt.Sprintf("Failed to fetch %s: HTTP %d", what, status), nil)
}

func (c *client) network(what string, err error) error {
	return apperrors.NewServiceError(c.service, apperrors.KindNetwork, 0,
		"Network error while fetching "+what, err)
}

func (c *client) unexpected(what string, err error) error {
	return apperrors.NewServiceError(c.service, apperrors.KindUnexpected, 0,
		"Unexpected error while fetching "+what, err)
}

// decode unmarshals body, reporting failures as unexpected errors.
func (c *client) decode(body []byte, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return c.unexpected(what, err)
	}
	return nil
}
