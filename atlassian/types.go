package atlassian

import "fmt"

// Provider identifies which upstream Atlassian product a credential targets.
type Provider string

const (
	// ProviderJira is Jira Cloud (REST API v3).
	ProviderJira Provider = "jira"

	// ProviderConfluence is Confluence Cloud (REST API v1 under /wiki).
	ProviderConfluence Provider = "confluence"
)

// Providers lists every supported provider.
var Providers = []Provider{ProviderJira, ProviderConfluence}

// ParseProvider converts a path or config value into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderJira, ProviderConfluence:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unsupported provider %q", s)
}

// Title returns the display name used in client-facing messages.
func (p Provider) Title() string {
	switch p {
	case ProviderJira:
		return "Jira"
	case ProviderConfluence:
		return "Confluence"
	}
	return string(p)
}

// AuthMethod determines how the upstream base URL and Authorization header are derived.
type AuthMethod string

const (
	// AuthMethodOAuth is the Atlassian 3LO authorization-code flow.
	// Requests go through api.atlassian.com with a Bearer token and a discovered site id.
	AuthMethodOAuth AuthMethod = "oauth"

	// AuthMethodAPIToken is domain + email + API token.
	// Requests go straight to the site with HTTP Basic auth (email:token).
	AuthMethodAPIToken AuthMethod = "api_token"
)
