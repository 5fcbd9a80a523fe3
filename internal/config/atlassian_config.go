package config

import (
	"strings"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	"github.com/spf13/viper"
)

const (
	clientIDKey              = "atlassian_client_id"
	clientSecretKey          = "atlassian_client_secret"
	jiraRedirectURIKey       = "jira_redirect_uri"
	confluenceRedirectURIKey = "confluence_redirect_uri"
	oauthURLKey              = "atlassian_oauth_url"
	tokenURLKey              = "atlassian_token_url"
	apiBaseKey               = "atlassian_api_base"
)

// Atlassian holds the OAuth app registration and upstream endpoints.
type Atlassian struct {
	v *viper.Viper
}

func (a Atlassian) GetClientID() string {
	return a.v.GetString(clientIDKey)
}

func (a Atlassian) GetClientSecret() string {
	return a.v.GetString(clientSecretKey)
}

// GetRedirectURI returns the registered callback for provider, or "" if unset.
func (a Atlassian) GetRedirectURI(provider atlassian.Provider) string {
	switch provider {
	case atlassian.ProviderJira:
		return a.v.GetString(jiraRedirectURIKey)
	case atlassian.ProviderConfluence:
		return a.v.GetString(confluenceRedirectURIKey)
	}
	return ""
}

func (a Atlassian) GetOAuthURL() string {
	return a.v.GetString(oauthURLKey)
}

func (a Atlassian) GetTokenURL() string {
	return a.v.GetString(tokenURLKey)
}

// GetAPIBase returns the api.atlassian.com root without a trailing slash.
func (a Atlassian) GetAPIBase() string {
	return strings.TrimRight(a.v.GetString(apiBaseKey), "/")
}
