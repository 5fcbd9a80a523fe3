package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	upstreamTimeoutKey = "upstream_timeout"
	sessionTTLKey      = "session_ttl"
	oauthStateTTLKey   = "oauth_state_ttl"
	janitorIntervalKey = "janitor_interval"
	secureCookiesKey   = "cookie_secure"
	protectedPathsKey  = "protected_paths"
)

type Security struct {
	v *viper.Viper
}

// GetUpstreamTimeout bounds every call to Atlassian.
func (s Security) GetUpstreamTimeout() time.Duration {
	return s.v.GetDuration(upstreamTimeoutKey)
}

// GetSessionTTL is zero when sessions never expire.
func (s Security) GetSessionTTL() time.Duration {
	return s.v.GetDuration(sessionTTLKey)
}

// GetOAuthStateTTL is zero when pending OAuth states never expire.
func (s Security) GetOAuthStateTTL() time.Duration {
	return s.v.GetDuration(oauthStateTTLKey)
}

func (s Security) GetJanitorInterval() time.Duration {
	return s.v.GetDuration(janitorIntervalKey)
}

func (s Security) GetSecureCookies() bool {
	return s.v.GetBool(secureCookiesKey)
}

// GetProtectedPaths returns the path prefixes guarded by the session gate.
func (s Security) GetProtectedPaths() []string {
	return splitList(s.v.GetString(protectedPathsKey))
}
