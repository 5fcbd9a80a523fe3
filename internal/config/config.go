package config

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	AtlassianConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLogFormat() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AtlassianConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI(provider atlassian.Provider) string
	GetOAuthURL() string
	GetTokenURL() string
	GetAPIBase() string
}

type SecurityConfig interface {
	GetUpstreamTimeout() time.Duration
	GetSessionTTL() time.Duration
	GetOAuthStateTTL() time.Duration
	GetJanitorInterval() time.Duration
	GetSecureCookies() bool
	GetProtectedPaths() []string
}

type mainConfig struct {
	EnvVars
	Cors
	Atlassian
	Security
}

// New returns a Config backed by the global viper instance.
// Environment variables are read on every call, so later changes (and bound flags) are visible.
func New() Config {
	return NewWithViper(viper.GetViper())
}

// NewWithViper returns a Config backed by v.
func NewWithViper(v *viper.Viper) Config {
	setDefaults(v)
	v.AutomaticEnv()
	return mainConfig{
		EnvVars:   EnvVars{v: v},
		Cors:      Cors{v: v},
		Atlassian: Atlassian{v: v},
		Security:  Security{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(portKey, "8080")
	v.SetDefault(appNameKey, "Atlassian Gateway")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(logFormatKey, "console")

	v.SetDefault(allowedOriginsKey, "*")

	v.SetDefault(oauthURLKey, "https://auth.atlassian.com/authorize")
	v.SetDefault(tokenURLKey, "https://auth.atlassian.com/oauth/token")
	v.SetDefault(apiBaseKey, "https://api.atlassian.com")

	v.SetDefault(upstreamTimeoutKey, 30*time.Second)
	v.SetDefault(sessionTTLKey, time.Duration(0))
	v.SetDefault(oauthStateTTLKey, time.Duration(0))
	v.SetDefault(janitorIntervalKey, time.Minute)
	v.SetDefault(secureCookiesKey, true)
	v.SetDefault(protectedPathsKey, "/jira,/confluence")
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
