package atlassian

import (
	"errors"
	"time"
)

// ErrDomainRequired is returned when an API token credential has no site domain.
var ErrDomainRequired = errors.New("domain is required for API token authentication")

// TokenInfo is the credential record held server-side for one authenticated session.
// It is created at the end of a successful authentication flow and never mutated afterwards.
type TokenInfo struct {
	// AccessToken is the OAuth bearer token, or the raw API token (used as the Basic password).
	AccessToken string `json:"access_token"`
	// RefreshToken is stored for OAuth sessions only and never used.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is "Bearer" or "Basic". Informational.
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	// Domain is the site host (e.g. acme.atlassian.net), required for API tokens.
	Domain string `json:"domain,omitempty"`
	// Email is the address supplied at API token login.
	Email      string     `json:"email,omitempty"`
	UserInfo   Document   `json:"user_info,omitempty"`
	AuthMethod AuthMethod `json:"auth_method"`
	Provider   Provider   `json:"provider"`
}

// Validate checks the record invariants.
func (t TokenInfo) Validate() error {
	if t.AuthMethod == AuthMethodAPIToken && t.Domain == "" {
		return ErrDomainRequired
	}
	return nil
}

// BasicEmail returns the user name for Basic auth: the identity payload's emailAddress,
// then its email field, then the login email.
func (t TokenInfo) BasicEmail() string {
	if email := t.UserInfo.String("emailAddress"); email != "" {
		return email
	}
	if email := t.UserInfo.String("email"); email != "" {
		return email
	}
	return t.Email
}

// Clone returns a copy that shares no mutable state with t.
func (t TokenInfo) Clone() TokenInfo {
	t.UserInfo = t.UserInfo.Clone()
	return t
}
