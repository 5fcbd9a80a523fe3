package authflowrepo

import (
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

// AuthFlowState is the pending OAuth flow a state token was issued for.
type AuthFlowState struct {
	Provider    atlassian.Provider
	RedirectURI string
	CreatedAt   time.Time
}

// Repo stores single-use OAuth state tokens.
type Repo interface {
	// Store records state, replacing any earlier entry with the same token.
	Store(state string, provider atlassian.Provider, redirectURI string) error

	// ValidateAndConsume reports whether state was issued for provider and, if so, removes it.
	// The check and the removal happen atomically.
	ValidateAndConsume(state string, provider atlassian.Provider) bool

	// DeleteExpired removes states created before cutoff and returns how many were removed.
	DeleteExpired(cutoff time.Time) int
}
