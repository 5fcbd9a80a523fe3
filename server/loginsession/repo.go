package loginsession

import (
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

// Session binds one opaque session id to one credential record.
type Session struct {
	ID        string
	Token     atlassian.TokenInfo
	CreatedAt time.Time
}

// Repo stores authenticated sessions.
type Repo interface {
	// Create stores info under a freshly generated, unguessable id and returns the id.
	Create(info atlassian.TokenInfo) (string, error)

	// Get returns the credential record for id. It never mutates the store's view of it.
	Get(id string) (atlassian.TokenInfo, bool)

	// Delete removes id and reports whether it existed.
	Delete(id string) bool

	// DeleteExpired removes sessions created before cutoff and returns how many were removed.
	DeleteExpired(cutoff time.Time) int
}
