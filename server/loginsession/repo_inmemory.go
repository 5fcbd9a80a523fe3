package loginsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

var _ Repo = (*InMemoryLoginSessionRepo)(nil)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session // sessionID -> Session
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemoryLoginSessionRepo creates a new in-memory login session repository.
// A zero ttl keeps sessions until logout.
func NewInMemoryLoginSessionRepo(ttl time.Duration) *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (r *InMemoryLoginSessionRepo) WithClock(now func() time.Time) *InMemoryLoginSessionRepo {
	r.now = now
	return r
}

// Create stores a login session under a new random id
func (r *InMemoryLoginSessionRepo) Create(info atlassian.TokenInfo) (string, error) {
	if err := info.Validate(); err != nil {
		return "", fmt.Errorf("invalid credential record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := uuid.NewString()
		if _, taken := r.sessions[id]; taken {
			continue
		}
		// Copy so later changes by the caller are not visible here
		r.sessions[id] = Session{ID: id, Token: info.Clone(), CreatedAt: r.now()}
		return id, nil
	}
}

// Get retrieves a login session's credential record
func (r *InMemoryLoginSessionRepo) Get(id string) (atlassian.TokenInfo, bool) {
	if id == "" {
		return atlassian.TokenInfo{}, false
	}

	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return atlassian.TokenInfo{}, false
	}
	if r.ttl > 0 && r.now().Sub(session.CreatedAt) > r.ttl {
		r.Delete(id)
		return atlassian.TokenInfo{}, false
	}
	return session.Token.Clone(), true
}

// Delete removes a login session
func (r *InMemoryLoginSessionRepo) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// DeleteExpired removes sessions created before cutoff
func (r *InMemoryLoginSessionRepo) DeleteExpired(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *InMemoryLoginSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
