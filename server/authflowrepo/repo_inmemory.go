package authflowrepo

import (
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]AuthFlowState
	ttl    time.Duration
	now    func() time.Time
}

// NewInMemoryRepo creates a new in-memory auth flow state repository.
// A zero ttl keeps states until they are consumed.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]AuthFlowState),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.now = now
	return r
}

// Store stores or replaces an auth flow state
func (r *InMemoryRepo) Store(state string, provider atlassian.Provider, redirectURI string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if provider == "" {
		return errors.New("provider cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state] = AuthFlowState{
		Provider:    provider,
		RedirectURI: redirectURI,
		CreatedAt:   r.now(),
	}
	return nil
}

// ValidateAndConsume checks provider binding and deletes the state on success.
// A provider mismatch leaves the entry in place.
func (r *InMemoryRepo) ValidateAndConsume(state string, provider atlassian.Provider) bool {
	if state == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return false
	}
	if r.expired(authState) {
		delete(r.states, state)
		return false
	}
	if authState.Provider != provider {
		return false
	}

	delete(r.states, state)
	return true
}

// DeleteExpired removes states created before cutoff
func (r *InMemoryRepo) DeleteExpired(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, authState := range r.states {
		if authState.CreatedAt.Before(cutoff) {
			delete(r.states, state)
			removed++
		}
	}
	return removed
}

// Len returns the number of pending states.
func (r *InMemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *InMemoryRepo) expired(s AuthFlowState) bool {
	return r.ttl > 0 && r.now().Sub(s.CreatedAt) > r.ttl
}
