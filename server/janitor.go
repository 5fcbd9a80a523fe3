package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type expirer interface {
	DeleteExpired(cutoff time.Time) int
}

// StartJanitor sweeps expired sessions and OAuth states until ctx is cancelled.
// It returns immediately when neither store has a TTL.
func (s *Server) StartJanitor(ctx context.Context) {
	sessionTTL := s.config.GetSessionTTL()
	stateTTL := s.config.GetOAuthStateTTL()
	interval := s.config.GetJanitorInterval()
	if (sessionTTL <= 0 && stateTTL <= 0) || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sweep("sessions", s.loginSessions, sessionTTL, now)
			sweep("oauth_states", s.authState, stateTTL, now)
		}
	}
}

func sweep(name string, store expirer, ttl time.Duration, now time.Time) int {
	if ttl <= 0 {
		return 0
	}
	n := store.DeleteExpired(now.Add(-ttl))
	if n > 0 {
		log.Debug().Str("store", name).Int("removed", n).Msg("janitor.swept")
	}
	return n
}
