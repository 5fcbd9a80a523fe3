package server

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

const CorrelationIDHeader = "X-Correlation-ID"

type correlationIDKey struct{}

// CorrelationID returns the id attached by CorrelationIDMiddleware, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order so mw[0] runs first
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) CorrelationIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, id)

		ctx := context.WithValue(r.Context(), correlationIDKey{}, id)
		next(w, r.WithContext(ctx))
	}
}

// LoggingMiddleware attaches a request scoped logger to the context and logs the outcome.
func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		l := log.With().
			Str("correlation_id", CorrelationID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger()

		ctx := l.WithContext(r.Context())
		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(sw, r.WithContext(ctx))

		// health checks are noise
		if r.URL.Path == "/" && sw.statusCode < 400 {
			return
		}

		l.Info().
			Int("status", sw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request.handled")
	}
}

// RecoverMiddleware turns panics into a generic 500. A panic carrying an HTTPError keeps its status.
func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			if err, ok := rec.(error); ok {
				var httpErr *apperrors.HTTPError
				if errors.As(err, &httpErr) {
					log.Ctx(r.Context()).Warn().Err(err).Int("status", httpErr.StatusCode).Msg("panic.http_error")
					writeHTTPError(w, r, httpErr)
					return
				}
			}

			log.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic.recovered")
			writeError(w, r, http.StatusInternalServerError, apperrors.CodeInternalError, "Internal server error")
		}()
		next(w, r)
	}
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Same-origin request, no CORS headers needed
		if origin == "" {
			next(w, r)
			return
		}

		allowedOrigins := s.config.GetAllowedOrigins()
		isAllowed := allowedOrigins.IsAllowedOrigin(origin)
		isWildcard := allowedOrigins.IsAllowedOrigin("*")

		// The session cookie only travels with credentialed requests, so a wildcard
		// configuration echoes the origin back instead of sending "*".
		if isAllowed || isWildcard {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Expose-Headers", CorrelationIDHeader)
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			if isAllowed || isWildcard {
				w.Header().Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
				w.Header().Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			// Not allowed: 200 without CORS headers, the browser blocks the real request
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
