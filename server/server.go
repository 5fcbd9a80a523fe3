package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-atlassian-gateway/auth"
	"github.com/jrsteele09/go-atlassian-gateway/internal/config"
	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/server/authflowrepo"
	"github.com/jrsteele09/go-atlassian-gateway/server/loginsession"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	handler       http.Handler
	routes        []string
	config        config.Config
	loginSessions loginsession.Repo
	authState     authflowrepo.Repo
	oauth         *auth.OAuthFlow
	apiTokens     *auth.APITokenValidator

	// upstream is shared by every call to Atlassian and carries the upstream timeout.
	upstream *http.Client
}

// New wires the HTTP surface. upstream may be nil, in which case a client bounded by
// the configured upstream timeout is created.
func New(cfg config.Config, loginSessionRepo loginsession.Repo, authStateRepo authflowrepo.Repo, upstream *http.Client) (*Server, error) {
	if loginSessionRepo == nil || authStateRepo == nil {
		return nil, fmt.Errorf("[Server New] session and state repositories are required")
	}
	if upstream == nil {
		upstream = &http.Client{Timeout: cfg.GetUpstreamTimeout()}
	}

	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		config:        cfg,
		loginSessions: loginSessionRepo,
		authState:     authStateRepo,
		oauth:         auth.NewOAuthFlow(cfg, authStateRepo, upstream),
		apiTokens:     auth.NewAPITokenValidator(upstream),
		upstream:      upstream,
	}

	s.initRoutes()
	s.logRoutes()

	s.handler = ChainMiddleware(s.routeRequest,
		s.CorrelationIDMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CorsMiddleware,
		s.SessionGate(cfg.GetProtectedPaths()),
	)
	return s, nil
}

// routeRequest dispatches to the mux. Requests no route matches are answered
// with the JSON error envelope rather than the mux's plain text.
func (s *Server) routeRequest(w http.ResponseWriter, r *http.Request) {
	if _, pattern := s.mux.Handler(r); pattern == "" {
		w = &unmatchedWriter{ResponseWriter: w, r: r}
	}
	s.mux.ServeHTTP(w, r)
}

// unmatchedWriter swaps the mux's 404 and 405 bodies for error envelopes.
// Other statuses, such as path-cleaning redirects, pass through.
type unmatchedWriter struct {
	http.ResponseWriter
	r        *http.Request
	replaced bool
}

func (u *unmatchedWriter) WriteHeader(status int) {
	switch status {
	case http.StatusNotFound:
		u.replaced = true
		writeError(u.ResponseWriter, u.r, status, apperrors.CodeNotFound, "Not found")
	case http.StatusMethodNotAllowed:
		u.replaced = true
		writeError(u.ResponseWriter, u.r, status, apperrors.CodeMethodNotAllowed, "Method not allowed")
	default:
		u.ResponseWriter.WriteHeader(status)
	}
}

func (u *unmatchedWriter) Write(b []byte) (int, error) {
	if u.replaced {
		return len(b), nil
	}
	return u.ResponseWriter.Write(b)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	colour, ok := methodColors[method]
	if !ok {
		colour = Gray
	}
	log.Debug().Msgf("[%s%-7s%s] %s", colour, method, ResetColor, path)
}
