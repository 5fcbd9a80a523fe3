package server

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/services"
)

const jiraService = "Jira"

func (s *Server) jira(w http.ResponseWriter, r *http.Request) (*services.JiraService, bool) {
	svc, err := services.NewJiraService(credentials(r), s.upstream, s.config.GetAPIBase())
	if err != nil {
		writeServiceInitError(w, r, err, jiraService)
		return nil, false
	}
	return svc, true
}

func (s *Server) JiraProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.jira(w, r)
		if !ok {
			return
		}

		projects, err := svc.ListProjects(r.Context())
		if err != nil {
			writeServiceError(w, r, err, jiraService)
			return
		}

		writeJSON(w, r, http.StatusOK, successResponse{
			Success: true,
			Data:    projects,
			Message: fmt.Sprintf("Retrieved %d projects", len(projects)),
			Meta:    &listMeta{Total: len(projects)},
		})
	}
}

func (s *Server) JiraProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.jira(w, r)
		if !ok {
			return
		}

		key := r.PathValue("key")
		project, found, err := svc.GetProjectDetails(r.Context(), key)
		if err != nil {
			writeServiceError(w, r, err, jiraService)
			return
		}
		if !found {
			writeError(w, r, http.StatusNotFound, apperrors.CodeNotFound, fmt.Sprintf("Project with key '%s' not found", key))
			return
		}

		writeJSON(w, r, http.StatusOK, successResponse{Success: true, Data: project})
	}
}

func (s *Server) JiraValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.jira(w, r)
		if !ok {
			return
		}
		writeJSON(w, r, http.StatusOK, validationResponse(svc.ValidateConnection(r.Context())))
	}
}
