package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/jrsteele09/go-atlassian-gateway/internal/errors"
	"github.com/jrsteele09/go-atlassian-gateway/services"
)

const confluenceService = "Confluence"

// SpaceContentResponse is the body of GET /confluence/spaces/{key}/content.
type SpaceContentResponse struct {
	Success  bool              `json:"success"`
	Data     []json.RawMessage `json:"data"`
	Total    int               `json:"total"`
	SpaceKey string            `json:"space_key"`
}

func (s *Server) confluence(w http.ResponseWriter, r *http.Request) (*services.ConfluenceService, bool) {
	svc, err := services.NewConfluenceService(credentials(r), s.upstream, s.config.GetAPIBase())
	if err != nil {
		writeServiceInitError(w, r, err, confluenceService)
		return nil, false
	}
	return svc, true
}

func (s *Server) ConfluenceSpacesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.confluence(w, r)
		if !ok {
			return
		}

		spaces, err := svc.ListSpaces(r.Context())
		if err != nil {
			writeServiceError(w, r, err, confluenceService)
			return
		}

		writeJSON(w, r, http.StatusOK, successResponse{
			Success: true,
			Data:    spaces,
			Message: fmt.Sprintf("Retrieved %d spaces", len(spaces)),
			Meta:    &listMeta{Total: len(spaces)},
		})
	}
}

func (s *Server) ConfluenceSpaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.confluence(w, r)
		if !ok {
			return
		}

		key := r.PathValue("key")
		space, found, err := svc.GetSpaceDetails(r.Context(), key)
		if err != nil {
			writeServiceError(w, r, err, confluenceService)
			return
		}
		if !found {
			writeError(w, r, http.StatusNotFound, apperrors.CodeNotFound, fmt.Sprintf("Space with key '%s' not found", key))
			return
		}

		writeJSON(w, r, http.StatusOK, successResponse{Success: true, Data: space})
	}
}

func (s *Server) ConfluenceSpaceContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := contentLimit(w, r)
		if !ok {
			return
		}
		svc, ok := s.confluence(w, r)
		if !ok {
			return
		}

		key := r.PathValue("key")
		content, err := svc.ListSpaceContent(r.Context(), key, limit)
		if err != nil {
			writeServiceError(w, r, err, confluenceService)
			return
		}

		writeJSON(w, r, http.StatusOK, SpaceContentResponse{
			Success:  true,
			Data:     content,
			Total:    len(content),
			SpaceKey: key,
		})
	}
}

func (s *Server) ConfluenceValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, ok := s.confluence(w, r)
		if !ok {
			return
		}
		writeJSON(w, r, http.StatusOK, validationResponse(svc.ValidateConnection(r.Context())))
	}
}

// contentLimit parses ?limit, writing a 422 when it is not an integer in range.
func contentLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return services.DefaultContentLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < services.MinContentLimit || limit > services.MaxContentLimit {
		writeError(w, r, http.StatusUnprocessableEntity, apperrors.CodeValidationError,
			fmt.Sprintf("limit must be an integer between %d and %d", services.MinContentLimit, services.MaxContentLimit))
		return 0, false
	}
	return limit, true
}
