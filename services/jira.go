package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

// Project is the normalised view of a Jira project returned by ListProjects.
type Project struct {
	ID             string            `json:"id"`
	Key            string            `json:"key"`
	Name           string            `json:"name"`
	ProjectTypeKey string            `json:"projectTypeKey"`
	Simplified     *bool             `json:"simplified"`
	Style          *string           `json:"style"`
	IsPrivate      bool              `json:"isPrivate"`
	AvatarURLs     map[string]string `json:"avatarUrls"`
}

// JiraService talks to Jira Cloud REST API v3 on behalf of one session.
type JiraService struct {
	*client
}

// NewJiraService creates a Jira client for the given credentials.
// apiBase is the api.atlassian.com root used for OAuth credentials.
func NewJiraService(token atlassian.TokenInfo, httpClient *http.Client, apiBase string) (*JiraService, error) {
	c, err := newClient(atlassian.ProviderJira, token, httpClient, apiBase, "/rest/api/3")
	if err != nil {
		return nil, err
	}
	return &JiraService{client: c}, nil
}

// ListProjects returns every project visible to the user.
func (s *JiraService) ListProjects(ctx context.Context) ([]Project, error) {
	const what = "projects"

	base, found, err := s.baseURL(ctx, what)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Project{}, nil
	}

	body, _, err := s.get(ctx, base+"/project", nil, what, false)
	if err != nil {
		return nil, err
	}

	var raw []Project
	if err := s.decode(body, &raw, what); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(raw))
	for _, p := range raw {
		if p.AvatarURLs == nil {
			p.AvatarURLs = map[string]string{}
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetProjectDetails returns the upstream payload for key unmodified.
// found is false when the project does not exist or no site is accessible.
func (s *JiraService) GetProjectDetails(ctx context.Context, key string) (project json.RawMessage, found bool, err error) {
	const what = "project details"

	base, found, err := s.baseURL(ctx, what)
	if err != nil || !found {
		return nil, false, err
	}

	body, notFound, err := s.get(ctx, base+"/project/"+url.PathEscape(key), nil, what, true)
	if err != nil || notFound {
		return nil, false, err
	}
	if !json.Valid(body) {
		return nil, false, s.unexpected(what, errInvalidJSON)
	}
	return json.RawMessage(body), true, nil
}

// ValidateConnection reports whether projects can be listed with the credentials.
func (s *JiraService) ValidateConnection(ctx context.Context) bool {
	_, err := s.ListProjects(ctx)
	return err == nil
}
