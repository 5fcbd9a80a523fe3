package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-atlassian-gateway/atlassian"
)

const (
	spaceListLimit = 50

	// DefaultContentLimit is used when the caller does not ask for a page size.
	DefaultContentLimit = 25
	MinContentLimit     = 1
	MaxContentLimit     = 100
)

// Space is the normalised view of a Confluence space returned by ListSpaces.
type Space struct {
	ID          int64          `json:"id"`
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Description string         `json:"description"`
	Icon        map[string]any `json:"icon"`
	Links       map[string]any `json:"_links"`
}

type upstreamSpace struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Description struct {
		Plain struct {
			Value string `json:"value"`
		} `json:"plain"`
	} `json:"description"`
	Icon  map[string]any `json:"icon"`
	Links map[string]any `json:"_links"`
}

func (u upstreamSpace) normalise() Space {
	s := Space{
		ID:          u.ID,
		Key:         u.Key,
		Name:        u.Name,
		Type:        u.Type,
		Status:      u.Status,
		Description: u.Description.Plain.Value,
		Icon:        u.Icon,
		Links:       u.Links,
	}
	if s.Icon == nil {
		s.Icon = map[string]any{}
	}
	if s.Links == nil {
		s.Links = map[string]any{}
	}
	return s
}

// ConfluenceService talks to the Confluence Cloud REST API on behalf of one session.
type ConfluenceService struct {
	*client
}

// NewConfluenceService creates a Confluence client for the given credentials.
func NewConfluenceService(token atlassian.TokenInfo, httpClient *http.Client, apiBase string) (*ConfluenceService, error) {
	c, err := newClient(atlassian.ProviderConfluence, token, httpClient, apiBase, "/wiki/rest/api")
	if err != nil {
		return nil, err
	}
	return &ConfluenceService{client: c}, nil
}

// ListSpaces returns the first page of spaces visible to the user.
func (s *ConfluenceService) ListSpaces(ctx context.Context) ([]Space, error) {
	const what = "spaces"

	base, found, err := s.baseURL(ctx, what)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Space{}, nil
	}

	query := url.Values{}
	query.Set("expand", "description.plain,icon")
	query.Set("limit", strconv.Itoa(spaceListLimit))

	body, _, err := s.get(ctx, base+"/space", query, what, false)
	if err != nil {
		return nil, err
	}

	var page struct {
		Results []upstreamSpace `json:"results"`
	}
	if err := s.decode(body, &page, what); err != nil {
		return nil, err
	}

	spaces := make([]Space, 0, len(page.Results))
	for _, sp := range page.Results {
		spaces = append(spaces, sp.normalise())
	}
	return spaces, nil
}

// GetSpaceDetails returns the upstream payload for key unmodified.
func (s *ConfluenceService) GetSpaceDetails(ctx context.Context, key string) (space json.RawMessage, found bool, err error) {
	const what = "space details"

	base, found, err := s.baseURL(ctx, what)
	if err != nil || !found {
		return nil, false, err
	}

	query := url.Values{}
	query.Set("expand", "description.plain,icon,permissions")

	body, notFound, err := s.get(ctx, base+"/space/"+url.PathEscape(key), query, what, true)
	if err != nil || notFound {
		return nil, false, err
	}
	if !json.Valid(body) {
		return nil, false, s.unexpected(what, errInvalidJSON)
	}
	return json.RawMessage(body), true, nil
}

// ListSpaceContent returns up to limit raw content items from the space.
// The caller enforces MinContentLimit..MaxContentLimit.
func (s *ConfluenceService) ListSpaceContent(ctx context.Context, spaceKey string, limit int) ([]json.RawMessage, error) {
	const what = "space content"

	base, found, err := s.baseURL(ctx, what)
	if err != nil {
		return nil, err
	}
	if !found {
		return []json.RawMessage{}, nil
	}

	query := url.Values{}
	query.Set("spaceKey", spaceKey)
	query.Set("expand", "version,space")
	query.Set("limit", strconv.Itoa(limit))

	body, _, err := s.get(ctx, base+"/content", query, what, false)
	if err != nil {
		return nil, err
	}

	var page struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := s.decode(body, &page, what); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []json.RawMessage{}
	}
	return page.Results, nil
}

// ValidateConnection reports whether spaces can be listed with the credentials.
func (s *ConfluenceService) ValidateConnection(ctx context.Context) bool {
	_, err := s.ListSpaces(ctx)
	return err == nil
}
