package server

// Route path constants
const (
	RouteHealth = "/{$}"

	// Authentication
	RouteOAuthStart    = "/auth/{provider}/oauth/start"
	RouteOAuthCallback = "/auth/{provider}/oauth/callback"
	RouteAPIToken      = "/auth/{provider}/api-token"
	RouteLogout        = "/auth/logout"
	RouteSession       = "/auth/session"

	// Jira
	RouteJiraProjects = "/jira/projects"
	RouteJiraProject  = "/jira/projects/{key}"
	RouteJiraValidate = "/jira/connection/validate"

	// Confluence
	RouteConfluenceSpaces       = "/confluence/spaces"
	RouteConfluenceSpace        = "/confluence/spaces/{key}"
	RouteConfluenceSpaceContent = "/confluence/spaces/{key}/content"
	RouteConfluenceValidate     = "/confluence/connection/validate"
)
