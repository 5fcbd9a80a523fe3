package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// AUTH
	s.RegisterRouteFunc("GET "+RouteOAuthStart, s.OAuthStartHandler())
	s.RegisterRouteFunc("POST "+RouteOAuthCallback, s.OAuthCallbackHandler())
	s.RegisterRouteFunc("POST "+RouteAPIToken, s.APITokenHandler())
	s.RegisterRouteFunc("POST "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteSession, s.SessionHandler())

	// JIRA (session gated)
	s.RegisterRouteFunc("GET "+RouteJiraProjects, s.JiraProjectsHandler())
	s.RegisterRouteFunc("GET "+RouteJiraProject, s.JiraProjectHandler())
	s.RegisterRouteFunc("GET "+RouteJiraValidate, s.JiraValidateHandler())

	// CONFLUENCE (session gated)
	s.RegisterRouteFunc("GET "+RouteConfluenceSpaces, s.ConfluenceSpacesHandler())
	s.RegisterRouteFunc("GET "+RouteConfluenceSpace, s.ConfluenceSpaceHandler())
	s.RegisterRouteFunc("GET "+RouteConfluenceSpaceContent, s.ConfluenceSpaceContentHandler())
	s.RegisterRouteFunc("GET "+RouteConfluenceValidate, s.ConfluenceValidateHandler())
}
