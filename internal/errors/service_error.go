package errors

// ErrorKind is the category of an upstream service failure.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindConfiguration
	KindAuthenticationFailed
	KindPermissionDenied
	KindNetwork
	KindRateLimited
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNetwork:
		return "network"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	}
	return "unexpected"
}

// ServiceError is raised by the Jira and Confluence service clients.
// Message is client-facing and is what the classifier inspects.
type ServiceError struct {
	Service    string
	Kind       ErrorKind
	StatusCode int // upstream HTTP status, 0 when no response was received
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError builds a ServiceError.
func NewServiceError(service string, kind ErrorKind, statusCode int, message string, err error) *ServiceError {
	return &ServiceError{
		Service:    service,
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
