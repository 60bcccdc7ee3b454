package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned, without contacting the server, when an
// authenticated endpoint is called with no session
var ErrNotAuthenticated = errors.New("not authenticated: please log in")

// Kind classifies a failed call by what the user should be told
type Kind int

const (
	// KindNetwork covers timeouts and transport failures
	KindNetwork Kind = iota
	// KindAuthentication ends the session; the user must log in again
	KindAuthentication
	// KindPermission is a 403; nothing changes locally
	KindPermission
	// KindServer is any 5xx
	KindServer
	// KindValidation is any other 4xx; the server message is shown verbatim
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// User-facing messages for kinds whose server text is not shown
const (
	MessageSessionExpired = "Session expired. Please login again."
	MessageAccessDenied   = "Access denied. You do not have permission to perform this action."
	MessageServerError    = "Server error. Please try again later."
)

// APIError is the error returned for every failed request that reached the transport
type APIError struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage is the text a notification should display
func (e *APIError) UserMessage() string {
	switch e.Kind {
	case KindAuthentication:
		if e.Path == pathSignin && e.Message != "" {
			return e.Message
		}
		return MessageSessionExpired
	case KindPermission:
		return MessageAccessDenied
	case KindServer:
		return MessageServerError
	default:
		return e.Message
	}
}

// KindOf returns the kind of err and whether err came from this package
func KindOf(err error) (Kind, bool) {
	if errors.Is(err, ErrNotAuthenticated) {
		return KindAuthentication, true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindNetwork, false
}

// classify maps a failed response onto the error taxonomy.
// A 401 only ends the session when it concerns authentication itself.
func classify(status int, path, message string) Kind {
	switch {
	case status == http.StatusUnauthorized && isAuthFailure(path, message):
		return KindAuthentication
	case status == http.StatusForbidden:
		return KindPermission
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindValidation
	}
}

func isAuthFailure(path, message string) bool {
	return strings.Contains(path, "/auth/") ||
		strings.Contains(message, "JWT") ||
		strings.Contains(message, "token")
}
