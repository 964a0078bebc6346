package usergrid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies where a failure originated.
type ErrorKind string

// Error kinds.
const (
	ErrorKindTransport  ErrorKind = "transport"
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindAPI        ErrorKind = "api"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindAuth       ErrorKind = "auth"
)

// Error names reported by the server or produced locally.
const (
	ErrorNameBadAccessToken     = "auth_bad_access_token"
	ErrorNameExpiredToken       = "auth_expired_session_token"
	ErrorNameNotFound           = "service_resource_not_found"
	ErrorNameNoNextPage         = "no_next_page"
	ErrorNameTransport          = "transport_error"
	ErrorNameParse              = "invalid_json"
	ErrorNameValidation         = "validation_error"
	ErrorNameInvalidatedSession = "session_invalidated"
)

// ResponseError is the structured error carried by every failed Response.
type ResponseError struct {
	Kind        ErrorKind `json:"kind"                        yaml:"kind"`
	Name        string    `json:"error"                       yaml:"error"`
	Description string    `json:"error_description,omitempty" yaml:"error_description,omitempty"`
	Exception   string    `json:"exception,omitempty"         yaml:"exception,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"       yaml:"status_code,omitempty"`
	Err         error     `json:"-"                           yaml:"-"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	msg := e.Name
	if e.Description != "" {
		msg += ": " + e.Description
	}

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}

	if e.Err != nil && e.Description == "" {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error, if any.
func (e *ResponseError) Unwrap() error {
	return e.Err
}

// NewAPIError builds an error reported in a response body. Names starting
// with "auth_" are classified as auth errors.
func NewAPIError(name, description, exception string, statusCode int) *ResponseError {
	kind := ErrorKindAPI
	if strings.HasPrefix(name, "auth_") {
		kind = ErrorKindAuth
	}

	return &ResponseError{
		Kind:        kind,
		Name:        name,
		Description: description,
		Exception:   exception,
		StatusCode:  statusCode,
	}
}

// NewTransportError wraps a connection-level failure.
func NewTransportError(err error) *ResponseError {
	return &ResponseError{
		Kind:        ErrorKindTransport,
		Name:        ErrorNameTransport,
		Description: errDescription(err),
		Err:         err,
	}
}

// NewParseError wraps a body that is not valid JSON.
func NewParseError(statusCode int, err error) *ResponseError {
	return &ResponseError{
		Kind:        ErrorKindParse,
		Name:        ErrorNameParse,
		Description: "response body is not valid JSON",
		StatusCode:  statusCode,
		Err:         err,
	}
}

// NewValidationError reports a request that was refused before sending.
func NewValidationError(description string) *ResponseError {
	return &ResponseError{
		Kind:        ErrorKindValidation,
		Name:        ErrorNameValidation,
		Description: description,
	}
}

func errDescription(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrOrgIDRequired         = errors.New("org ID is required")
	ErrAppIDRequired         = errors.New("app ID is required")
	ErrNoNextPage            = errors.New("response has no next page")
	ErrCollectionRequired    = errors.New("query has no collection name")
	ErrUUIDOrNameRequired    = errors.New("entity has no uuid or name")
	ErrUsernameOrEmailNeeded = errors.New("user has no username or email")
	ErrNoCurrentUser         = errors.New("no current user")
	ErrNoAppAuth             = errors.New("no app credentials configured")
	ErrNotMutable            = errors.New("property is read-only")
	ErrUnsupportedVersion    = errors.New("unsupported credential version")
	ErrCredentialNotFound    = errors.New("credential not found")
	ErrNilCredential         = errors.New("credential is nil")
	ErrSessionInvalidated    = errors.New("session has been invalidated")
)

// AsResponseError extracts a ResponseError from err.
func AsResponseError(err error) (*ResponseError, bool) {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr, true
	}

	return nil, false
}

// IsAuthError checks if the error is an auth error reported by the server.
func IsAuthError(err error) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.Kind == ErrorKindAuth
}

// IsBadAccessToken checks if the server rejected the token as invalid.
func IsBadAccessToken(err error) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.Name == ErrorNameBadAccessToken
}

// IsValidation checks if the request was refused locally.
func IsValidation(err error) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.Kind == ErrorKindValidation
}

// IsTransport checks if the error is a connection-level failure.
func IsTransport(err error) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.Kind == ErrorKindTransport
}

// IsNotFound checks if the server reported a missing resource.
func IsNotFound(err error) bool {
	respErr, ok := AsResponseError(err)
	if !ok {
		return false
	}

	return respErr.Name == ErrorNameNotFound || respErr.StatusCode == 404
}
