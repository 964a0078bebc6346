package constants

import "errors"

// Configuration errors.
var (
	ErrNoBaseURLConfigured = errors.New("no base URL configured, use 'ug config set base_url <url>'")
	ErrNoOrgConfigured     = errors.New("no org configured, use 'ug config set org <org>'")
	ErrNoAppConfigured     = errors.New("no app configured, use 'ug config set app <app>'")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrNotAuthenticated  = errors.New("not authenticated, use 'ug login' first")
)

// Store errors.
var (
	ErrUnsupportedStoreType = errors.New("unsupported store type")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS store")
	ErrBoltPathRequired     = errors.New("path required for bolt store")
	ErrFilePathRequired     = errors.New("path required for file store")
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrStoreDisabled        = errors.New("credential store disabled")
)

// Argument errors.
var (
	ErrInvalidJSONBody      = errors.New("body must be a JSON object")
	ErrInvalidDirection     = errors.New("direction must be 'connecting' or 'connections'")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrNotRegularFile       = errors.New("path is not a regular file")
	ErrDirectoryTraverse    = errors.New("directory traversal detected in file path")
	ErrMissingTarget        = errors.New("no entity given")
	ErrConfirmationRequired = errors.New("confirmation required")
)
