package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0o750

	// ConfigFilePerm is the permission for configuration and credential files.
	ConfigFilePerm = 0o600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as logout.
	ShortHTTPTimeout = 10 * time.Second

	// StoreOpenTimeout bounds waiting for the bolt database lock.
	StoreOpenTimeout = 5 * time.Second
)

// Retry limits. Requests are attempted once unless a caller opts in.
const (
	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Authentication.
const (
	// TokenExpirySafetyMargin is subtracted from expires_in when a token is minted.
	TokenExpirySafetyMargin = 5 * time.Second

	// TokenPath is the token endpoint under {org}/{app}.
	TokenPath = "token"

	// GrantTypePassword mints user tokens.
	GrantTypePassword = "password"

	// GrantTypeClientCredentials mints application tokens.
	GrantTypeClientCredentials = "client_credentials"
)

// Resource paths.
const (
	UsersCollection   = "users"
	DevicesCollection = "devices"
	RevokeTokenPath   = "revoketoken"
	RevokeTokensPath  = "revoketokens"
	PasswordPath      = "password"
	NotifierSuffix    = ".notifier.id"
)

// Concurrency and buffering.
const (
	// DefaultConcurrencyLimit limits concurrent batch operations.
	DefaultConcurrencyLimit = 5

	// CallbackQueueSize is the initial capacity of the executor callback queue.
	CallbackQueueSize = 64

	// ProgressChunkSize is the read size used when reporting transfer progress.
	ProgressChunkSize = 32 * 1024
)

// Display.
const (
	NotAvailable    = "N/A"
	MaskedSecret    = "***"
	FormatJSON      = "json"
	FormatYAML      = "yaml"
	FormatTable     = "table"
	JSONIndentSize  = 2
	TokenPrefixSize = 8
)

// Circuit breaker defaults.
const (
	CircuitBreakerThreshold        = 5
	CircuitBreakerSuccessThreshold = 2
	CircuitBreakerTimeout          = 30 * time.Second
)
