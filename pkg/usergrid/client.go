package usergrid

import (
	"context"
	"time"
)

// DefaultBaseURL is the hosted Usergrid endpoint.
const DefaultBaseURL = "https://api.usergrid.com"

// Direction selects which side of a connection to traverse.
type Direction string

// Connection directions.
const (
	DirectionConnecting  Direction = "connecting"
	DirectionConnections Direction = "connections"
)

// Body is a JSON object sent as a request body.
type Body = map[string]interface{}

// CallOptions holds per-call settings.
type CallOptions struct {
	// Auth overrides the credential resolved from the auth mode for this call.
	Auth    *Auth
	Headers map[string]string
}

// CallOption configures a single call.
type CallOption func(*CallOptions)

// AuthOverride uses auth for this call only. An invalid auth sends the call
// without a credential.
func AuthOverride(auth *Auth) CallOption {
	return func(o *CallOptions) {
		o.Auth = auth
	}
}

// TokenOverride uses token for this call only.
func TokenOverride(token string) CallOption {
	return AuthOverride(NewAuth(token))
}

// CallHeader adds a header to this call.
func CallHeader(key, value string) CallOption {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}

		o.Headers[key] = value
	}
}

// ApplyCallOptions folds opts into a CallOptions value.
func ApplyCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// EntityClient performs CRUD on entities and collections.
type EntityClient interface {
	Get(ctx context.Context, entityType, uuidOrName string, opts ...CallOption) (*Response, error)
	List(ctx context.Context, entityType string, opts ...CallOption) (*Response, error)
	Query(ctx context.Context, query *Query, opts ...CallOption) (*Response, error)
	Put(ctx context.Context, entityType, uuidOrName string, body Body, opts ...CallOption) (*Response, error)
	PutBody(ctx context.Context, entityType string, body Body, opts ...CallOption) (*Response, error)
	PutEntity(ctx context.Context, entity Entity, opts ...CallOption) (*Response, error)
	PutQuery(ctx context.Context, query *Query, body Body, opts ...CallOption) (*Response, error)
	Post(ctx context.Context, entityType string, body Body, opts ...CallOption) (*Response, error)
	PostNamed(ctx context.Context, entityType, name string, body Body, opts ...CallOption) (*Response, error)
	PostBodies(ctx context.Context, entityType string, bodies []Body, opts ...CallOption) (*Response, error)
	PostEntity(ctx context.Context, entity Entity, opts ...CallOption) (*Response, error)
	PostEntities(ctx context.Context, entities []Entity, opts ...CallOption) (*Response, error)
	Delete(ctx context.Context, entityType, uuidOrName string, opts ...CallOption) (*Response, error)
	DeleteEntity(ctx context.Context, entity Entity, opts ...CallOption) (*Response, error)
	DeleteQuery(ctx context.Context, query *Query, opts ...CallOption) (*Response, error)
	Reload(ctx context.Context, entity Entity, opts ...CallOption) (*Response, error)
	Save(ctx context.Context, entity Entity, opts ...CallOption) (*Response, error)
}

// ConnectionClient manages the graph between entities.
type ConnectionClient interface {
	Connect(ctx context.Context, entityType, uuidOrName, relationship, toType, toUUIDOrName string, opts ...CallOption) (*Response, error)
	ConnectEntities(ctx context.Context, from Entity, relationship string, to Entity, opts ...CallOption) (*Response, error)
	Disconnect(ctx context.Context, entityType, uuidOrName, relationship, toType, toUUIDOrName string, opts ...CallOption) (*Response, error)
	DisconnectEntities(ctx context.Context, from Entity, relationship string, to Entity, opts ...CallOption) (*Response, error)
	GetConnections(ctx context.Context, direction Direction, entityType, uuidOrName, relationship string, query *Query, opts ...CallOption) (*Response, error)
	GetConnectionsByUUID(ctx context.Context, direction Direction, uuid, relationship string, query *Query, opts ...CallOption) (*Response, error)
}

// UserClient authenticates and manages users.
type UserClient interface {
	CurrentUser() *User
	AuthenticateApp(ctx context.Context, auth *AppAuth) (*Response, error)
	AuthenticateUser(ctx context.Context, auth *UserAuth, setAsCurrent bool) (*Response, error)
	ReauthenticateUser(ctx context.Context) (*Response, error)
	LogoutCurrentUser(ctx context.Context) (*Response, error)
	LogoutUser(ctx context.Context, uuidOrUsername, token string) (*Response, error)
	LogoutUserAllTokens(ctx context.Context, uuidOrUsername string) (*Response, error)
	ResetPassword(ctx context.Context, user *User, oldPassword, newPassword string) (*Response, error)
	CreateUser(ctx context.Context, user *User, opts ...CallOption) (*Response, error)
	CheckAvailable(ctx context.Context, email, username string) (bool, error)
}

// AssetClient uploads and downloads entity assets.
type AssetClient interface {
	UploadAsset(ctx context.Context, entity Entity, asset *Asset, progress ProgressFunc, opts ...CallOption) (*Response, error)
	DownloadAsset(ctx context.Context, entity Entity, contentType string, progress ProgressFunc, opts ...CallOption) (*Asset, error)
}

// DeviceClient registers devices for push notifications.
type DeviceClient interface {
	ApplyPushToken(ctx context.Context, device *Device, pushToken, notifierID string, opts ...CallOption) (*Response, error)
}

// AuthClient exposes credential resolution.
type AuthClient interface {
	AuthMode() AuthMode
	SetAuthMode(mode AuthMode)
	AppAuth() *AppAuth
	SetAppAuth(auth *AppAuth)
	UserAuth() *UserAuth
	UsingAuth(auth *Auth)
	UsingToken(token string)
	AuthForRequests() *Auth
}

// Client is the full Usergrid client.
type Client interface {
	EntityClient
	ConnectionClient
	UserClient
	AssetClient
	DeviceClient
	AuthClient

	// Do sends req, resolving auth first when req carries none.
	Do(ctx context.Context, req *Request) (*Response, error)
	// Send is the asynchronous form of Do. completion is called exactly once.
	Send(ctx context.Context, req *Request, completion func(*Response))
	// NextPage fetches the page after resp. Without a cursor it returns an
	// error response and sends nothing.
	NextPage(ctx context.Context, resp *Response, opts ...CallOption) (*Response, error)
	// SendNextPage is the asynchronous form of NextPage.
	SendNextPage(ctx context.Context, resp *Response, completion func(*Response), opts ...CallOption)
	// ClientAppURL returns {base}/{org}/{app}.
	ClientAppURL() string
	// Invalidate aborts in-flight calls; later calls fail immediately.
	Invalidate()
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration.
//
// # Authentication
//
// AuthMode picks the credential attached to each call:
//  1. AuthModeUser: the current user's token, once AuthenticateUser succeeds.
//  2. AuthModeApp: the application token minted from ClientID/ClientSecret.
//  3. AuthModeNone: requests are sent without authentication.
//
// AccessToken, when set, is installed as an explicitly set credential for
// the selected mode and never expires on its own.
//
// # Retries
//
// Calls are attempted once by default. RetryMax enables retries on 5xx,
// 429 and connection errors.
type Config struct {
	// OrgID and AppID select the application. Both are required.
	OrgID string
	AppID string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	AuthMode     AuthMode
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AccessToken  string

	HTTPTimeout  time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Debug        bool
	Logger       Logger
	UserAgent    string

	// CredentialStore persists app and user tokens when set.
	CredentialStore CredentialStore
	// Registry maps entity types to Go types. Defaults to DefaultRegistry.
	Registry *Registry
	// Interceptors run around every HTTP exchange.
	Interceptors *InterceptorChain
}
