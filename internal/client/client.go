package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/usergrid-client/internal/auth"
	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/usergrid-client/internal/http"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Static errors for err113 compliance.
var (
	ErrUnexpectedStatus   = errors.New("unexpected status code")
	ErrNoAsset            = errors.New("entity has no asset")
	ErrEntityTypeRequired = errors.New("entity type is required")
	ErrRelationRequired   = errors.New("relationship is required")
	ErrNoEntities         = errors.New("no entities to post")
	ErrNotifierRequired   = errors.New("notifier ID is required")
)

// Executor sends requests. *internalhttp.Client implements it.
type Executor interface {
	Do(ctx context.Context, req *usergrid.Request) *usergrid.RawResponse
	DoWithProgress(ctx context.Context, req *usergrid.Request, onProgress usergrid.ProgressFunc) *usergrid.RawResponse
	Send(ctx context.Context, req *usergrid.Request, completion func(*usergrid.RawResponse))
	Dispatch(fn func())
	Invalidate()
}

// Client implements the usergrid.Client interface.
type Client struct {
	executor     Executor
	auth         *auth.Context
	minter       *auth.Minter
	persister    *auth.Persister
	registry     *usergrid.Registry
	logger       usergrid.Logger
	clientAppURL string
}

var _ usergrid.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *usergrid.Config) []internalhttp.Option {
	var httpOpts []internalhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, internalhttp.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, internalhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a Usergrid client for {BaseURL}/{OrgID}/{AppID}. Credentials
// saved in config.CredentialStore are restored before it returns; no
// request is sent.
func New(ctx context.Context, config *usergrid.Config) (*Client, error) {
	err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, config, internalhttp.NewClient(createHTTPClientOptions(config)...)), nil
}

// NewWithExecutor creates a client that sends through executor.
func NewWithExecutor(ctx context.Context, config *usergrid.Config, executor Executor) (*Client, error) {
	err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, config, executor), nil
}

func validateConfig(config *usergrid.Config) error {
	if config == nil {
		return usergrid.ErrConfigRequired
	}

	if config.OrgID == "" {
		return usergrid.ErrOrgIDRequired
	}

	if config.AppID == "" {
		return usergrid.ErrAppIDRequired
	}

	return nil
}

func newClient(ctx context.Context, config *usergrid.Config, executor Executor) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = usergrid.DefaultBaseURL
	}

	registry := config.Registry
	if registry == nil {
		registry = usergrid.DefaultRegistry
	}

	clientAppURL := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), config.OrgID, config.AppID)

	var appAuth *usergrid.AppAuth
	if config.ClientID != "" {
		appAuth = usergrid.NewAppAuth(config.ClientID, config.ClientSecret)
	}

	client := &Client{
		executor:     executor,
		auth:         auth.NewContext(config.AuthMode, appAuth),
		minter:       auth.NewMinter(executor, clientAppURL, registry),
		persister:    auth.NewPersister(config.CredentialStore, config.OrgID, config.AppID, config.Logger),
		registry:     registry,
		logger:       config.Logger,
		clientAppURL: clientAppURL,
	}

	if config.AccessToken != "" {
		client.installAccessToken(config)
	}

	client.restoreCredentials(ctx, config)

	return client
}

// installAccessToken makes a configured token the credential of the
// selected mode. It has no expiry of its own.
func (c *Client) installAccessToken(config *usergrid.Config) {
	switch config.AuthMode {
	case usergrid.AuthModeApp:
		appAuth := c.auth.AppAuth()
		if appAuth == nil {
			appAuth = usergrid.NewAppAuth(config.ClientID, config.ClientSecret)
		}

		appAuth.Auth = usergrid.NewAuth(config.AccessToken)
		c.auth.SetAppAuth(appAuth)
	case usergrid.AuthModeUser:
		userAuth := usergrid.NewUserAuth(config.Username, config.Password)
		userAuth.Auth = usergrid.NewAuth(config.AccessToken)

		user := usergrid.NewUser()
		if config.Username != "" {
			user.SetUsername(config.Username)
		}

		user.Auth = userAuth
		c.auth.SetCurrentUser(user)
	case usergrid.AuthModeNone:
		c.debug("access token ignored in auth mode none", nil)
	}
}

func (c *Client) restoreCredentials(ctx context.Context, config *usergrid.Config) {
	if !c.persister.Enabled() {
		return
	}

	if appAuth := c.auth.AppAuth(); appAuth != nil && !appAuth.IsValid() {
		restored, err := c.persister.RestoreApp(ctx, appAuth)
		if err != nil {
			c.warn("failed to restore app credential", err)
		} else if restored {
			c.debug("restored app credential", map[string]interface{}{"client_id": appAuth.ClientID})
		}
	}

	if c.auth.CurrentUser() != nil {
		return
	}

	username := config.Username
	if username == "" {
		current, err := c.persister.CurrentUsername(ctx)
		if err != nil {
			c.warn("failed to load current user", err)

			return
		}

		username = current
	}

	if username == "" {
		return
	}

	userAuth := usergrid.NewUserAuth(username, config.Password)

	restored, err := c.persister.RestoreUser(ctx, userAuth)
	if err != nil {
		c.warn("failed to restore user credential", err)

		return
	}

	if !restored {
		return
	}

	user := usergrid.NewUser()
	user.SetUsername(username)
	user.Auth = userAuth
	c.auth.SetCurrentUser(user)
	c.debug("restored user credential", map[string]interface{}{"username": username})
}

// ClientAppURL implements usergrid.Client.ClientAppURL.
func (c *Client) ClientAppURL() string {
	return c.clientAppURL
}

// Invalidate implements usergrid.Client.Invalidate.
func (c *Client) Invalidate() {
	c.executor.Invalidate()
}

// Do implements usergrid.Client.Do.
func (c *Client) Do(ctx context.Context, req *usergrid.Request) (*usergrid.Response, error) {
	return result(c.send(ctx, req, nil))
}

// Send implements usergrid.Client.Send. Auth is resolved before Send
// returns.
func (c *Client) Send(ctx context.Context, req *usergrid.Request, completion func(*usergrid.Response)) {
	prepared := c.prepare(req, usergrid.CallOptions{})

	c.executor.Send(ctx, prepared, func(raw *usergrid.RawResponse) {
		resp := c.registry.ParseResponse(raw, prepared)
		if completion != nil {
			completion(resp)
		}
	})
}

// newRequest builds a request under the application URL.
func (c *Client) newRequest(method string, opts ...usergrid.RequestOption) *usergrid.Request {
	return usergrid.NewRequest(method, c.clientAppURL, opts...)
}

// send resolves auth, applies per-call options and executes req.
func (c *Client) send(ctx context.Context, req *usergrid.Request, opts []usergrid.CallOption) *usergrid.Response {
	prepared := c.prepare(req, usergrid.ApplyCallOptions(opts...))

	return c.registry.ParseResponse(c.executor.Do(ctx, prepared), prepared)
}

func (c *Client) sendWithProgress(
	ctx context.Context,
	req *usergrid.Request,
	progress usergrid.ProgressFunc,
	opts []usergrid.CallOption,
) (*usergrid.Request, *usergrid.RawResponse) {
	prepared := c.prepare(req, usergrid.ApplyCallOptions(opts...))

	if progress == nil {
		return prepared, c.executor.Do(ctx, prepared)
	}

	return prepared, c.executor.DoWithProgress(ctx, prepared, progress)
}

// prepare attaches call headers and, unless req already carries one, the
// resolved credential.
func (c *Client) prepare(req *usergrid.Request, options usergrid.CallOptions) *usergrid.Request {
	var reqOpts []usergrid.RequestOption

	if len(options.Headers) > 0 {
		reqOpts = append(reqOpts, usergrid.WithHeaders(options.Headers))
	}

	if req.Auth() == nil {
		reqOpts = append(reqOpts, usergrid.WithAuth(c.auth.Resolve(options.Auth)))
	}

	return req.With(reqOpts...)
}

// result pairs a response with its error. A failed status without an
// error body still yields an error.
func result(resp *usergrid.Response) (*usergrid.Response, error) {
	if err := resp.Err(); err != nil {
		return resp, err
	}

	if !resp.OK() {
		return resp, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return resp, nil
}

// invalid returns a response refused before sending.
func invalid(req *usergrid.Request, err error) (*usergrid.Response, error) {
	resp := usergrid.NewErrorResponse(req, &usergrid.ResponseError{
		Kind:        usergrid.ErrorKindValidation,
		Name:        usergrid.ErrorNameValidation,
		Description: err.Error(),
		Err:         err,
	})

	return resp, resp.Err()
}

// mergeFirst copies the first returned entity into entity.
func mergeFirst(entity usergrid.Entity, resp *usergrid.Response) {
	if first := resp.First(); first != nil && resp.Error == nil {
		entity.Base().Merge(first)
	}
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
