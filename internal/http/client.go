// Package http executes usergrid requests over a retryable HTTP session.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/hashicorp/go-retryablehttp"
)

const defaultUserAgent = "usergrid-go-client/1.0"

// Client turns usergrid requests into HTTP calls. Any number of calls may
// be in flight at once. Completions and progress callbacks of the async
// methods run one at a time, in order, on the client's callback queue.
type Client struct {
	httpClient   *retryablehttp.Client
	logger       usergrid.Logger
	debug        bool
	userAgent    string
	interceptors *usergrid.InterceptorChain

	session context.Context
	cancel  context.CancelFunc
	queue   *callbackQueue
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger usergrid.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets retry behavior. retryMax 0 sends each request once.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithInterceptors sets the interceptor chain run around every exchange.
func WithInterceptors(chain *usergrid.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a client.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	session, cancel := context.WithCancel(context.Background())

	client := &Client{
		httpClient: retryClient,
		userAgent:  defaultUserAgent,
		session:    session,
		cancel:     cancel,
		queue:      newCallbackQueue(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// Do sends req and waits for the outcome. Failures are reported in
// RawResponse.Err.
func (c *Client) Do(ctx context.Context, req *usergrid.Request) *usergrid.RawResponse {
	return c.do(ctx, req, nil)
}

// DoWithProgress is Do with transfer progress reported on the calling
// goroutine before it returns. Request bodies report upload progress,
// response bodies report download progress.
func (c *Client) DoWithProgress(ctx context.Context, req *usergrid.Request, onProgress usergrid.ProgressFunc) *usergrid.RawResponse {
	return c.do(ctx, req, onProgress)
}

// Send issues req in the background and calls completion exactly once.
func (c *Client) Send(ctx context.Context, req *usergrid.Request, completion func(*usergrid.RawResponse)) {
	c.SendWithProgress(ctx, req, nil, completion)
}

// SendWithProgress is Send with progress callbacks. Every progress
// callback for req runs before its completion.
func (c *Client) SendWithProgress(
	ctx context.Context,
	req *usergrid.Request,
	onProgress usergrid.ProgressFunc,
	completion func(*usergrid.RawResponse),
) {
	var progress usergrid.ProgressFunc
	if onProgress != nil {
		progress = func(transferred, expected int64) {
			c.queue.enqueue(func() { onProgress(transferred, expected) })
		}
	}

	go func() {
		raw := c.do(ctx, req, progress)

		c.queue.enqueue(func() {
			if completion != nil {
				completion(raw)
			}
		})
	}()
}

// Dispatch runs fn on the callback queue, after every completion already
// queued.
func (c *Client) Dispatch(fn func()) {
	if fn != nil {
		c.queue.enqueue(fn)
	}
}

// Invalidate aborts in-flight calls and fails every later call.
func (c *Client) Invalidate() {
	c.cancel()
	c.httpClient.HTTPClient.CloseIdleConnections()
}

// Invalidated reports whether Invalidate has been called.
func (c *Client) Invalidated() bool {
	return c.session.Err() != nil
}

func (c *Client) do(ctx context.Context, req *usergrid.Request, onProgress usergrid.ProgressFunc) *usergrid.RawResponse {
	if c.Invalidated() {
		return &usergrid.RawResponse{Err: usergrid.ErrSessionInvalidated}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(c.session, cancel)
	defer stop()

	start := time.Now()

	httpReq, err := c.buildRequest(ctx, req, onProgress)
	if err != nil {
		return &usergrid.RawResponse{Err: err}
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, httpReq.Request)
	if err != nil {
		return &usergrid.RawResponse{Err: err}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": httpReq.Method,
			"url":    httpReq.URL.String(),
			"auth":   httpReq.Header.Get("Authorization") != "",
		})
	}

	raw := c.execute(httpReq, onProgress)
	raw.Duration = time.Since(start)

	if raw.Err != nil && c.session.Err() != nil {
		raw.Err = fmt.Errorf("%w: %w", usergrid.ErrSessionInvalidated, raw.Err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   httpReq.Method,
			"url":      httpReq.URL.String(),
			"status":   raw.StatusCode,
			"duration": raw.Duration.String(),
		})
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, httpReq.Request, raw)
	if err != nil && c.logger != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}

	return raw
}

func (c *Client) buildRequest(ctx context.Context, req *usergrid.Request, onProgress usergrid.ProgressFunc) (*retryablehttp.Request, error) {
	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	var rawBody interface{}

	if body != nil {
		if onProgress != nil {
			rawBody = retryablehttp.ReaderFunc(func() (io.Reader, error) {
				return newProgressReader(bytes.NewReader(body), int64(len(body)), onProgress), nil
			})
		} else {
			rawBody = body
		}
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method(), req.URL(), rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Header(len(body)) {
		httpReq.Header[key] = values
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	return httpReq, nil
}

func (c *Client) execute(httpReq *retryablehttp.Request, onProgress usergrid.ProgressFunc) *usergrid.RawResponse {
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		return &usergrid.RawResponse{Err: err}
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var reader io.Reader = resp.Body
	if onProgress != nil {
		reader = newProgressReader(resp.Body, resp.ContentLength, onProgress)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return &usergrid.RawResponse{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	return &usergrid.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
}

// leveledLogger forwards retry warnings and errors to a usergrid.Logger.
type leveledLogger struct {
	logger usergrid.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFromPairs(keysAndValues))
}

func (l *leveledLogger) Info(string, ...interface{}) {}

func (l *leveledLogger) Debug(string, ...interface{}) {}

func fieldsFromPairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
