package usergrid

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Content types.
const (
	ContentTypeJSON = "application/json"
)

// Request describes one HTTP call. It is immutable once built; With
// returns a modified copy.
type Request struct {
	method      string
	baseURL     string
	paths       []string
	query       *Query
	params      map[string]string
	headers     map[string]string
	jsonBody    interface{}
	rawBody     []byte
	contentType string
	auth        *Auth
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// NewRequest builds a request against baseURL.
func NewRequest(method, baseURL string, opts ...RequestOption) *Request {
	r := &Request{
		method:  strings.ToUpper(method),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		params:  make(map[string]string),
		headers: make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithPaths appends path segments. Empty segments are skipped.
func WithPaths(segments ...string) RequestOption {
	return func(r *Request) {
		for _, s := range segments {
			if s != "" {
				r.paths = append(r.paths, s)
			}
		}
	}
}

// WithQuery attaches a query. The query is copied.
func WithQuery(q *Query) RequestOption {
	return func(r *Request) {
		if q != nil {
			r.query = q.Clone()
		}
	}
}

// WithParam adds a flat query parameter.
func WithParam(key, value string) RequestOption {
	return func(r *Request) {
		r.params[key] = value
	}
}

// WithParams adds flat query parameters.
func WithParams(params map[string]string) RequestOption {
	return func(r *Request) {
		maps.Copy(r.params, params)
	}
}

// WithHeader sets a header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.headers[key] = value
	}
}

// WithHeaders sets headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		maps.Copy(r.headers, headers)
	}
}

// WithJSONBody sets a body serialized as JSON.
func WithJSONBody(body interface{}) RequestOption {
	return func(r *Request) {
		r.jsonBody = body
		r.rawBody = nil
		r.contentType = ContentTypeJSON
	}
}

// WithRawBody sets a pre-serialized body.
func WithRawBody(body []byte, contentType string) RequestOption {
	return func(r *Request) {
		r.rawBody = body
		r.jsonBody = nil
		r.contentType = contentType
	}
}

// WithAuth sets the resolved credential. Only a valid credential produces
// an Authorization header.
func WithAuth(auth *Auth) RequestOption {
	return func(r *Request) {
		r.auth = auth
	}
}

// With returns a copy of r with opts applied.
func (r *Request) With(opts ...RequestOption) *Request {
	c := &Request{
		method:      r.method,
		baseURL:     r.baseURL,
		paths:       slices.Clone(r.paths),
		params:      maps.Clone(r.params),
		headers:     maps.Clone(r.headers),
		jsonBody:    r.jsonBody,
		rawBody:     r.rawBody,
		contentType: r.contentType,
		auth:        r.auth,
	}

	if r.query != nil {
		c.query = r.query.Clone()
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// BaseURL returns the base URL.
func (r *Request) BaseURL() string {
	return r.baseURL
}

// Paths returns the path segments.
func (r *Request) Paths() []string {
	return slices.Clone(r.paths)
}

// Query returns a copy of the attached query, or nil.
func (r *Request) Query() *Query {
	if r.query == nil {
		return nil
	}

	return r.query.Clone()
}

// Params returns the flat query parameters.
func (r *Request) Params() map[string]string {
	return maps.Clone(r.params)
}

// Headers returns the caller-supplied headers.
func (r *Request) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// Auth returns the resolved credential, or nil.
func (r *Request) Auth() *Auth {
	return r.auth
}

// ContentType returns the body content type, or "" when there is no body.
func (r *Request) ContentType() string {
	return r.contentType
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool {
	return r.jsonBody != nil || r.rawBody != nil
}

// URL returns the full request URL: base, escaped path segments, the
// compiled query, then flat parameters in key order.
func (r *Request) URL() string {
	var b strings.Builder

	b.WriteString(r.baseURL)

	for _, segment := range r.paths {
		b.WriteString("/")
		b.WriteString(url.PathEscape(segment))
	}

	fragment := ""
	if r.query != nil {
		fragment = r.query.Build(true)
	}

	b.WriteString(fragment)

	if len(r.params) > 0 {
		keys := slices.Sorted(maps.Keys(r.params))

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, EncodeQueryComponent(k)+"="+EncodeQueryComponent(r.params[k]))
		}

		if fragment == "" {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}

		b.WriteString(strings.Join(parts, "&"))
	}

	return b.String()
}

// Body serializes the body. It returns nil when there is no body.
func (r *Request) Body() ([]byte, error) {
	if r.rawBody != nil {
		return r.rawBody, nil
	}

	if r.jsonBody == nil {
		return nil, nil
	}

	data, err := json.Marshal(r.jsonBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	return data, nil
}

// Header returns the headers to send for a body of bodyLen bytes. The
// Authorization header is set only if the credential is valid now.
func (r *Request) Header(bodyLen int) http.Header {
	header := make(http.Header, len(r.headers)+3)

	for k, v := range r.headers {
		header.Set(k, v)
	}

	if header.Get("Accept") == "" {
		header.Set("Accept", ContentTypeJSON)
	}

	if token, ok := r.auth.validToken(); ok {
		header.Set("Authorization", "Bearer "+token)
	}

	if r.HasBody() {
		if r.contentType != "" && header.Get("Content-Type") == "" {
			header.Set("Content-Type", r.contentType)
		}

		header.Set("Content-Length", strconv.Itoa(bodyLen))
	}

	return header
}

// String returns "METHOD URL".
func (r *Request) String() string {
	return r.method + " " + r.URL()
}
