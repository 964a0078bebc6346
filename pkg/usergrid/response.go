package usergrid

import (
	"bytes"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// RawResponse is the unparsed outcome of one HTTP call.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
	Duration   time.Duration
}

// ProgressFunc reports bytes transferred so far and the total expected,
// or -1 when the total is unknown.
type ProgressFunc func(transferred, expected int64)

// Response is the parsed envelope of one call.
type Response struct {
	StatusCode int
	Header     http.Header
	RawJSON    []byte
	Entities   []Entity
	Cursor     string
	Path       string
	Error      *ResponseError

	// Request is the call that produced this response.
	Request *Request
}

// OK reports whether a status code was received and it is below 400.
func (r *Response) OK() bool {
	return r.StatusCode != 0 && r.StatusCode < http.StatusBadRequest
}

// HasNextPage reports whether the server returned a cursor.
func (r *Response) HasNextPage() bool {
	return r.Cursor != ""
}

// Err returns Error as an error, or nil.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}

	return r.Error
}

// Count returns the number of entities.
func (r *Response) Count() int {
	return len(r.Entities)
}

// First returns the first entity, or nil.
func (r *Response) First() Entity {
	if len(r.Entities) == 0 {
		return nil
	}

	return r.Entities[0]
}

// Last returns the last entity, or nil.
func (r *Response) Last() Entity {
	if len(r.Entities) == 0 {
		return nil
	}

	return r.Entities[len(r.Entities)-1]
}

// User returns the first entity if it is a user.
func (r *Response) User() *User {
	users := r.Users()
	if len(users) == 0 {
		return nil
	}

	return users[0]
}

// Users returns the entities that are users.
func (r *Response) Users() []*User {
	var users []*User

	for _, e := range r.Entities {
		if u, ok := e.(*User); ok {
			users = append(users, u)
		}
	}

	return users
}

// Collection returns the last component of the path reported by the server.
func (r *Response) Collection() string {
	if r.Path == "" {
		return ""
	}

	return path.Base(strings.TrimSuffix(r.Path, "/"))
}

// Get returns the value at a gjson path in the raw body.
func (r *Response) Get(jsonPath string) gjson.Result {
	return gjson.GetBytes(r.RawJSON, jsonPath)
}

// NewErrorResponse returns a response carrying only err.
func NewErrorResponse(req *Request, err *ResponseError) *Response {
	return &Response{Error: err, Request: req}
}

// ParseResponse parses raw with the default registry.
func ParseResponse(raw *RawResponse, req *Request) *Response {
	return DefaultRegistry.ParseResponse(raw, req)
}

// ParseResponse normalizes raw into a Response. Transport failures yield
// only an error, bodies that are not JSON yield a parse error, and bodies
// reporting an error carry it with no entities regardless of status code.
// An empty body is a successful response with no entities.
func (r *Registry) ParseResponse(raw *RawResponse, req *Request) *Response {
	if raw == nil {
		return NewErrorResponse(req, NewTransportError(ErrSessionInvalidated))
	}

	if raw.Err != nil {
		return NewErrorResponse(req, NewTransportError(raw.Err))
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		Request:    req,
	}

	body := raw.Body
	if len(bytes.TrimSpace(body)) == 0 {
		return resp
	}

	if !gjson.ValidBytes(body) {
		resp.Error = NewParseError(raw.StatusCode, nil)

		return resp
	}

	resp.RawJSON = body
	parsed := gjson.ParseBytes(body)

	if errName := parsed.Get("error"); errName.Exists() && errName.String() != "" {
		resp.Error = NewAPIError(
			errName.String(),
			parsed.Get("error_description").String(),
			parsed.Get("exception").String(),
			raw.StatusCode,
		)

		return resp
	}

	parsed.Get("entities").ForEach(func(_, value gjson.Result) bool {
		if props, ok := value.Value().(map[string]interface{}); ok {
			resp.Entities = append(resp.Entities, r.FromProperties(props))
		}

		return true
	})

	if cursor := parsed.Get("cursor"); cursor.Type == gjson.String && cursor.Str != "" {
		resp.Cursor = cursor.Str
	}

	resp.Path = parsed.Get("path").String()

	return resp
}

// NextPageRequest builds the request for the page after resp: the
// originating query with the cursor set, and the collection inferred from
// the response path when the query had none. The credential is cleared so
// the caller resolves auth again.
func NextPageRequest(resp *Response) (*Request, error) {
	if resp == nil || !resp.HasNextPage() {
		return nil, ErrNoNextPage
	}

	if resp.Request == nil {
		return nil, ErrNoNextPage
	}

	query := resp.Request.Query()
	if query == nil {
		query = NewQuery()
	}

	if query.CollectionName() == "" {
		query.Collection(resp.Collection())
	}

	query.Cursor(resp.Cursor)

	return resp.Request.With(WithQuery(query), WithAuth(nil)), nil
}

// NoNextPageResponse is returned by pagination when there is no cursor.
func NoNextPageResponse(resp *Response) *Response {
	var req *Request
	if resp != nil {
		req = resp.Request
	}

	return NewErrorResponse(req, &ResponseError{
		Kind:        ErrorKindValidation,
		Name:        ErrorNameNoNextPage,
		Description: "response has no cursor",
		Err:         ErrNoNextPage,
	})
}
