package client_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/usergrid-client/internal/client"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// recordedRequest is what the test server saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// apiServer records every request before handing it to handler.
type apiServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newAPIServer(t *testing.T, handler http.HandlerFunc) *apiServer {
	t.Helper()

	server := &apiServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		request.Body = io.NopCloser(bytes.NewReader(body))

		server.mu.Lock()
		server.requests = append(server.requests, recordedRequest{
			Method: request.Method,
			Path:   request.URL.Path,
			Query:  request.URL.Query(),
			Header: request.Header.Clone(),
			Body:   body,
		})
		server.mu.Unlock()

		handler(writer, request)
	}))
	t.Cleanup(server.Close)

	return server
}

func (s *apiServer) Requests() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]recordedRequest(nil), s.requests...)
}

func (s *apiServer) Last(t *testing.T) recordedRequest {
	t.Helper()

	requests := s.Requests()
	require.NotEmpty(t, requests)

	return requests[len(requests)-1]
}

func jsonHandler(statusCode int, body string) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(statusCode)
		_, _ = writer.Write([]byte(body))
	}
}

// routes answers by path, 404 otherwise.
func routes(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		handler, ok := handlers[request.URL.Path]
		if !ok {
			jsonHandler(http.StatusNotFound, `{"error":"service_resource_not_found"}`)(writer, request)

			return
		}

		handler(writer, request)
	}
}

func newTestClient(t *testing.T, baseURL string, configure ...func(*usergrid.Config)) *Client {
	t.Helper()

	config := &usergrid.Config{
		OrgID:   "org",
		AppID:   "app",
		BaseURL: baseURL,
	}

	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}

// TestOperation describes one client call and the HTTP request it must produce.
type TestOperation struct {
	Name           string
	Call           func(context.Context, *Client) (*usergrid.Response, error)
	StatusCode     int
	Response       string
	ExpectedMethod string
	ExpectedPath   string
	ExpectedQuery  map[string]string
	ExpectedBody   string
	WantErr        bool
	WantValidation bool
}

// RunOperationTests runs each operation against a fresh server.
func RunOperationTests(t *testing.T, tests []TestOperation) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			statusCode := testCase.StatusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			body := testCase.Response
			if body == "" {
				body = `{"entities":[]}`
			}

			server := newAPIServer(t, jsonHandler(statusCode, body))
			client := newTestClient(t, server.URL)

			resp, err := testCase.Call(context.Background(), client)
			require.NotNil(t, resp)

			if testCase.WantValidation {
				require.Error(t, err)
				assert.True(t, usergrid.IsValidation(err))
				assert.Empty(t, server.Requests())

				return
			}

			if testCase.WantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			request := server.Last(t)
			assert.Equal(t, testCase.ExpectedMethod, request.Method)
			assert.Equal(t, testCase.ExpectedPath, request.Path)

			for key, value := range testCase.ExpectedQuery {
				assert.Equal(t, value, request.Query.Get(key), "query parameter %s", key)
			}

			if testCase.ExpectedBody != "" {
				assert.JSONEq(t, testCase.ExpectedBody, string(request.Body))
			}
		})
	}
}
