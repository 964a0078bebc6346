package client_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	. "github.com/fivetwenty-io/usergrid-client/internal/client"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

func newMockedClient(t *testing.T, configure ...func(*usergrid.Config)) (*Client, *MockExecutor) {
	t.Helper()

	ctrl := gomock.NewController(t)
	executor := NewMockExecutor(ctrl)

	config := &usergrid.Config{
		OrgID:   "org",
		AppID:   "app",
		BaseURL: "https://usergrid.test",
	}

	for _, fn := range configure {
		fn(config)
	}

	client, err := NewWithExecutor(context.Background(), config, executor)
	require.NoError(t, err)

	return client, executor
}

func rawJSON(body string) *usergrid.RawResponse {
	return &usergrid.RawResponse{StatusCode: http.StatusOK, Body: []byte(body)}
}

func TestClient_NextPageWithoutCursor(t *testing.T) {
	t.Parallel()

	// Only Dispatch is expected: any request sent fails the test.
	client, executor := newMockedClient(t)
	executor.EXPECT().Dispatch(gomock.Any()).Do(func(fn func()) { fn() })

	first := &usergrid.Response{StatusCode: http.StatusOK}

	next, err := client.NextPage(context.Background(), first)
	require.Error(t, err)
	assert.ErrorIs(t, err, usergrid.ErrNoNextPage)
	require.NotNil(t, next.Error)
	assert.Equal(t, usergrid.ErrorNameNoNextPage, next.Error.Name)

	var completed *usergrid.Response

	client.SendNextPage(context.Background(), first, func(resp *usergrid.Response) {
		completed = resp
	})
	require.NotNil(t, completed)
	assert.Equal(t, usergrid.ErrorNameNoNextPage, completed.Error.Name)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_NextPageResolvesAuthAgain(t *testing.T) {
	t.Parallel()

	client, executor := newMockedClient(t, func(c *usergrid.Config) {
		c.AuthMode = usergrid.AuthModeApp
		c.AccessToken = "app-token"
	})

	gomock.InOrder(
		executor.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *usergrid.Request) *usergrid.RawResponse {
				assert.Equal(t, "app-token", req.Auth().AccessToken())
				assert.Equal(t, "https://usergrid.test/org/app/pets?limit=2", req.URL())

				return rawJSON(`{"path":"/pets","cursor":"c1","entities":[{"type":"pet","name":"a"},{"type":"pet","name":"b"}]}`)
			}),
		executor.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *usergrid.Request) *usergrid.RawResponse {
				assert.Nil(t, req.Auth())
				assert.Equal(t, http.MethodGet, req.Method())
				assert.True(t, strings.Contains(req.URL(), "cursor=c1"), req.URL())
				assert.True(t, strings.Contains(req.URL(), "limit=2"), req.URL())

				return rawJSON(`{"path":"/pets","entities":[{"type":"pet","name":"c"}]}`)
			}),
	)

	first, err := client.Query(context.Background(), usergrid.NewQuery("pets").Limit(2))
	require.NoError(t, err)
	assert.True(t, first.HasNextPage())

	client.SetAuthMode(usergrid.AuthModeNone)

	second, err := client.NextPage(context.Background(), first)
	require.NoError(t, err)
	assert.False(t, second.HasNextPage())
	assert.Equal(t, "c", second.First().Name())
}

func TestClient_SendUsesExecutorQueue(t *testing.T) {
	t.Parallel()

	client, executor := newMockedClient(t)

	executor.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, req *usergrid.Request, completion func(*usergrid.RawResponse)) {
			assert.Equal(t, "https://usergrid.test/org/app/pets/a", req.URL())
			completion(rawJSON(`{"entities":[{"type":"pet","name":"a"}]}`))
		})

	var got *usergrid.Response

	client.Send(context.Background(),
		usergrid.NewRequest(http.MethodGet, client.ClientAppURL(), usergrid.WithPaths("pets", "a")),
		func(resp *usergrid.Response) { got = resp })

	require.NotNil(t, got)
	assert.Equal(t, "a", got.First().Name())
}

func TestClient_InvalidateDelegates(t *testing.T) {
	t.Parallel()

	client, executor := newMockedClient(t)
	executor.EXPECT().Invalidate().Times(1)

	client.Invalidate()
}

func TestClient_Pages(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Query().Get("cursor") {
		case "":
			jsonHandler(http.StatusOK, `{"path":"/pets","cursor":"c1","entities":[{"type":"pet","name":"a"}]}`)(writer, request)
		case "c1":
			jsonHandler(http.StatusOK, `{"path":"/pets","cursor":"c2","entities":[{"type":"pet","name":"b"}]}`)(writer, request)
		default:
			jsonHandler(http.StatusOK, `{"path":"/pets","entities":[{"type":"pet","name":"c"}]}`)(writer, request)
		}
	})
	client := newTestClient(t, server.URL)

	first, err := client.Query(context.Background(), usergrid.NewQuery("pets").Eq("color", "brown"))
	require.NoError(t, err)

	var names []string

	err = client.Pages(context.Background(), first, func(page *usergrid.Response) bool {
		names = append(names, page.First().Name())

		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	requests := server.Requests()
	require.Len(t, requests, 3)

	for _, request := range requests {
		assert.Equal(t, "/org/app/pets", request.Path)
		assert.Equal(t, "select * where color='brown'", request.Query.Get("ql"))
	}

	assert.Equal(t, "c2", requests[2].Query.Get("cursor"))
}
