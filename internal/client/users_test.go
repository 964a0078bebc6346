package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/usergrid-client/internal/client"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

const (
	appTokenResponse  = `{"access_token":"app-token","expires_in":3600,"application":"7e2b"}`
	userTokenResponse = `{
		"access_token": "user-token",
		"expires_in": 3600,
		"user": {"uuid": "u-1", "type": "user", "username": "alice", "email": "alice@example.com"}
	}`
)

func loginServer(t *testing.T, extra map[string]http.HandlerFunc) *apiServer {
	t.Helper()

	handlers := map[string]http.HandlerFunc{
		"/org/app/token": func(writer http.ResponseWriter, request *http.Request) {
			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)

			if body["grant_type"] == "client_credentials" {
				jsonHandler(http.StatusOK, appTokenResponse)(writer, request)

				return
			}

			if body["password"] != "secret" {
				jsonHandler(http.StatusBadRequest,
					`{"error":"invalid_grant","error_description":"invalid username or password"}`)(writer, request)

				return
			}

			jsonHandler(http.StatusOK, userTokenResponse)(writer, request)
		},
		"/org/app/pets": jsonHandler(http.StatusOK, `{"entities":[]}`),
	}

	for path, handler := range extra {
		handlers[path] = handler
	}

	return newAPIServer(t, routes(handlers))
}

func login(t *testing.T, client *Client) {
	t.Helper()

	_, err := client.AuthenticateUser(context.Background(), usergrid.NewUserAuth("alice", "secret"), true)
	require.NoError(t, err)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("app credentials", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL, func(c *usergrid.Config) {
			c.AuthMode = usergrid.AuthModeApp
			c.ClientID = "id"
			c.ClientSecret = "shh"
		})

		_, err := client.AuthenticateApp(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, client.AppAuth().IsValid())
		assert.Equal(t, "app-token", client.AppAuth().AccessToken())

		tokenRequest := server.Requests()[0]
		assert.Equal(t, http.MethodPost, tokenRequest.Method)
		assert.JSONEq(t, `{"grant_type":"client_credentials","client_id":"id","client_secret":"shh"}`, string(tokenRequest.Body))
		assert.Empty(t, tokenRequest.Header.Get("Authorization"))

		_, err = client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Equal(t, "Bearer app-token", server.Last(t).Header.Get("Authorization"))
	})

	t.Run("app credentials required", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		_, err := client.AuthenticateApp(context.Background(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, usergrid.ErrNoAppAuth)
		assert.Empty(t, server.Requests())
	})

	t.Run("user becomes current", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL, func(c *usergrid.Config) {
			c.AuthMode = usergrid.AuthModeUser
		})

		login(t, client)

		user := client.CurrentUser()
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username())
		assert.Equal(t, "u-1", user.UUID())
		assert.Equal(t, "user-token", client.UserAuth().AccessToken())

		_, err := client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Equal(t, "Bearer user-token", server.Last(t).Header.Get("Authorization"))
	})

	t.Run("user not set as current", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		userAuth := usergrid.NewUserAuth("alice", "secret")

		_, err := client.AuthenticateUser(context.Background(), userAuth, false)
		require.NoError(t, err)
		assert.Nil(t, client.CurrentUser())
		assert.True(t, userAuth.IsValid())
	})

	t.Run("bad password", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		userAuth := usergrid.NewUserAuth("alice", "wrong")

		resp, err := client.AuthenticateUser(context.Background(), userAuth, true)
		require.Error(t, err)
		assert.Equal(t, "invalid_grant", resp.Error.Name)
		assert.Nil(t, client.CurrentUser())
		assert.False(t, userAuth.IsValid())
	})

	t.Run("reauthenticate mints a new token", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		login(t, client)

		_, err := client.ReauthenticateUser(context.Background())
		require.NoError(t, err)
		assert.Len(t, server.Requests(), 2)
	})

	t.Run("reauthenticate requires current user", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		_, err := client.ReauthenticateUser(context.Background())
		assert.ErrorIs(t, err, usergrid.ErrNoCurrentUser)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Logout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantErr     bool
		wantCleared bool
	}{
		{
			name:        "accepted",
			statusCode:  http.StatusOK,
			body:        `{"action":"revoked user token"}`,
			wantCleared: true,
		},
		{
			name:        "token unknown to server",
			statusCode:  http.StatusUnauthorized,
			body:        `{"error":"auth_bad_access_token","error_description":"Unable to authenticate"}`,
			wantErr:     true,
			wantCleared: true,
		},
		{
			name:        "server failure keeps session",
			statusCode:  http.StatusInternalServerError,
			body:        `{"error":"internal_server_error"}`,
			wantErr:     true,
			wantCleared: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := loginServer(t, map[string]http.HandlerFunc{
				"/org/app/users/u-1/revoketoken": jsonHandler(testCase.statusCode, testCase.body),
			})
			client := newTestClient(t, server.URL, func(c *usergrid.Config) {
				c.AuthMode = usergrid.AuthModeUser
			})

			login(t, client)
			userAuth := client.UserAuth()

			_, err := client.LogoutCurrentUser(context.Background())
			if testCase.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			request := server.Last(t)
			assert.Equal(t, http.MethodPut, request.Method)
			assert.Equal(t, "user-token", request.Query.Get("token"))

			if testCase.wantCleared {
				assert.Nil(t, client.CurrentUser())
				assert.False(t, userAuth.IsValid())
			} else {
				assert.NotNil(t, client.CurrentUser())
				assert.True(t, userAuth.IsValid())
			}
		})
	}
}

func TestClient_LogoutOtherUser(t *testing.T) {
	t.Parallel()

	server := loginServer(t, map[string]http.HandlerFunc{
		"/org/app/users/bob/revoketokens": jsonHandler(http.StatusOK, `{}`),
	})
	client := newTestClient(t, server.URL)

	login(t, client)

	_, err := client.LogoutUserAllTokens(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "/org/app/users/bob/revoketokens", server.Last(t).Path)
	assert.NotNil(t, client.CurrentUser())
}

func TestClient_LogoutWithoutCurrentUser(t *testing.T) {
	t.Parallel()

	server := loginServer(t, nil)
	client := newTestClient(t, server.URL)

	resp, err := client.LogoutCurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, usergrid.IsValidation(err))
	assert.NotNil(t, resp)
	assert.Empty(t, server.Requests())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_AuthResolution(t *testing.T) {
	t.Parallel()

	t.Run("mode none sends no credential", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		login(t, client)

		_, err := client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Empty(t, server.Last(t).Header.Get("Authorization"))
	})

	t.Run("per-call override wins", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL, func(c *usergrid.Config) {
			c.AuthMode = usergrid.AuthModeApp
			c.AccessToken = "configured"
		})

		_, err := client.List(context.Background(), "pets", usergrid.TokenOverride("override"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer override", server.Last(t).Header.Get("Authorization"))

		_, err = client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Equal(t, "Bearer configured", server.Last(t).Header.Get("Authorization"))
	})

	t.Run("one-shot token is used once", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		client.UsingToken("temporary")

		_, err := client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Equal(t, "Bearer temporary", server.Last(t).Header.Get("Authorization"))

		_, err = client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Empty(t, server.Last(t).Header.Get("Authorization"))
	})

	t.Run("call headers are sent", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		_, err := client.List(context.Background(), "pets", usergrid.CallHeader("X-Trace", "abc"))
		require.NoError(t, err)
		assert.Equal(t, "abc", server.Last(t).Header.Get("X-Trace"))
	})

	t.Run("mode can change at runtime", func(t *testing.T) {
		t.Parallel()

		server := loginServer(t, nil)
		client := newTestClient(t, server.URL)

		login(t, client)
		client.SetAuthMode(usergrid.AuthModeUser)
		assert.Equal(t, usergrid.AuthModeUser, client.AuthMode())

		_, err := client.List(context.Background(), "pets")
		require.NoError(t, err)
		assert.Equal(t, "Bearer user-token", server.Last(t).Header.Get("Authorization"))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_UserOperations(t *testing.T) {
	t.Parallel()

	tests := []TestOperation{
		{
			Name: "reset password",
			Call: func(ctx context.Context, c *Client) (*usergrid.Response, error) {
				user := usergrid.NewUser()
				user.SetEmail("alice@example.com")

				return c.ResetPassword(ctx, user, "old", "new")
			},
			ExpectedMethod: http.MethodPut,
			ExpectedPath:   "/org/app/users/alice@example.com/password",
			ExpectedBody:   `{"oldpassword":"old","newpassword":"new"}`,
		},
		{
			Name: "reset password requires username or email",
			Call: func(ctx context.Context, c *Client) (*usergrid.Response, error) {
				return c.ResetPassword(ctx, usergrid.NewUser(), "old", "new")
			},
			WantValidation: true,
		},
		{
			Name: "logout user with token",
			Call: func(ctx context.Context, c *Client) (*usergrid.Response, error) {
				return c.LogoutUser(ctx, "alice", "tok")
			},
			ExpectedMethod: http.MethodPut,
			ExpectedPath:   "/org/app/users/alice/revoketoken",
			ExpectedQuery:  map[string]string{"token": "tok"},
		},
		{
			Name: "logout user requires identifier",
			Call: func(ctx context.Context, c *Client) (*usergrid.Response, error) {
				return c.LogoutUser(ctx, "", "tok")
			},
			WantValidation: true,
		},
		{
			Name: "create user",
			Call: func(ctx context.Context, c *Client) (*usergrid.Response, error) {
				user := usergrid.NewUser()
				user.SetUsername("carol")
				user.SetPassword("pw")

				return c.CreateUser(ctx, user)
			},
			ExpectedMethod: http.MethodPost,
			ExpectedPath:   "/org/app/users",
			ExpectedBody:   `{"type":"user","username":"carol","password":"pw"}`,
		},
	}

	RunOperationTests(t, tests)
}

func TestClient_CreateUserMergesResponse(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t, jsonHandler(http.StatusOK,
		`{"entities":[{"uuid":"u-9","type":"user","username":"carol","activated":true}]}`))
	client := newTestClient(t, server.URL)

	user := usergrid.NewUser()
	user.SetUsername("carol")

	_, err := client.CreateUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "u-9", user.UUID())
	assert.True(t, user.Activated())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_CheckAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		email         string
		username      string
		body          string
		wantAvailable bool
		wantQL        string
	}{
		{
			name:          "nobody matches",
			email:         "new@example.com",
			username:      "newbie",
			body:          `{"entities":[]}`,
			wantAvailable: true,
			wantQL:        "select * where email='new@example.com' or username='newbie'",
		},
		{
			name:          "username taken",
			username:      "alice",
			body:          `{"entities":[{"type":"user","username":"alice"}]}`,
			wantAvailable: false,
			wantQL:        "select * where username='alice'",
		},
		{
			name:          "email only",
			email:         "alice@example.com",
			body:          `{"entities":[{"type":"user","email":"alice@example.com"}]}`,
			wantAvailable: false,
			wantQL:        "select * where email='alice@example.com'",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := newAPIServer(t, jsonHandler(http.StatusOK, testCase.body))
			client := newTestClient(t, server.URL)

			available, err := client.CheckAvailable(context.Background(), testCase.email, testCase.username)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantAvailable, available)

			request := server.Last(t)
			assert.Equal(t, "/org/app/users", request.Path)
			assert.Equal(t, testCase.wantQL, request.Query.Get("ql"))
		})
	}

	t.Run("requires email or username", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "http://127.0.0.1:1")

		_, err := client.CheckAvailable(context.Background(), "", "")
		assert.ErrorIs(t, err, usergrid.ErrUsernameOrEmailNeeded)
	})
}

func TestClient_PersistsCredentials(t *testing.T) {
	t.Parallel()

	server := loginServer(t, map[string]http.HandlerFunc{
		"/org/app/users/alice/revoketoken": jsonHandler(http.StatusOK, `{}`),
	})
	credentials := store.NewMemoryStore()

	configure := func(c *usergrid.Config) {
		c.AuthMode = usergrid.AuthModeUser
		c.ClientID = "id"
		c.ClientSecret = "shh"
		c.CredentialStore = credentials
	}

	first := newTestClient(t, server.URL, configure)
	login(t, first)

	_, err := first.AuthenticateApp(context.Background(), nil)
	require.NoError(t, err)

	second := newTestClient(t, server.URL, configure)
	require.NotNil(t, second.CurrentUser())
	assert.Equal(t, "alice", second.CurrentUser().Username())
	assert.Equal(t, "user-token", second.UserAuth().AccessToken())
	assert.Equal(t, "app-token", second.AppAuth().AccessToken())

	_, err = second.LogoutCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-token", server.Last(t).Query.Get("token"))

	third := newTestClient(t, server.URL, configure)
	assert.Nil(t, third.CurrentUser())
}
