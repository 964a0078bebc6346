package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/usergrid-client/internal/client"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("validates config", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			config  *usergrid.Config
			wantErr error
		}{
			{"nil config", nil, usergrid.ErrConfigRequired},
			{"missing org", &usergrid.Config{AppID: "app"}, usergrid.ErrOrgIDRequired},
			{"missing app", &usergrid.Config{OrgID: "org"}, usergrid.ErrAppIDRequired},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				client, err := New(context.Background(), tt.config)
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
			})
		}
	})

	t.Run("builds the application URL", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &usergrid.Config{OrgID: "org", AppID: "app"})
		require.NoError(t, err)
		assert.Equal(t, usergrid.DefaultBaseURL+"/org/app", client.ClientAppURL())
		assert.Equal(t, usergrid.AuthModeNone, client.AuthMode())

		client, err = New(context.Background(), &usergrid.Config{
			OrgID:   "org",
			AppID:   "app",
			BaseURL: "http://localhost:8080/",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/org/app", client.ClientAppURL())
	})

	t.Run("installs an app token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &usergrid.Config{
			OrgID:       "org",
			AppID:       "app",
			AuthMode:    usergrid.AuthModeApp,
			ClientID:    "id",
			AccessToken: "app-token",
		})
		require.NoError(t, err)
		require.NotNil(t, client.AppAuth())
		assert.True(t, client.AppAuth().IsValid())
		assert.Equal(t, "id", client.AppAuth().ClientID)
		assert.Equal(t, "app-token", client.AuthForRequests().AccessToken())
	})

	t.Run("installs a user token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &usergrid.Config{
			OrgID:       "org",
			AppID:       "app",
			AuthMode:    usergrid.AuthModeUser,
			Username:    "alice",
			AccessToken: "user-token",
		})
		require.NoError(t, err)
		require.NotNil(t, client.CurrentUser())
		assert.Equal(t, "alice", client.CurrentUser().Username())
		assert.Equal(t, "user-token", client.UserAuth().AccessToken())
	})

	t.Run("ignores a token in mode none", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &usergrid.Config{
			OrgID:       "org",
			AppID:       "app",
			AuthMode:    usergrid.AuthModeNone,
			AccessToken: "token",
		})
		require.NoError(t, err)
		assert.Nil(t, client.AuthForRequests())
		assert.Nil(t, client.CurrentUser())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew_RestoresCredentials(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	t.Run("restores app and current user", func(t *testing.T) {
		t.Parallel()

		credentials := store.NewMemoryStore()
		require.NoError(t, credentials.Save(ctx, "org/app/app/id",
			usergrid.NewStoredCredential(usergrid.CredentialKindApp, "id", usergrid.NewAuthWithExpiry("app-token", future))))
		require.NoError(t, credentials.Save(ctx, "org/app/user/alice",
			usergrid.NewStoredCredential(usergrid.CredentialKindUser, "alice", usergrid.NewAuthWithExpiry("user-token", future))))
		require.NoError(t, credentials.Save(ctx, "org/app/current-user", &usergrid.StoredCredential{
			Version: usergrid.CredentialVersion,
			Kind:    usergrid.CredentialKindUser,
			Subject: "alice",
		}))

		client, err := New(ctx, &usergrid.Config{
			OrgID:           "org",
			AppID:           "app",
			AuthMode:        usergrid.AuthModeUser,
			ClientID:        "id",
			ClientSecret:    "secret",
			CredentialStore: credentials,
		})
		require.NoError(t, err)

		assert.Equal(t, "app-token", client.AppAuth().AccessToken())
		assert.True(t, client.AppAuth().IsValid())
		require.NotNil(t, client.CurrentUser())
		assert.Equal(t, "alice", client.CurrentUser().Username())
		assert.Equal(t, "user-token", client.AuthForRequests().AccessToken())
	})

	t.Run("skips expired tokens", func(t *testing.T) {
		t.Parallel()

		credentials := store.NewMemoryStore()
		require.NoError(t, credentials.Save(ctx, "org/app/user/alice",
			usergrid.NewStoredCredential(usergrid.CredentialKindUser, "alice",
				usergrid.NewAuthWithExpiry("stale", time.Now().Add(-time.Minute)))))

		client, err := New(ctx, &usergrid.Config{
			OrgID:           "org",
			AppID:           "app",
			Username:        "alice",
			CredentialStore: credentials,
		})
		require.NoError(t, err)
		assert.Nil(t, client.CurrentUser())
		assert.Nil(t, client.AuthForRequests())
	})

	t.Run("configured token wins over the store", func(t *testing.T) {
		t.Parallel()

		credentials := store.NewMemoryStore()
		require.NoError(t, credentials.Save(ctx, "org/app/user/alice",
			usergrid.NewStoredCredential(usergrid.CredentialKindUser, "alice", usergrid.NewAuthWithExpiry("stored", future))))

		client, err := New(ctx, &usergrid.Config{
			OrgID:           "org",
			AppID:           "app",
			AuthMode:        usergrid.AuthModeUser,
			Username:        "alice",
			AccessToken:     "configured",
			CredentialStore: credentials,
		})
		require.NoError(t, err)
		assert.Equal(t, "configured", client.UserAuth().AccessToken())
	})
}

func TestClient_Do(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t, jsonHandler(http.StatusOK, petResponse))
	client := newTestClient(t, server.URL, func(c *usergrid.Config) {
		c.AuthMode = usergrid.AuthModeApp
		c.AccessToken = "app-token"
	})

	t.Run("resolves auth when the request has none", func(t *testing.T) {
		resp, err := client.Do(context.Background(), usergrid.NewRequest(http.MethodGet, client.ClientAppURL(),
			usergrid.WithPaths("pets", "fido")))
		require.NoError(t, err)
		assert.Equal(t, "fido", resp.First().Name())
		assert.Equal(t, "Bearer app-token", server.Last(t).Header.Get("Authorization"))
	})

	t.Run("keeps the credential on the request", func(t *testing.T) {
		_, err := client.Do(context.Background(), usergrid.NewRequest(http.MethodGet, client.ClientAppURL(),
			usergrid.WithPaths("pets"), usergrid.WithAuth(usergrid.NewAuth("own-token"))))
		require.NoError(t, err)
		assert.Equal(t, "Bearer own-token", server.Last(t).Header.Get("Authorization"))
	})
}

func TestClient_SendAgainstServer(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t, jsonHandler(http.StatusOK, petResponse))
	client := newTestClient(t, server.URL)

	done := make(chan *usergrid.Response, 1)

	client.Send(context.Background(),
		usergrid.NewRequest(http.MethodGet, client.ClientAppURL(), usergrid.WithPaths("pets", "fido")),
		func(resp *usergrid.Response) { done <- resp })

	select {
	case resp := <-done:
		require.NoError(t, resp.Err())
		assert.Equal(t, "fido", resp.First().Name())
	case <-time.After(5 * time.Second):
		t.Fatal("completion was not called")
	}
}

func TestClient_Invalidate(t *testing.T) {
	t.Parallel()

	server := newAPIServer(t, jsonHandler(http.StatusOK, petResponse))
	client := newTestClient(t, server.URL)

	client.Invalidate()

	resp, err := client.Get(context.Background(), "pets", "fido")
	require.Error(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, usergrid.ErrorKindTransport, resp.Error.Kind)
	assert.Empty(t, server.Requests())
}
