package client

import (
	"context"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// AuthMode implements usergrid.AuthClient.AuthMode.
func (c *Client) AuthMode() usergrid.AuthMode {
	return c.auth.Mode()
}

// SetAuthMode implements usergrid.AuthClient.SetAuthMode.
func (c *Client) SetAuthMode(mode usergrid.AuthMode) {
	c.auth.SetMode(mode)
}

// AppAuth implements usergrid.AuthClient.AppAuth.
func (c *Client) AppAuth() *usergrid.AppAuth {
	return c.auth.AppAuth()
}

// SetAppAuth implements usergrid.AuthClient.SetAppAuth. A valid credential
// is persisted.
func (c *Client) SetAppAuth(appAuth *usergrid.AppAuth) {
	c.auth.SetAppAuth(appAuth)

	if appAuth != nil && appAuth.IsValid() {
		c.persister.SaveApp(context.Background(), appAuth)
	}
}

// UserAuth implements usergrid.AuthClient.UserAuth.
func (c *Client) UserAuth() *usergrid.UserAuth {
	return c.auth.UserAuth()
}

// UsingAuth implements usergrid.AuthClient.UsingAuth.
func (c *Client) UsingAuth(auth *usergrid.Auth) {
	c.auth.UsingAuth(auth)
}

// UsingToken implements usergrid.AuthClient.UsingToken.
func (c *Client) UsingToken(token string) {
	c.auth.UsingToken(token)
}

// AuthForRequests implements usergrid.AuthClient.AuthForRequests. Calling
// it consumes a pending one-shot credential.
func (c *Client) AuthForRequests() *usergrid.Auth {
	return c.auth.AuthForRequests()
}
