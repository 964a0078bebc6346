package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/usergrid-client/internal/auth"
	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// CurrentUser implements usergrid.UserClient.CurrentUser.
func (c *Client) CurrentUser() *usergrid.User {
	return c.auth.CurrentUser()
}

// AuthenticateApp implements usergrid.UserClient.AuthenticateApp. A nil
// appAuth re-mints the configured application credential. On success the
// credential becomes the client's app credential.
func (c *Client) AuthenticateApp(ctx context.Context, appAuth *usergrid.AppAuth) (*usergrid.Response, error) {
	if appAuth == nil {
		appAuth = c.auth.AppAuth()
	}

	if appAuth == nil {
		return invalid(nil, usergrid.ErrNoAppAuth)
	}

	resp := c.minter.Mint(ctx, appAuth)
	if resp.Error != nil || !resp.OK() {
		return result(resp)
	}

	c.auth.SetAppAuth(appAuth)
	c.persister.SaveApp(ctx, appAuth)
	c.debug("authenticated app", map[string]interface{}{"client_id": appAuth.ClientID})

	return resp, nil
}

// AuthenticateUser implements usergrid.UserClient.AuthenticateUser.
func (c *Client) AuthenticateUser(ctx context.Context, userAuth *usergrid.UserAuth, setAsCurrent bool) (*usergrid.Response, error) {
	if userAuth == nil {
		return invalid(nil, usergrid.ErrUsernameOrEmailNeeded)
	}

	resp, user := c.minter.MintUser(ctx, userAuth)
	if resp.Error != nil || !resp.OK() {
		return result(resp)
	}

	if setAsCurrent {
		c.auth.SetCurrentUser(user)
	}

	c.persister.SaveUser(ctx, userAuth, setAsCurrent)
	c.debug("authenticated user", map[string]interface{}{"username": userAuth.Username, "current": setAsCurrent})

	return resp, nil
}

// ReauthenticateUser implements usergrid.UserClient.ReauthenticateUser. It
// mints a new token for the current user with the stored password.
func (c *Client) ReauthenticateUser(ctx context.Context) (*usergrid.Response, error) {
	userAuth := c.auth.UserAuth()
	if userAuth == nil || userAuth.Password == "" {
		return invalid(nil, usergrid.ErrNoCurrentUser)
	}

	return c.AuthenticateUser(ctx, userAuth, true)
}

// LogoutCurrentUser implements usergrid.UserClient.LogoutCurrentUser.
func (c *Client) LogoutCurrentUser(ctx context.Context) (*usergrid.Response, error) {
	user := c.auth.CurrentUser()
	if user == nil || user.UUIDOrUsername() == "" || user.Auth == nil || !user.Auth.HasToken() {
		return invalid(nil, usergrid.ErrNoCurrentUser)
	}

	return c.LogoutUser(ctx, user.UUIDOrUsername(), user.Auth.AccessToken())
}

// LogoutUser implements usergrid.UserClient.LogoutUser. An empty token
// revokes every token of the user. When uuidOrUsername is the current
// user and the server accepted the logout, or no longer knows the token,
// the current user is cleared.
func (c *Client) LogoutUser(ctx context.Context, uuidOrUsername, token string) (*usergrid.Response, error) {
	reqOpts := []usergrid.RequestOption{usergrid.WithPaths(constants.UsersCollection, uuidOrUsername)}

	if token != "" {
		reqOpts = append(reqOpts, usergrid.WithPaths(constants.RevokeTokenPath), usergrid.WithParam("token", token))
	} else {
		reqOpts = append(reqOpts, usergrid.WithPaths(constants.RevokeTokensPath))
	}

	req := c.newRequest(http.MethodPut, reqOpts...)
	if uuidOrUsername == "" {
		return invalid(req, usergrid.ErrUUIDOrNameRequired)
	}

	resp := c.send(ctx, req, nil)

	if current := c.auth.CurrentUser(); isSameUser(current, uuidOrUsername) && auth.LogoutClearsUser(resp) {
		c.persister.ForgetUser(ctx, current.Username())
		c.auth.ClearCurrentUser()
		c.debug("logged out current user", map[string]interface{}{"user": uuidOrUsername})
	}

	return result(resp)
}

// LogoutUserAllTokens implements usergrid.UserClient.LogoutUserAllTokens.
func (c *Client) LogoutUserAllTokens(ctx context.Context, uuidOrUsername string) (*usergrid.Response, error) {
	return c.LogoutUser(ctx, uuidOrUsername, "")
}

// ResetPassword implements usergrid.UserClient.ResetPassword.
func (c *Client) ResetPassword(ctx context.Context, user *usergrid.User, oldPassword, newPassword string) (*usergrid.Response, error) {
	if user == nil || user.UsernameOrEmail() == "" {
		return invalid(nil, usergrid.ErrUsernameOrEmailNeeded)
	}

	req := c.newRequest(http.MethodPut,
		usergrid.WithPaths(constants.UsersCollection, user.UsernameOrEmail(), constants.PasswordPath),
		usergrid.WithJSONBody(map[string]string{
			"oldpassword": oldPassword,
			"newpassword": newPassword,
		}))

	return result(c.send(ctx, req, nil))
}

// CreateUser implements usergrid.UserClient.CreateUser. On success the
// user takes the server's properties.
func (c *Client) CreateUser(ctx context.Context, user *usergrid.User, opts ...usergrid.CallOption) (*usergrid.Response, error) {
	resp, err := c.Post(ctx, constants.UsersCollection, user.Properties(), opts...)
	mergeFirst(user, resp)

	return resp, err
}

// CheckAvailable implements usergrid.UserClient.CheckAvailable. It reports
// true when no user has the email or the username.
func (c *Client) CheckAvailable(ctx context.Context, email, username string) (bool, error) {
	if email == "" && username == "" {
		_, err := invalid(nil, usergrid.ErrUsernameOrEmailNeeded)

		return false, err
	}

	query := usergrid.NewQuery(constants.UsersCollection)

	if email != "" {
		query.Eq(usergrid.PropertyEmail, email)
	}

	if username != "" {
		if email != "" {
			query.Or()
		}

		query.Eq(usergrid.PropertyUsername, username)
	}

	resp, err := c.Query(ctx, query)
	if err != nil {
		return false, err
	}

	return resp.First() == nil, nil
}

func isSameUser(user *usergrid.User, uuidOrUsername string) bool {
	if user == nil || uuidOrUsername == "" {
		return false
	}

	return user.UUID() == uuidOrUsername || user.Username() == uuidOrUsername
}
