// Package auth resolves, mints and persists Usergrid credentials.
package auth

import (
	"sync"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Context decides which credential each request carries.
//
// Resolution order: a one-shot override installed with UsingAuth or
// UsingToken, then the credential selected by the mode. Credentials that
// are not valid at resolution time are skipped.
type Context struct {
	mu          sync.Mutex
	mode        usergrid.AuthMode
	appAuth     *usergrid.AppAuth
	currentUser *usergrid.User
	oneShot     *usergrid.Auth
}

// NewContext creates a context.
func NewContext(mode usergrid.AuthMode, appAuth *usergrid.AppAuth) *Context {
	return &Context{mode: mode, appAuth: appAuth}
}

// Mode returns the auth mode.
func (c *Context) Mode() usergrid.AuthMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// SetMode sets the auth mode.
func (c *Context) SetMode(mode usergrid.AuthMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
}

// AppAuth returns the application credential.
func (c *Context) AppAuth() *usergrid.AppAuth {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.appAuth
}

// SetAppAuth replaces the application credential.
func (c *Context) SetAppAuth(auth *usergrid.AppAuth) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.appAuth = auth
}

// CurrentUser returns the logged-in user, or nil.
func (c *Context) CurrentUser() *usergrid.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.currentUser
}

// SetCurrentUser replaces the logged-in user.
func (c *Context) SetCurrentUser(user *usergrid.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentUser = user
}

// ClearCurrentUser forgets the logged-in user and destroys its token.
func (c *Context) ClearCurrentUser() {
	c.mu.Lock()
	user := c.currentUser
	c.currentUser = nil
	c.mu.Unlock()

	if user != nil && user.Auth != nil {
		user.Auth.Destroy()
	}
}

// UserAuth returns the current user's credential, or nil.
func (c *Context) UserAuth() *usergrid.UserAuth {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentUser == nil {
		return nil
	}

	return c.currentUser.Auth
}

// UsingAuth makes the next resolution return auth, once.
func (c *Context) UsingAuth(auth *usergrid.Auth) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.oneShot = auth
}

// UsingToken makes the next resolution use token, once.
func (c *Context) UsingToken(token string) {
	c.UsingAuth(usergrid.NewAuth(token))
}

// AuthForRequests returns the credential for the next request, or nil.
// A pending one-shot override is consumed and, when it is no longer valid,
// the request goes out without a credential.
func (c *Context) AuthForRequests() *usergrid.Auth {
	c.mu.Lock()
	defer c.mu.Unlock()

	oneShot := c.oneShot
	c.oneShot = nil

	if oneShot != nil {
		if oneShot.IsValid() {
			return oneShot
		}

		return nil
	}

	return c.modeAuthLocked()
}

// Resolve prefers a per-call override and falls back to AuthForRequests
// when there is none. An invalid override resolves to nil.
func (c *Context) Resolve(override *usergrid.Auth) *usergrid.Auth {
	if override != nil {
		if override.IsValid() {
			return override
		}

		return nil
	}

	return c.AuthForRequests()
}

func (c *Context) modeAuthLocked() *usergrid.Auth {
	var auth *usergrid.Auth

	switch c.mode {
	case usergrid.AuthModeUser:
		if c.currentUser != nil && c.currentUser.Auth != nil {
			auth = c.currentUser.Auth.Auth
		}
	case usergrid.AuthModeApp:
		if c.appAuth != nil {
			auth = c.appAuth.Auth
		}
	case usergrid.AuthModeNone:
	}

	if !auth.IsValid() {
		return nil
	}

	return auth
}

// LogoutClearsUser reports whether a logout response ends the local
// session: the server accepted the logout, or it no longer knows the token.
func LogoutClearsUser(resp *usergrid.Response) bool {
	if resp == nil {
		return false
	}

	return resp.OK() || usergrid.IsBadAccessToken(resp.Err())
}
