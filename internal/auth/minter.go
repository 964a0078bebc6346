package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/tidwall/gjson"
)

// Executor sends a request synchronously.
type Executor interface {
	Do(ctx context.Context, req *usergrid.Request) *usergrid.RawResponse
}

// Minter exchanges credentials for access tokens at {org}/{app}/token.
type Minter struct {
	executor     Executor
	clientAppURL string
	registry     *usergrid.Registry
	now          func() time.Time
}

// NewMinter creates a minter for the application at clientAppURL.
func NewMinter(executor Executor, clientAppURL string, registry *usergrid.Registry) *Minter {
	if registry == nil {
		registry = usergrid.DefaultRegistry
	}

	return &Minter{
		executor:     executor,
		clientAppURL: clientAppURL,
		registry:     registry,
		now:          time.Now,
	}
}

// TokenRequest builds the unauthenticated token request for creds.
func (m *Minter) TokenRequest(creds usergrid.Credentials) *usergrid.Request {
	return usergrid.NewRequest(http.MethodPost, m.clientAppURL,
		usergrid.WithPaths(constants.TokenPath),
		usergrid.WithJSONBody(creds.CredentialsJSON()))
}

// Mint sends the token request and, on success, stores the token and its
// expiry in creds.
func (m *Minter) Mint(ctx context.Context, creds usergrid.Credentials) *usergrid.Response {
	req := m.TokenRequest(creds)
	resp := m.registry.ParseResponse(m.executor.Do(ctx, req), req)

	if resp.Error != nil || !resp.OK() {
		return resp
	}

	token := resp.Get("access_token").String()
	if token == "" {
		resp.Error = usergrid.NewParseError(resp.StatusCode, nil)

		return resp
	}

	creds.Update(token, TokenExpiry(resp.Get("expires_in"), m.now()))

	return resp
}

// MintUser mints a token for auth and returns the user from the token
// response with auth attached.
func (m *Minter) MintUser(ctx context.Context, auth *usergrid.UserAuth) (*usergrid.Response, *usergrid.User) {
	resp := m.Mint(ctx, auth)
	if resp.Error != nil || !resp.OK() {
		return resp, nil
	}

	user := m.userFromToken(resp.Get("user"))
	user.Auth = auth

	return resp, user
}

func (m *Minter) userFromToken(result gjson.Result) *usergrid.User {
	props, ok := result.Value().(map[string]interface{})
	if !ok {
		props = make(map[string]interface{})
	}

	if _, hasType := props[usergrid.PropertyType]; !hasType {
		props[usergrid.PropertyType] = usergrid.UserEntityType
	}

	if user, isUser := m.registry.FromProperties(props).(*usergrid.User); isUser {
		return user
	}

	return &usergrid.User{BaseEntity: usergrid.NewEntityFromProperties(props)}
}

// TokenExpiry converts expires_in seconds into an absolute expiry, less
// the safety margin. A missing or non-positive value yields no expiry.
func TokenExpiry(expiresIn gjson.Result, now time.Time) time.Time {
	seconds := expiresIn.Int()
	if seconds <= 0 {
		return time.Time{}
	}

	return now.Add(time.Duration(seconds)*time.Second - constants.TokenExpirySafetyMargin)
}
