package usergrid

import (
	"sync"
	"time"
)

// AuthMode selects which credential is attached to outgoing requests.
type AuthMode int

// Auth modes.
const (
	AuthModeNone AuthMode = iota
	AuthModeUser
	AuthModeApp
)

// String returns the mode name.
func (m AuthMode) String() string {
	switch m {
	case AuthModeUser:
		return "user"
	case AuthModeApp:
		return "app"
	default:
		return "none"
	}
}

// ParseAuthMode converts a name to an AuthMode, defaulting to AuthModeNone.
func ParseAuthMode(s string) AuthMode {
	switch s {
	case "user":
		return AuthModeUser
	case "app", "application":
		return AuthModeApp
	default:
		return AuthModeNone
	}
}

// Auth holds an access token and its expiry.
//
// A token with no known expiry is valid only if it was handed to the
// credential directly; a credential that has never been given a token
// stays expired until a real expiry is learned.
type Auth struct {
	mu            sync.RWMutex
	accessToken   string
	expiry        time.Time
	explicitlySet bool
}

// NewAuth returns a credential that uses token until it is destroyed.
func NewAuth(token string) *Auth {
	return &Auth{accessToken: token, explicitlySet: true}
}

// NewAuthWithExpiry returns a credential that uses token until expiry.
func NewAuthWithExpiry(token string, expiry time.Time) *Auth {
	return &Auth{accessToken: token, expiry: expiry, explicitlySet: true}
}

// AccessToken returns the current token.
func (a *Auth) AccessToken() string {
	if a == nil {
		return ""
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.accessToken
}

// Expiry returns the token expiry, or the zero time when unknown.
func (a *Auth) Expiry() time.Time {
	if a == nil {
		return time.Time{}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.expiry
}

// Snapshot returns token and expiry read under a single lock.
func (a *Auth) Snapshot() (string, time.Time) {
	if a == nil {
		return "", time.Time{}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.accessToken, a.expiry
}

// HasToken reports whether a token is present.
func (a *Auth) HasToken() bool {
	return a.AccessToken() != ""
}

// IsExpired reports whether the credential is unusable because of time.
func (a *Auth) IsExpired() bool {
	if a == nil {
		return true
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.isExpiredLocked(time.Now())
}

// IsValid reports whether the credential has a token that has not expired.
func (a *Auth) IsValid() bool {
	if a == nil {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.accessToken != "" && !a.isExpiredLocked(time.Now())
}

// validToken returns the token and whether it is valid, read under one lock.
func (a *Auth) validToken() (string, bool) {
	if a == nil {
		return "", false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.accessToken, a.accessToken != "" && !a.isExpiredLocked(time.Now())
}

// Update replaces token and expiry together, as minted by the token
// endpoint. It does not mark the token as explicitly set, so a minted
// token without an expiry is not valid.
func (a *Auth) Update(token string, expiry time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.accessToken = token
	a.expiry = expiry
}

// ExplicitlySet reports whether the token was handed to the credential directly.
func (a *Auth) ExplicitlySet() bool {
	if a == nil {
		return false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.explicitlySet
}

func (a *Auth) restore(token string, expiry time.Time, explicitlySet bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.accessToken = token
	a.expiry = expiry
	a.explicitlySet = explicitlySet
}

// Destroy clears the token so the credential is no longer valid.
func (a *Auth) Destroy() {
	if a == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.accessToken = ""
	a.expiry = time.Time{}
	a.explicitlySet = false
}

func (a *Auth) isExpiredLocked(now time.Time) bool {
	if !a.expiry.IsZero() {
		return a.expiry.Before(now)
	}

	return !a.explicitlySet
}

// AppAuth is an application credential minted with client_credentials.
type AppAuth struct {
	*Auth

	ClientID     string
	ClientSecret string
}

// NewAppAuth returns an application credential with no token yet.
func NewAppAuth(clientID, clientSecret string) *AppAuth {
	return &AppAuth{Auth: &Auth{}, ClientID: clientID, ClientSecret: clientSecret}
}

// CredentialsJSON returns the token request body.
func (a *AppAuth) CredentialsJSON() map[string]string {
	return map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     a.ClientID,
		"client_secret": a.ClientSecret,
	}
}

// UserAuth is a user credential minted with the password grant.
type UserAuth struct {
	*Auth

	Username string
	Password string
}

// NewUserAuth returns a user credential with no token yet.
func NewUserAuth(username, password string) *UserAuth {
	return &UserAuth{Auth: &Auth{}, Username: username, Password: password}
}

// CredentialsJSON returns the token request body.
func (a *UserAuth) CredentialsJSON() map[string]string {
	return map[string]string{
		"grant_type": "password",
		"username":   a.Username,
		"password":   a.Password,
	}
}

// Credentials is implemented by credentials that can be exchanged for a token.
type Credentials interface {
	CredentialsJSON() map[string]string
	Update(token string, expiry time.Time)
	IsValid() bool
}
