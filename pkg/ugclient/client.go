package ugclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fivetwenty-io/usergrid-client/internal/client"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Static errors for err113 compliance.
var (
	ErrNoDefaultClient = errors.New("no default client configured")
)

// New creates a Usergrid client for {BaseURL}/{OrgID}/{AppID}.
//
// When config carries a username and password in user mode, or a client
// ID and secret in app mode, New logs in before returning unless a valid
// token was configured or restored from config.CredentialStore.
func New(ctx context.Context, config *usergrid.Config) (usergrid.Client, error) {
	if config == nil {
		return nil, usergrid.ErrConfigRequired
	}

	normalized := *config
	normalized.BaseURL = normalizeBaseURL(config.BaseURL)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	err = authenticate(ctx, c, &normalized)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// normalizeBaseURL trims a trailing slash and defaults the scheme to https.
func normalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}

	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

func authenticate(ctx context.Context, c *client.Client, config *usergrid.Config) error {
	switch config.AuthMode {
	case usergrid.AuthModeUser:
		if config.Username == "" || config.Password == "" {
			return nil
		}

		if userAuth := c.UserAuth(); userAuth != nil && userAuth.IsValid() {
			return nil
		}

		_, err := c.AuthenticateUser(ctx, usergrid.NewUserAuth(config.Username, config.Password), true)
		if err != nil {
			return fmt.Errorf("authenticating user %s: %w", config.Username, err)
		}
	case usergrid.AuthModeApp:
		if config.ClientID == "" || config.ClientSecret == "" {
			return nil
		}

		if appAuth := c.AppAuth(); appAuth != nil && appAuth.IsValid() {
			return nil
		}

		_, err := c.AuthenticateApp(ctx, nil)
		if err != nil {
			return fmt.Errorf("authenticating app: %w", err)
		}
	case usergrid.AuthModeNone:
	}

	return nil
}

// NewWithToken creates a client that sends token as the current user's credential.
func NewWithToken(ctx context.Context, baseURL, orgID, appID, token string) (usergrid.Client, error) {
	return New(ctx, &usergrid.Config{
		BaseURL:     baseURL,
		OrgID:       orgID,
		AppID:       appID,
		AuthMode:    usergrid.AuthModeUser,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a client authenticated as the application.
func NewWithClientCredentials(ctx context.Context, baseURL, orgID, appID, clientID, clientSecret string) (usergrid.Client, error) {
	return New(ctx, &usergrid.Config{
		BaseURL:      baseURL,
		OrgID:        orgID,
		AppID:        appID,
		AuthMode:     usergrid.AuthModeApp,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a client logged in as username.
func NewWithPassword(ctx context.Context, baseURL, orgID, appID, username, password string) (usergrid.Client, error) {
	return New(ctx, &usergrid.Config{
		BaseURL:  baseURL,
		OrgID:    orgID,
		AppID:    appID,
		AuthMode: usergrid.AuthModeUser,
		Username: username,
		Password: password,
	})
}

// Close releases the credential store held by config, if any.
func Close(config *usergrid.Config) error {
	if config == nil || config.CredentialStore == nil {
		return nil
	}

	err := store.Close(config.CredentialStore)
	if err != nil {
		return fmt.Errorf("closing credential store: %w", err)
	}

	return nil
}

var (
	defaultMu     sync.RWMutex
	defaultClient usergrid.Client
)

// SetDefault installs the process-wide client returned by Default. It is
// meant for application entry points; library code should take a
// usergrid.Client argument instead.
func SetDefault(c usergrid.Client) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultClient = c
}

// Default returns the client installed with SetDefault.
func Default() (usergrid.Client, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	if defaultClient == nil {
		return nil, ErrNoDefaultClient
	}

	return defaultClient, nil
}
