package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Persister saves minted tokens to a CredentialStore and restores them on
// startup. Keys are scoped to one application.
type Persister struct {
	store  usergrid.CredentialStore
	scope  string
	logger usergrid.Logger
}

// NewPersister creates a persister for {org}/{app}. A nil store disables it.
func NewPersister(store usergrid.CredentialStore, orgID, appID string, logger usergrid.Logger) *Persister {
	return &Persister{
		store:  store,
		scope:  orgID + "/" + appID,
		logger: logger,
	}
}

// Enabled reports whether a store is configured.
func (p *Persister) Enabled() bool {
	return p != nil && p.store != nil
}

// AppKey returns the store key for an application credential.
func (p *Persister) AppKey(clientID string) string {
	return p.scope + "/app/" + clientID
}

// UserKey returns the store key for a user credential.
func (p *Persister) UserKey(username string) string {
	return p.scope + "/user/" + username
}

// CurrentUserKey returns the key naming the logged-in user.
func (p *Persister) CurrentUserKey() string {
	return p.scope + "/current-user"
}

// DeviceKey returns the key of the device registered for push notifications.
func (p *Persister) DeviceKey() string {
	return p.scope + "/device"
}

// SaveApp persists an application token. Failures are logged, not returned.
func (p *Persister) SaveApp(ctx context.Context, auth *usergrid.AppAuth) {
	if !p.Enabled() || auth == nil {
		return
	}

	p.save(ctx, p.AppKey(auth.ClientID), usergrid.StoreAppAuth(auth))
}

// SaveUser persists a user token and, when current is set, records the
// user as logged in.
func (p *Persister) SaveUser(ctx context.Context, auth *usergrid.UserAuth, current bool) {
	if !p.Enabled() || auth == nil {
		return
	}

	p.save(ctx, p.UserKey(auth.Username), usergrid.StoreUserAuth(auth))

	if current {
		p.save(ctx, p.CurrentUserKey(), &usergrid.StoredCredential{
			Version: usergrid.CredentialVersion,
			Kind:    usergrid.CredentialKindUser,
			Subject: auth.Username,
		})
	}
}

// RestoreApp loads a saved token into auth. It reports whether a valid
// token was restored.
func (p *Persister) RestoreApp(ctx context.Context, auth *usergrid.AppAuth) (bool, error) {
	if !p.Enabled() || auth == nil {
		return false, nil
	}

	return p.restore(ctx, p.AppKey(auth.ClientID), auth.Auth)
}

// RestoreUser loads a saved token into auth.
func (p *Persister) RestoreUser(ctx context.Context, auth *usergrid.UserAuth) (bool, error) {
	if !p.Enabled() || auth == nil {
		return false, nil
	}

	return p.restore(ctx, p.UserKey(auth.Username), auth.Auth)
}

// CurrentUsername returns the username recorded by SaveUser, or "".
func (p *Persister) CurrentUsername(ctx context.Context) (string, error) {
	if !p.Enabled() {
		return "", nil
	}

	cred, err := p.store.Load(ctx, p.CurrentUserKey())
	if errors.Is(err, usergrid.ErrCredentialNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to load current user: %w", err)
	}

	return cred.Subject, nil
}

// SaveDevice records the device push tokens were last applied to.
func (p *Persister) SaveDevice(ctx context.Context, device *usergrid.Device) {
	if !p.Enabled() || device == nil || device.UUID() == "" {
		return
	}

	p.save(ctx, p.DeviceKey(), usergrid.StoreDevice(device))
}

// DeviceID returns the identifier recorded by SaveDevice, or "".
func (p *Persister) DeviceID(ctx context.Context) (string, error) {
	if !p.Enabled() {
		return "", nil
	}

	cred, err := p.store.Load(ctx, p.DeviceKey())
	if errors.Is(err, usergrid.ErrCredentialNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to load device: %w", err)
	}

	return cred.Subject, nil
}

// ForgetUser removes a user's token and, if it is the logged-in user, the
// logged-in marker.
func (p *Persister) ForgetUser(ctx context.Context, username string) {
	if !p.Enabled() || username == "" {
		return
	}

	p.delete(ctx, p.UserKey(username))

	current, err := p.CurrentUsername(ctx)
	if err == nil && current == username {
		p.delete(ctx, p.CurrentUserKey())
	}
}

func (p *Persister) restore(ctx context.Context, key string, auth *usergrid.Auth) (bool, error) {
	cred, err := p.store.Load(ctx, key)
	if errors.Is(err, usergrid.ErrCredentialNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to restore credential %s: %w", key, err)
	}

	restored := cred.Auth()
	if !restored.IsValid() {
		return false, nil
	}

	cred.RestoreInto(auth)

	return true, nil
}

func (p *Persister) save(ctx context.Context, key string, cred *usergrid.StoredCredential) {
	err := p.store.Save(ctx, key, cred)
	if err != nil {
		p.warn("failed to persist credential", key, err)
	}
}

func (p *Persister) delete(ctx context.Context, key string) {
	err := p.store.Delete(ctx, key)
	if err != nil && !errors.Is(err, usergrid.ErrCredentialNotFound) {
		p.warn("failed to delete credential", key, err)
	}
}

func (p *Persister) warn(msg, key string, err error) {
	if p.logger == nil {
		return
	}

	p.logger.Warn(msg, map[string]interface{}{"key": key, "error": err.Error()})
}
