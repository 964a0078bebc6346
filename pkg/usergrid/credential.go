package usergrid

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CredentialVersion is the current StoredCredential format.
const CredentialVersion = 1

// CredentialKind identifies what a stored credential belongs to.
type CredentialKind string

// Credential kinds.
const (
	CredentialKindApp    CredentialKind = "app"
	CredentialKindUser   CredentialKind = "user"
	CredentialKindDevice CredentialKind = "device"
)

// StoredCredential is the persisted form of a credential. Client secrets
// and passwords are never stored.
type StoredCredential struct {
	Version       int            `json:"version"                  yaml:"version"                  toml:"version"`
	Kind          CredentialKind `json:"kind"                     yaml:"kind"                     toml:"kind"`
	Subject       string         `json:"subject,omitempty"        yaml:"subject,omitempty"        toml:"subject,omitempty"`
	AccessToken   string         `json:"access_token,omitempty"   yaml:"access_token,omitempty"   toml:"access_token,omitempty"`
	Expiry        time.Time      `json:"expiry,omitzero"          yaml:"expiry,omitempty"         toml:"expiry,omitempty"`
	ExplicitlySet bool           `json:"explicitly_set,omitempty" yaml:"explicitly_set,omitempty" toml:"explicitly_set,omitempty"`
}

// CredentialStore persists credentials by key. Load returns
// ErrCredentialNotFound for unknown keys.
type CredentialStore interface {
	Save(ctx context.Context, key string, cred *StoredCredential) error
	Load(ctx context.Context, key string) (*StoredCredential, error)
	Delete(ctx context.Context, key string) error
}

// NewStoredCredential captures the current state of auth.
func NewStoredCredential(kind CredentialKind, subject string, auth *Auth) *StoredCredential {
	token, expiry := auth.Snapshot()

	return &StoredCredential{
		Version:       CredentialVersion,
		Kind:          kind,
		Subject:       subject,
		AccessToken:   token,
		Expiry:        expiry,
		ExplicitlySet: auth.ExplicitlySet(),
	}
}

// StoreAppAuth captures an application credential.
func StoreAppAuth(auth *AppAuth) *StoredCredential {
	return NewStoredCredential(CredentialKindApp, auth.ClientID, auth.Auth)
}

// StoreUserAuth captures a user credential.
func StoreUserAuth(auth *UserAuth) *StoredCredential {
	return NewStoredCredential(CredentialKindUser, auth.Username, auth.Auth)
}

// StoreDevice captures a device identity. Devices carry no token.
func StoreDevice(device *Device) *StoredCredential {
	return &StoredCredential{
		Version: CredentialVersion,
		Kind:    CredentialKindDevice,
		Subject: device.UUID(),
	}
}

// Auth rebuilds a credential with the stored validity rules.
func (s *StoredCredential) Auth() *Auth {
	auth := &Auth{}
	auth.restore(s.AccessToken, s.Expiry, s.ExplicitlySet)

	return auth
}

// RestoreInto copies the stored token state into auth.
func (s *StoredCredential) RestoreInto(auth *Auth) {
	auth.restore(s.AccessToken, s.Expiry, s.ExplicitlySet)
}

// Validate checks the stored version.
func (s *StoredCredential) Validate() error {
	if s.Version != CredentialVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}

	return nil
}

// EncodeCredential serializes a stored credential.
func EncodeCredential(cred *StoredCredential) ([]byte, error) {
	if cred == nil {
		return nil, ErrNilCredential
	}

	if cred.Version == 0 {
		cred.Version = CredentialVersion
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}

	return data, nil
}

// DecodeCredential parses and validates a serialized credential.
func DecodeCredential(data []byte) (*StoredCredential, error) {
	cred := &StoredCredential{}

	err := json.Unmarshal(data, cred)
	if err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}

	err = cred.Validate()
	if err != nil {
		return nil, err
	}

	return cred, nil
}
