// Package store provides CredentialStore backends: memory, bolt, file,
// NATS key-value and a no-op store, plus a read-through chain.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
)

// Type represents the type of store backend.
type Type string

const (
	// TypeMemory keeps credentials for the life of the process.
	TypeMemory Type = "memory"

	// TypeBolt stores credentials in a bbolt database.
	TypeBolt Type = "bolt"

	// TypeFile stores credentials in a YAML, TOML or JSON file.
	TypeFile Type = "file"

	// TypeNATS stores credentials in a NATS JetStream key-value bucket.
	TypeNATS Type = "nats"

	// TypeNone disables persistence.
	TypeNone Type = "none"
)

// Config configures a store backend.
type Config struct {
	Type Type

	// Path is the database or file path for bolt and file stores.
	Path string

	// Format overrides the file format inferred from Path's extension.
	Format Format

	NATS *NATSConfig
}

// Closer is implemented by stores holding an open resource.
type Closer interface {
	Close() error
}

// New creates a store from configuration. A nil config yields a memory store.
func New(config *Config) (usergrid.CredentialStore, error) {
	if config == nil {
		return NewMemoryStore(), nil
	}

	switch config.Type {
	case TypeMemory, "":
		return NewMemoryStore(), nil

	case TypeBolt:
		if config.Path == "" {
			return nil, constants.ErrBoltPathRequired
		}

		return OpenBoltStore(config.Path)

	case TypeFile:
		if config.Path == "" {
			return nil, constants.ErrFilePathRequired
		}

		return NewFileStore(config.Path, config.Format)

	case TypeNATS:
		if config.NATS == nil {
			return nil, constants.ErrNATSConfigRequired
		}

		return NewNATSStore(config.NATS)

	case TypeNone:
		return NewNoOpStore(), nil

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedStoreType, config.Type)
	}
}

// Close closes store if it holds a resource.
func Close(store usergrid.CredentialStore) error {
	if closer, ok := store.(Closer); ok {
		return closer.Close()
	}

	return nil
}

// NoOpStore persists nothing.
type NoOpStore struct{}

// NewNoOpStore creates a new no-op store.
func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

// Save does nothing.
func (s *NoOpStore) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	return nil
}

// Load always reports the credential as missing.
func (s *NoOpStore) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	return nil, fmt.Errorf("%w: %w", usergrid.ErrCredentialNotFound, constants.ErrStoreDisabled)
}

// Delete does nothing.
func (s *NoOpStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Builder helps build store configurations.
type Builder struct {
	config *Config
}

// NewBuilder creates a new store builder.
func NewBuilder() *Builder {
	return &Builder{config: &Config{Type: TypeMemory}}
}

// WithType sets the store type.
func (b *Builder) WithType(storeType Type) *Builder {
	b.config.Type = storeType

	return b
}

// WithPath sets the bolt or file path.
func (b *Builder) WithPath(path string) *Builder {
	b.config.Path = path

	return b
}

// WithFormat sets the file format.
func (b *Builder) WithFormat(format Format) *Builder {
	b.config.Format = format

	return b
}

// WithNATSConfig sets NATS configuration.
func (b *Builder) WithNATSConfig(config *NATSConfig) *Builder {
	b.config.NATS = config

	return b
}

// Build creates the store from the configuration.
func (b *Builder) Build() (usergrid.CredentialStore, error) {
	return New(b.config)
}

// Chain reads from the first store that has a key and writes to all of
// them. A hit in a later store is copied into the earlier ones.
type Chain struct {
	stores []usergrid.CredentialStore
}

// NewChain creates a new store chain.
func NewChain(stores ...usergrid.CredentialStore) *Chain {
	return &Chain{stores: stores}
}

// Load retrieves a credential from the chain.
func (c *Chain) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	for i, store := range c.stores {
		cred, err := store.Load(ctx, key)
		if err != nil {
			continue
		}

		for j := range i {
			_ = c.stores[j].Save(ctx, key, cred)
		}

		return cred, nil
	}

	return nil, usergrid.ErrCredentialNotFound
}

// Save stores a credential in all stores.
func (c *Chain) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Save(ctx, key, cred)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes a credential from all stores.
func (c *Chain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, store := range c.stores {
		err := store.Delete(ctx, key)
		if err != nil && !errors.Is(err, usergrid.ErrCredentialNotFound) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close closes every store that holds a resource.
func (c *Chain) Close() error {
	var errs []error

	for _, store := range c.stores {
		err := Close(store)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
