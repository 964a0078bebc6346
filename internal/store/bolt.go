package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	bolt "go.etcd.io/bbolt"
)

var credentialsBucket = []byte("credentials")

// BoltStore keeps credentials in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens the database at path, creating it if needed.
func OpenBoltStore(path string) (*BoltStore, error) {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, constants.ConfigFilePerm, &bolt.Options{Timeout: constants.StoreOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening credential db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(credentialsBucket)

		return err //nolint:wrapcheck
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating credentials bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save stores a credential.
func (s *BoltStore) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	data, err := usergrid.EncodeCredential(cred)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(credentialsBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("saving credential %s: %w", key, err)
	}

	return nil
}

// Load reads a credential.
func (s *BoltStore) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(credentialsBucket).Get([]byte(key))
		if value != nil {
			data = append([]byte(nil), value...)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading credential %s: %w", key, err)
	}

	if data == nil {
		return nil, usergrid.ErrCredentialNotFound
	}

	return usergrid.DecodeCredential(data) //nolint:wrapcheck
}

// Delete removes a credential.
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(credentialsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting credential %s: %w", key, err)
	}

	return nil
}

// Keys lists stored keys in byte order.
func (s *BoltStore) Keys() ([]string, error) {
	var keys []string

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(credentialsBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}

	return keys, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close() //nolint:wrapcheck
}
