package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/nats-io/nats.go"
)

const defaultNATSBucket = "usergrid_credentials"

// NATSConfig configures the NATS key-value store.
type NATSConfig struct {
	// URL of the NATS server. Defaults to nats.DefaultURL.
	URL string

	// Bucket name. Created if it does not exist.
	Bucket string

	// TTL expires entries after this long. Zero keeps them.
	TTL time.Duration

	// Conn reuses an existing connection instead of dialing URL.
	Conn *nats.Conn
}

// NATSStore keeps credentials in a JetStream key-value bucket so that
// several processes can share a login.
type NATSStore struct {
	conn   *nats.Conn
	kv     nats.KeyValue
	owned  bool
	bucket string
}

// NewNATSStore connects and opens or creates the bucket.
func NewNATSStore(config *NATSConfig) (*NATSStore, error) {
	conn := config.Conn
	owned := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("usergrid-client"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		owned = true
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = defaultNATSBucket
	}

	kv, err := openBucket(conn, bucket, config.TTL)
	if err != nil {
		if owned {
			conn.Close()
		}

		return nil, err
	}

	return &NATSStore{conn: conn, kv: kv, owned: owned, bucket: bucket}, nil
}

func openBucket(conn *nats.Conn, bucket string, ttl time.Duration) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if err == nil {
		return kv, nil
	}

	if !errors.Is(err, nats.ErrBucketNotFound) {
		return nil, fmt.Errorf("opening bucket %s: %w", bucket, err)
	}

	kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      bucket,
		Description: "Usergrid client credentials",
		TTL:         ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	return kv, nil
}

// kvKey maps an arbitrary key onto the key-value key alphabet.
func kvKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Save stores a credential.
func (s *NATSStore) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	data, err := usergrid.EncodeCredential(cred)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = s.kv.Put(kvKey(key), data)
	if err != nil {
		return fmt.Errorf("saving credential %s: %w", key, err)
	}

	return nil
}

// Load reads a credential.
func (s *NATSStore) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	entry, err := s.kv.Get(kvKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, usergrid.ErrCredentialNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("reading credential %s: %w", key, err)
	}

	return usergrid.DecodeCredential(entry.Value()) //nolint:wrapcheck
}

// Delete removes a credential.
func (s *NATSStore) Delete(ctx context.Context, key string) error {
	err := s.kv.Delete(kvKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %s: %w", key, err)
	}

	return nil
}

// Bucket returns the bucket name.
func (s *NATSStore) Bucket() string {
	return s.bucket
}

// Close closes the connection if the store opened it.
func (s *NATSStore) Close() error {
	if s.owned {
		s.conn.Close()
	}

	return nil
}
