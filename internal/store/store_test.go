package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/internal/store"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCredential() *usergrid.StoredCredential {
	return &usergrid.StoredCredential{
		Version:     usergrid.CredentialVersion,
		Kind:        usergrid.CredentialKindUser,
		Subject:     "jane@example.com",
		AccessToken: "YWMt-token",
		Expiry:      time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, credStore usergrid.CredentialStore) {
	t.Helper()

	ctx := context.Background()
	key := "org/app/user/jane@example.com"

	_, err := credStore.Load(ctx, key)
	require.ErrorIs(t, err, usergrid.ErrCredentialNotFound)

	require.NoError(t, credStore.Save(ctx, key, sampleCredential()))

	loaded, err := credStore.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, usergrid.CredentialKindUser, loaded.Kind)
	assert.Equal(t, "jane@example.com", loaded.Subject)
	assert.Equal(t, "YWMt-token", loaded.AccessToken)
	assert.True(t, sampleCredential().Expiry.Equal(loaded.Expiry))

	restored := loaded.Auth()
	assert.True(t, restored.IsValid())

	require.NoError(t, credStore.Delete(ctx, key))

	_, err = credStore.Load(ctx, key)
	require.ErrorIs(t, err, usergrid.ErrCredentialNotFound)

	require.NoError(t, credStore.Delete(ctx, key), "deleting a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	memory := store.NewMemoryStore()
	exerciseStore(t, memory)
	assert.Equal(t, 0, memory.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	memory := store.NewMemoryStore()

	cred := sampleCredential()
	require.NoError(t, memory.Save(ctx, "k", cred))

	cred.AccessToken = "changed"

	loaded, err := memory.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "YWMt-token", loaded.AccessToken)
}

func TestBoltStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credentials.db")

	bolt, err := store.OpenBoltStore(path)
	require.NoError(t, err)

	defer func() { _ = bolt.Close() }()

	exerciseStore(t, bolt)

	ctx := context.Background()
	require.NoError(t, bolt.Save(ctx, "b", sampleCredential()))
	require.NoError(t, bolt.Save(ctx, "a", sampleCredential()))

	keys, err := bolt.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	first, err := store.OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "k", sampleCredential()))
	require.NoError(t, first.Close())

	second, err := store.OpenBoltStore(path)
	require.NoError(t, err)

	defer func() { _ = second.Close() }()

	loaded, err := second.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "YWMt-token", loaded.AccessToken)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		format   store.Format
		contains string
	}{
		{name: "yaml", filename: "credentials.yml", contains: "access_token: YWMt-token"},
		{name: "toml", filename: "credentials.toml", contains: `access_token = "YWMt-token"`},
		{name: "json", filename: "credentials.json", contains: `"access_token": "YWMt-token"`},
		{name: "explicit format", filename: "credentials", format: store.FormatTOML, contains: "[credentials."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.filename)

			fileStore, err := store.NewFileStore(path, tt.format)
			require.NoError(t, err)

			exerciseStore(t, fileStore)

			require.NoError(t, fileStore.Save(context.Background(), "org/app/user/jane", sampleCredential()))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.contains)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())
		})
	}
}

func TestFileStore_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := store.NewFileStore("creds.ini", store.Format("ini"))
	require.ErrorIs(t, err, constants.ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, store.FormatYAML, store.FormatFromPath("a/b.yaml"))
	assert.Equal(t, store.FormatYAML, store.FormatFromPath("a/b"))
	assert.Equal(t, store.FormatTOML, store.FormatFromPath("b.TOML"))
	assert.Equal(t, store.FormatJSON, store.FormatFromPath("b.json"))
}

func TestNoOpStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	noop := store.NewNoOpStore()

	require.NoError(t, noop.Save(ctx, "k", sampleCredential()))

	_, err := noop.Load(ctx, "k")
	require.ErrorIs(t, err, usergrid.ErrCredentialNotFound)
	require.ErrorIs(t, err, constants.ErrStoreDisabled)
	require.NoError(t, noop.Delete(ctx, "k"))
}

func TestChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	front := store.NewMemoryStore()
	back := store.NewMemoryStore()
	chain := store.NewChain(front, back)

	require.NoError(t, back.Save(ctx, "k", sampleCredential()))
	assert.Equal(t, 0, front.Len())

	loaded, err := chain.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "YWMt-token", loaded.AccessToken)
	assert.Equal(t, 1, front.Len(), "hit is copied forward")

	require.NoError(t, chain.Delete(ctx, "k"))
	assert.Equal(t, 0, front.Len())
	assert.Equal(t, 0, back.Len())

	_, err = chain.Load(ctx, "k")
	require.ErrorIs(t, err, usergrid.ErrCredentialNotFound)
	require.NoError(t, chain.Close())
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *store.Config
		wantErr error
	}{
		{name: "nil config", config: nil},
		{name: "memory", config: &store.Config{Type: store.TypeMemory}},
		{name: "none", config: &store.Config{Type: store.TypeNone}},
		{name: "file", config: &store.Config{Type: store.TypeFile, Path: filepath.Join(t.TempDir(), "c.yml")}},
		{name: "bolt without path", config: &store.Config{Type: store.TypeBolt}, wantErr: constants.ErrBoltPathRequired},
		{name: "file without path", config: &store.Config{Type: store.TypeFile}, wantErr: constants.ErrFilePathRequired},
		{name: "nats without config", config: &store.Config{Type: store.TypeNATS}, wantErr: constants.ErrNATSConfigRequired},
		{name: "unknown", config: &store.Config{Type: "redis"}, wantErr: constants.ErrUnsupportedStoreType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			credStore, err := store.New(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, credStore)
			assert.NoError(t, store.Close(credStore))
		})
	}
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "creds.db")

	credStore, err := store.NewBuilder().WithType(store.TypeBolt).WithPath(path).Build()
	require.NoError(t, err)

	defer func() { _ = store.Close(credStore) }()

	_, ok := credStore.(*store.BoltStore)
	assert.True(t, ok)
}
