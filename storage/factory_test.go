package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ruteri/share-engine/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, uri string) interfaces.StorageLocation {
	t.Helper()
	loc, err := interfaces.NewStorageLocation(uri)
	require.NoError(t, err)
	return loc
}

func TestStorageBackendFactory_StoreFor(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())
	dir := t.TempDir()

	tests := []struct {
		name     string
		uri      string
		wantName string
	}{
		{name: "memory", uri: "memory://", wantName: "memory"},
		{name: "file", uri: "file://" + dir, wantName: "file-" + filepath.Base(dir)},
		{name: "s3", uri: "s3://shares-bucket/prefix/?region=eu-west-1", wantName: "s3-shares-bucket"},
		{name: "ipfs", uri: "ipfs://127.0.0.1:5001/records?timeout=5s", wantName: "ipfs-127.0.0.1-5001"},
		{name: "ipfs default port", uri: "ipfs://ipfs.local", wantName: "ipfs-ipfs.local-5001"},
		{name: "vault", uri: "vault://s.token@vault.local:8200/kv/shares", wantName: "vault-kv-shares"},
		{name: "vault default mount", uri: "vault://vault.local:8200", wantName: "vault-secret-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := factory.StoreFor(mustLocation(t, tt.uri))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, store.Name())
		})
	}
}

func TestStorageBackendFactory_Invalid(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())

	for _, uri := range []string{"s3:///nobucket", "ipfs://host/root?timeout=soon", "vault:///secret"} {
		_, err := factory.StoreFor(mustLocation(t, uri))
		assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI, uri)
	}

	_, err := factory.StoreFor(interfaces.StorageLocation{Raw: "ftp://host", Scheme: "ftp"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestStorageBackendFactory_CreateMultiStore(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())
	dir := t.TempDir()

	multi, err := factory.CreateMultiStore([]interfaces.StorageLocation{
		mustLocation(t, "memory://"),
		mustLocation(t, "file://"+dir),
		mustLocation(t, "ipfs://host/root?timeout=soon"),
	})
	require.NoError(t, err)
	assert.Equal(t, "multi-storage", multi.Name())
	assert.Equal(t, "multi:[memory://,file://"+dir+"]", multi.LocationURI())

	ctx := context.Background()
	record := testRecord(t)
	require.NoError(t, multi.Store(ctx, record))

	file, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	got, err := file.Fetch(ctx, record.ID())
	require.NoError(t, err, "every backend should receive the record")
	assertSameRecord(t, record, got)

	single, err := factory.CreateMultiStore([]interfaces.StorageLocation{mustLocation(t, "memory://")})
	require.NoError(t, err)
	assert.Equal(t, "memory", single.Name(), "a single location is used directly")

	_, err = factory.CreateMultiStore(nil)
	assert.Error(t, err)
}
