package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMFS struct {
	mu    sync.Mutex
	files map[string][]byte
	down  bool
}

func newFakeMFS() *fakeMFS {
	return &fakeMFS{files: make(map[string][]byte)}
}

func (f *fakeMFS) FilesWrite(_ context.Context, path string, data io.Reader, _ ...shell.FilesOpt) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = raw
	return nil
}

func (f *fakeMFS) FilesRead(_ context.Context, path string, _ ...shell.FilesOpt) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[path]
	if !ok {
		return nil, errors.New("files/read: file does not exist")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeMFS) FilesRm(_ context.Context, path string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return errors.New("files/rm: file does not exist")
	}
	delete(f.files, path)
	return nil
}

func (f *fakeMFS) IsUp() bool {
	return !f.down
}

func TestIPFSBackend(t *testing.T) {
	ctx := context.Background()
	client := newFakeMFS()
	backend := newIPFSBackend(client, "localhost", "5001", "/share-engine", time.Second, discardLogger())
	record := testRecord(t)

	_, err := backend.Fetch(ctx, record.ID())
	assert.ErrorIs(t, err, interfaces.ErrShareNotFound)

	require.NoError(t, backend.Store(ctx, record))
	assert.Contains(t, client.files, "/share-engine/"+record.ID()+".json")

	got, err := backend.Fetch(ctx, record.ID())
	require.NoError(t, err)
	assertSameRecord(t, record, got)

	require.NoError(t, backend.Delete(ctx, record.ID()))
	assert.ErrorIs(t, backend.Delete(ctx, record.ID()), interfaces.ErrShareNotFound)

	assert.Equal(t, "ipfs-localhost-5001", backend.Name())
	assert.Equal(t, "ipfs://localhost:5001/share-engine?timeout=1s", backend.LocationURI())
}

func TestIPFSBackend_NodeDown(t *testing.T) {
	ctx := context.Background()
	client := newFakeMFS()
	client.down = true
	backend := newIPFSBackend(client, "localhost", "5001", "/share-engine", time.Second, discardLogger())

	assert.False(t, backend.Available(ctx))
	_, err := backend.Fetch(ctx, testRecordID)
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
	assert.ErrorIs(t, backend.Store(ctx, testRecord(t)), interfaces.ErrBackendUnavailable)
	assert.ErrorIs(t, backend.Delete(ctx, testRecordID), interfaces.ErrBackendUnavailable)
}
