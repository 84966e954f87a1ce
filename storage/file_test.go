package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/share-engine/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	assert.True(t, backend.Available(ctx))
	assert.Equal(t, "file://"+dir, backend.LocationURI())

	record := testRecord(t)

	_, err = backend.Fetch(ctx, record.ID())
	assert.ErrorIs(t, err, interfaces.ErrShareNotFound)

	require.NoError(t, backend.Store(ctx, record))

	info, err := os.Stat(filepath.Join(dir, "records", record.ID()+".json"))
	require.NoError(t, err, "record should be written as <id>.json")
	assert.True(t, info.Mode().IsRegular())

	got, err := backend.Fetch(ctx, record.ID())
	require.NoError(t, err)
	assertSameRecord(t, record, got)

	// Overwrite keeps a single file and no temporaries
	require.NoError(t, backend.Store(ctx, record))
	entries, err := os.ReadDir(filepath.Join(dir, "records"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, backend.Delete(ctx, record.ID()))
	assert.ErrorIs(t, backend.Delete(ctx, record.ID()), interfaces.ErrShareNotFound)
}

func TestFileBackend_RejectsUnsafeIDs(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), discardLogger())
	require.NoError(t, err)

	for _, id := range []string{"../../etc/passwd", "", "0B5F3C4E-8D1A-4C6E-9F2B-7A3D5E1C9B80", "not-a-uuid"} {
		_, err := backend.Fetch(context.Background(), id)
		assert.ErrorIs(t, err, interfaces.ErrInvalidArgument, "id %q", id)
		assert.ErrorIs(t, backend.Delete(context.Background(), id), interfaces.ErrInvalidArgument, "id %q", id)
	}
}

func TestFileBackend_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "records", testRecordID+".json"), []byte("{not json"), 0600))

	_, err = backend.Fetch(context.Background(), testRecordID)
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)
	assert.NotErrorIs(t, err, interfaces.ErrShareNotFound)
}

func TestUnmarshalRecord_Truncated(t *testing.T) {
	record := testRecord(t)
	data, err := marshalRecord(record)
	require.NoError(t, err)

	_, err = unmarshalRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, interfaces.ErrInvalidArgument)

	got, err := unmarshalRecord(data)
	require.NoError(t, err)
	assertSameRecord(t, record, got)
}

func TestFileBackend_Unavailable(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "records")))
	assert.False(t, backend.Available(context.Background()))
}
