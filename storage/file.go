package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/share-engine/interfaces"
)

// FileBackend implements a share store using the local file system.
// Each record is one JSON file named after its id under the records directory.
type FileBackend struct {
	baseDir     string
	recordsDir  string
	log         *slog.Logger
	locationURI string
}

// NewFileBackend creates a new file storage backend using the specified base directory.
// It creates the records subdirectory if it doesn't exist.
func NewFileBackend(baseDir string, log *slog.Logger) (*FileBackend, error) {
	recordsDir := filepath.Join(baseDir, "records")
	if err := os.MkdirAll(recordsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}

	return &FileBackend{
		baseDir:     baseDir,
		recordsDir:  recordsDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Fetch reads the record stored under id.
// Returns ErrShareNotFound if the file doesn't exist.
func (b *FileBackend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	filePath := b.getFilePath(id)

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, interfaces.ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("Fetched share record from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return unmarshalRecord(data)
}

// Store writes the record to a temporary file and renames it into place.
func (b *FileBackend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}
	filePath := b.getFilePath(record.ID())

	tmp, err := os.CreateTemp(b.recordsDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	b.log.Debug("Stored share record in file",
		slog.String("path", filePath),
		slog.String("id", record.ID()))

	return nil
}

// Delete removes the record file. Returns ErrShareNotFound if it doesn't exist.
func (b *FileBackend) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	err := os.Remove(b.getFilePath(id))
	if errors.Is(err, os.ErrNotExist) {
		return interfaces.ErrShareNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Available checks if the file backend is accessible by verifying the records directory exists.
func (b *FileBackend) Available(ctx context.Context) bool {
	_, err := os.Stat(b.recordsDir)
	if err != nil {
		b.log.Debug("File backend unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *FileBackend) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this storage backend.
func (b *FileBackend) LocationURI() string {
	return b.locationURI
}

func (b *FileBackend) getFilePath(id string) string {
	return filepath.Join(b.recordsDir, id+".json")
}
