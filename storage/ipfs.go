package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/share-engine/interfaces"
)

// mfsClient is the subset of the IPFS shell the backend uses.
type mfsClient interface {
	FilesWrite(ctx context.Context, path string, data io.Reader, options ...shell.FilesOpt) error
	FilesRead(ctx context.Context, path string, options ...shell.FilesOpt) (io.ReadCloser, error)
	FilesRm(ctx context.Context, path string, force bool) error
	IsUp() bool
}

// IPFSBackend implements a share store on the IPFS mutable file system (MFS)
// of a node. Records live under a root directory, one file per id.
type IPFSBackend struct {
	shell       mfsClient
	host        string
	port        string
	root        string
	timeout     time.Duration
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS storage backend connected to the node API at host:port.
func NewIPFSBackend(host, port, root string, timeout time.Duration, log *slog.Logger) (*IPFSBackend, error) {
	apiURL := fmt.Sprintf("%s:%s", host, port)
	root = "/" + strings.Trim(root, "/")

	return newIPFSBackend(shell.NewShell(apiURL), host, port, root, timeout, log), nil
}

func newIPFSBackend(client mfsClient, host, port, root string, timeout time.Duration, log *slog.Logger) *IPFSBackend {
	return &IPFSBackend{
		shell:       client,
		host:        host,
		port:        port,
		root:        root,
		timeout:     timeout,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s:%s%s?timeout=%s", host, port, root, timeout),
	}
}

// Fetch reads the record file stored under id.
// Returns ErrShareNotFound if the file doesn't exist or ErrBackendUnavailable
// if the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	start := time.Now()
	filePath := b.getMFSPath(id)

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reader, err := b.shell.FilesRead(ctx, filePath)
	if err != nil {
		if isMFSNotFound(err) {
			b.log.Debug("Share record not found in IPFS",
				slog.String("path", filePath),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrShareNotFound
		}

		b.log.Error("Failed to read share record from IPFS",
			slog.String("path", filePath),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to read from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched share record from IPFS",
		slog.String("path", filePath),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return unmarshalRecord(data)
}

// Store writes the record file, creating parent directories and replacing any previous content.
func (b *IPFSBackend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}

	if !b.shell.IsUp() {
		return interfaces.ErrBackendUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	filePath := b.getMFSPath(record.ID())
	err = b.shell.FilesWrite(ctx, filePath, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true),
		shell.FilesWrite.Truncate(true))
	if err != nil {
		return fmt.Errorf("failed to write to IPFS: %w", err)
	}

	b.log.Debug("Stored share record in IPFS",
		slog.String("path", filePath),
		slog.String("id", record.ID()))

	return nil
}

// Delete removes the record file.
func (b *IPFSBackend) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !b.shell.IsUp() {
		return interfaces.ErrBackendUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.shell.FilesRm(ctx, b.getMFSPath(id), true); err != nil {
		if isMFSNotFound(err) {
			return interfaces.ErrShareNotFound
		}
		return fmt.Errorf("failed to remove from IPFS: %w", err)
	}
	return nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) getMFSPath(id string) string {
	return path.Join(b.root, id+".json")
}

func isMFSNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "file does not exist") || strings.Contains(msg, "no link named")
}
