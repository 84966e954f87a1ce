package interfaces

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
)

// StorageLocation represents URI for a share record backend.
type StorageLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewStorageLocation creates a new storage location from a URI string with validation.
func NewStorageLocation(uri string) (StorageLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StorageLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := parsed.Scheme
	switch scheme {
	case "memory", "file", "s3", "ipfs", "vault", "postgres", "postgresql":
	default:
		return StorageLocation{}, fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StorageLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc StorageLocation) String() string {
	return loc.Raw
}

// IsMemory checks if this is an in-process storage location.
func (loc StorageLocation) IsMemory() bool {
	return loc.Scheme == "memory"
}

// IsFile checks if this is a file system storage location.
func (loc StorageLocation) IsFile() bool {
	return loc.Scheme == "file"
}

// IsS3 checks if this is an S3 storage location.
func (loc StorageLocation) IsS3() bool {
	return loc.Scheme == "s3"
}

// IsIPFS checks if this is an IPFS storage location.
func (loc StorageLocation) IsIPFS() bool {
	return loc.Scheme == "ipfs"
}

// IsVault checks if this is a Vault storage location.
func (loc StorageLocation) IsVault() bool {
	return loc.Scheme == "vault"
}

// IsPostgres checks if this is a PostgreSQL storage location.
func (loc StorageLocation) IsPostgres() bool {
	return loc.Scheme == "postgres" || loc.Scheme == "postgresql"
}

// GetParam returns a query parameter value.
func (loc StorageLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc StorageLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

// ShareStore persists share records by id.
type ShareStore interface {
	// Fetch retrieves a record by id. Returns ErrShareNotFound if absent.
	Fetch(ctx context.Context, id string) (*ShareRecord, error)

	// Store saves a record under its id, replacing any previous copy.
	Store(ctx context.Context, record *ShareRecord) error

	// Delete removes a record. Returns ErrShareNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// ShareStoreFactory creates share stores.
type ShareStoreFactory interface {
	// StoreFor creates a store from a location.
	// Supports memory://, file://, s3://, ipfs://, vault://, postgres://
	StoreFor(location StorageLocation) (ShareStore, error)

	// CreateMultiStore creates an aggregated store writing to every location.
	CreateMultiStore(locations []StorageLocation) (ShareStore, error)
}

// PartyViewStore records which share each party holds for a record id.
// Implementations must be safe for concurrent use.
type PartyViewStore interface {
	Put(id string, party int, share *big.Int)
	Get(id string, party int) (*big.Int, bool)
	Delete(id string)
}
