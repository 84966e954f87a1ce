// Package storage provides share record persistence with pluggable backends.
//
// Every backend implements interfaces.ShareStore and keeps records in their
// JSON wire form, keyed by the record id (a canonical UUID):
//
//   - Memory storage for tests and single-process deployments
//   - File system storage for local development
//   - S3-compatible storage for cloud deployments
//   - IPFS mutable file system storage on a local node
//   - Vault KV v2 storage for secret-grade persistence
//   - PostgreSQL storage with queryable audit columns
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - memory://
//   - file:///var/lib/share-engine/
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=http://minio:9000
//   - ipfs://127.0.0.1:5001/share-engine?timeout=30s
//   - vault://[TOKEN@]vault.example.com:8200/secret/shares
//   - postgres://user:password@db:5432/shares?sslmode=disable
//
// # Multi-Backend Example
//
//	factory := storage.NewStorageBackendFactory(logger)
//	locations := []interfaces.StorageLocation{memLoc, fileLoc, s3Loc}
//	store, err := factory.CreateMultiStore(locations)
//
// Records are written to every available backend and read from the first one
// that has them. A record missing from all backends yields ErrShareNotFound.
//
// # Party Views
//
// MemoryPartyViewStore keeps the per-party share lookup used by the engine.
// It is process local; party views are never persisted.
package storage
