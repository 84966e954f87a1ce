package interfaces

import (
	"errors"

	"github.com/ruteri/share-engine/shamir"
)

var (
	// ErrInvalidThreshold is returned when a split is requested with k > n.
	ErrInvalidThreshold = shamir.ErrInvalidThreshold

	// ErrInsufficientShares is returned when reconstruction gets fewer than threshold shares.
	ErrInsufficientShares = shamir.ErrInsufficientShares

	// ErrInvalidArgument is returned for empty inputs to AND/aggregate, malformed
	// share records and values that are not field elements.
	ErrInvalidArgument = shamir.ErrInvalidArgument

	// ErrShareNotFound is returned when a share record or party view does not exist.
	ErrShareNotFound = errors.New("share not found")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)
