package shamir

import "errors"

var (
	// ErrInvalidThreshold is returned when a split is requested with k > n or a non-positive k or n.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInsufficientShares is returned when fewer than threshold shares are supplied for reconstruction.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInvalidArgument is returned for malformed inputs: values outside the field,
	// zero or duplicate evaluation points, non-invertible denominators.
	ErrInvalidArgument = errors.New("invalid argument")
)
