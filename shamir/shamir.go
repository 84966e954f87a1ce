// Package shamir implements (k, n) Shamir secret sharing over a prime field.
//
// Secrets and shares are field elements, integers in [0, p). A secret is the
// constant term of a random polynomial of degree k-1; share i is the
// polynomial evaluated at x = i for i = 1..n. Any k shares reconstruct the
// secret through Lagrange interpolation at x = 0.
//
// The package-level Split and Reconstruct operate over the secp256k1 base
// field with crypto/rand as the coefficient source.
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Share is one evaluation point of a sharing polynomial.
type Share struct {
	// Index is the x coordinate, 1-based. Index 0 would be the secret itself.
	Index int

	// Value is the polynomial evaluated at Index.
	Value *big.Int
}

// Splitter splits and reconstructs secrets over a fixed field.
// A Splitter is safe for concurrent use as long as its random source is.
type Splitter struct {
	field *Field
	rand  io.Reader
}

// NewSplitter creates a splitter over field drawing coefficients from random.
// A nil random source defaults to crypto/rand.Reader.
func NewSplitter(field *Field, random io.Reader) *Splitter {
	if random == nil {
		random = rand.Reader
	}
	return &Splitter{field: field, rand: random}
}

var defaultSplitter = NewSplitter(Secp256k1, nil)

// Split shares secret over the secp256k1 field. See Splitter.Split.
func Split(secret *big.Int, n, k int) ([]Share, error) {
	return defaultSplitter.Split(secret, n, k)
}

// Reconstruct recovers a secret over the secp256k1 field. See Splitter.Reconstruct.
func Reconstruct(shares []Share, k int) (*big.Int, error) {
	return defaultSplitter.Reconstruct(shares, k)
}

// Field returns the field the splitter operates in.
func (s *Splitter) Field() *Field {
	return s.field
}

// Split divides secret into n shares, any k of which reconstruct it.
// Shares are returned ordered by index, share i evaluated at x = i.
func (s *Splitter) Split(secret *big.Int, n, k int) ([]Share, error) {
	if k < 1 || n < 1 {
		return nil, fmt.Errorf("%w: k=%d n=%d must be positive", ErrInvalidThreshold, k, n)
	}
	if k > n {
		return nil, fmt.Errorf("%w: threshold %d larger than share count %d", ErrInvalidThreshold, k, n)
	}
	if !s.field.Contains(secret) {
		return nil, fmt.Errorf("%w: secret outside the field", ErrInvalidArgument)
	}

	poly, err := newRandomPolynomial(s.field, secret, k-1, s.rand)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, n)
	for i := 1; i <= n; i++ {
		shares[i-1] = Share{
			Index: i,
			Value: poly.evaluate(big.NewInt(int64(i))),
		}
	}
	return shares, nil
}

// Reconstruct interpolates the supplied shares at x = 0.
// At least k shares are required; all supplied shares take part in the
// interpolation, so they must come from the same polynomial.
func (s *Splitter) Reconstruct(shares []Share, k int) (*big.Int, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d must be positive", ErrInvalidThreshold, k)
	}
	if len(shares) < k {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientShares, len(shares), k)
	}

	seen := make(map[int]struct{}, len(shares))
	for _, share := range shares {
		if share.Index <= 0 {
			return nil, fmt.Errorf("%w: share index %d must be positive", ErrInvalidArgument, share.Index)
		}
		if _, dup := seen[share.Index]; dup {
			return nil, fmt.Errorf("%w: duplicate share index %d", ErrInvalidArgument, share.Index)
		}
		seen[share.Index] = struct{}{}

		if !s.field.Contains(share.Value) {
			return nil, fmt.Errorf("%w: share %d outside the field", ErrInvalidArgument, share.Index)
		}
	}

	return s.interpolateAtZero(shares)
}

// interpolateAtZero evaluates the Lagrange form at x = 0:
//
//	f(0) = sum_i y_i * prod_{j != i} x_j / (x_j - x_i)
func (s *Splitter) interpolateAtZero(shares []Share) (*big.Int, error) {
	f := s.field
	result := big.NewInt(0)

	for i, si := range shares {
		xi := big.NewInt(int64(si.Index))
		num := big.NewInt(1)
		den := big.NewInt(1)

		for j, sj := range shares {
			if i == j {
				continue
			}
			xj := big.NewInt(int64(sj.Index))
			num = f.Mul(num, xj)
			den = f.Mul(den, f.Sub(xj, xi))
		}

		basis, err := f.Div(num, den)
		if err != nil {
			return nil, fmt.Errorf("lagrange basis for share %d: %w", si.Index, err)
		}
		result = f.Add(result, f.Mul(basis, si.Value))
	}

	return result, nil
}
