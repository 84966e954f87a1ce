package shamir

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// P is the secp256k1 base field prime, 2^256 - 2^32 - 977.
var P = new(big.Int).Set(crypto.S256().Params().P)

// Secp256k1 is the field all share records live in.
var Secp256k1 = MustNewField(P)

// ElementSize is the byte length of a serialized element of Secp256k1.
const ElementSize = 32

// Field implements arithmetic over Z/pZ. All results are normalized into [0, p).
type Field struct {
	p *big.Int
}

// NewField creates a prime field with the given modulus.
// The modulus is not checked for primality, only that it is larger than 2.
func NewField(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("%w: field modulus must be larger than 2", ErrInvalidArgument)
	}
	return &Field{p: new(big.Int).Set(p)}, nil
}

// MustNewField is like NewField but panics on a misconfigured modulus.
func MustNewField(p *big.Int) *Field {
	f, err := NewField(p)
	if err != nil {
		panic(err)
	}
	return f
}

// Modulus returns a copy of the field prime.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// Contains reports whether v lies in [0, p).
func (f *Field) Contains(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(f.p) < 0
}

// Reduce maps any integer, including negative ones, into [0, p).
func (f *Field) Reduce(v *big.Int) *big.Int {
	// big.Int.Mod uses Euclidean modulus, the result is never negative
	return new(big.Int).Mod(v, f.p)
}

// Add returns a + b mod p.
func (f *Field) Add(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, f.p)
}

// Sub returns a - b mod p.
func (f *Field) Sub(a, b *big.Int) *big.Int {
	diff := new(big.Int).Sub(a, b)
	return diff.Mod(diff, f.p)
}

// Mul returns a * b mod p.
func (f *Field) Mul(a, b *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return prod.Mod(prod, f.p)
}

// Inv returns the multiplicative inverse of a, computed with the extended
// Euclidean algorithm.
func (f *Field) Inv(a *big.Int) (*big.Int, error) {
	r0, r1 := new(big.Int).Set(f.p), f.Reduce(a)
	if r1.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero has no inverse", ErrInvalidArgument)
	}

	t0, t1 := big.NewInt(0), big.NewInt(1)
	q, tmp := new(big.Int), new(big.Int)
	for r1.Sign() != 0 {
		q.Quo(r0, r1)

		tmp.Mul(q, r1)
		r0, r1 = r1, new(big.Int).Sub(r0, tmp)

		tmp.Mul(q, t1)
		t0, t1 = t1, new(big.Int).Sub(t0, tmp)
	}

	if r0.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("%w: %s is not invertible", ErrInvalidArgument, a.String())
	}
	return f.Reduce(t0), nil
}

// Div returns a * b^-1 mod p.
func (f *Field) Div(a, b *big.Int) (*big.Int, error) {
	bInv, err := f.Inv(b)
	if err != nil {
		return nil, err
	}
	return f.Mul(a, bInv), nil
}
