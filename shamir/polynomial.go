package shamir

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// polynomial holds coefficients in ascending order, coefficients[0] is the secret.
type polynomial struct {
	field        *Field
	coefficients []*big.Int
}

// newRandomPolynomial returns a polynomial of the given degree with f(0) = secret
// and every other coefficient drawn uniformly from [0, p).
func newRandomPolynomial(field *Field, secret *big.Int, degree int, random io.Reader) (*polynomial, error) {
	coefficients := make([]*big.Int, degree+1)
	coefficients[0] = new(big.Int).Set(secret)

	for i := 1; i <= degree; i++ {
		c, err := rand.Int(random, field.p)
		if err != nil {
			return nil, fmt.Errorf("failed to draw polynomial coefficient: %w", err)
		}
		coefficients[i] = c
	}

	return &polynomial{field: field, coefficients: coefficients}, nil
}

// evaluate computes f(x) with Horner's rule.
func (p *polynomial) evaluate(x *big.Int) *big.Int {
	degree := len(p.coefficients) - 1
	value := new(big.Int).Set(p.coefficients[degree])
	for i := degree - 1; i >= 0; i-- {
		value = p.field.Mul(value, x)
		value = p.field.Add(value, p.coefficients[i])
	}
	return value
}
