package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/ruteri/share-engine/interfaces"
	"github.com/ruteri/share-engine/shamir"
)

// FieldElement maps a plaintext value into [0, P).
//
// Text is hashed with SHA-256 and the digest, read as a big-endian integer, is
// reduced modulo P. The mapping is deterministic but one-way. Numbers are
// floored and reduced modulo P, so negative integers map to their residue.
func FieldElement(value any) (*big.Int, error) {
	switch v := value.(type) {
	case string:
		return TextElement(v), nil
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("%w: nil integer", interfaces.ErrInvalidArgument)
		}
		return shamir.Secp256k1.Reduce(v), nil
	case json.Number:
		return numberElement(v)
	case int:
		return shamir.Secp256k1.Reduce(big.NewInt(int64(v))), nil
	case int8:
		return shamir.Secp256k1.Reduce(big.NewInt(int64(v))), nil
	case int16:
		return shamir.Secp256k1.Reduce(big.NewInt(int64(v))), nil
	case int32:
		return shamir.Secp256k1.Reduce(big.NewInt(int64(v))), nil
	case int64:
		return shamir.Secp256k1.Reduce(big.NewInt(v)), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float32:
		return floatElement(float64(v))
	case float64:
		return floatElement(v)
	default:
		return nil, fmt.Errorf("%w: cannot encode value of type %T", interfaces.ErrInvalidArgument, value)
	}
}

// TextElement returns SHA-256(text) mod P.
func TextElement(text string) *big.Int {
	digest := sha256.Sum256([]byte(text))
	return shamir.Secp256k1.Reduce(new(big.Int).SetBytes(digest[:]))
}

func floatElement(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v is not a finite number", interfaces.ErrInvalidArgument, f)
	}
	return shamir.Secp256k1.Reduce(floor(new(big.Float).SetFloat64(f))), nil
}

// numberElement keeps full precision for integral JSON numbers.
func numberElement(n json.Number) (*big.Int, error) {
	if i, ok := new(big.Int).SetString(n.String(), 10); ok {
		return shamir.Secp256k1.Reduce(i), nil
	}

	f, ok := new(big.Float).SetPrec(512).SetString(n.String())
	if !ok || f.IsInf() {
		return nil, fmt.Errorf("%w: invalid number %q", interfaces.ErrInvalidArgument, n.String())
	}
	return shamir.Secp256k1.Reduce(floor(f)), nil
}

// floor rounds f towards negative infinity.
func floor(f *big.Float) *big.Int {
	i, acc := f.Int(nil)
	if acc == big.Above {
		i.Sub(i, big.NewInt(1))
	}
	return i
}
