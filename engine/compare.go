package engine

import (
	"fmt"
	"math/big"

	"github.com/ruteri/share-engine/interfaces"
	"github.com/ruteri/share-engine/shamir"
)

// CompareShares reports whether a and b encode the same field element.
//
// Each party subtracts its shares locally, so (a_1 - b_1, ..., a_n - b_n) is a
// sharing of a - b. The values are equal iff that sharing opens to zero. The
// inputs themselves are never reconstructed, but the resulting bit is visible
// to the engine.
func (e *Engine) CompareShares(a, b *interfaces.ShareRecord) (bool, error) {
	if err := compatible(a, b); err != nil {
		return false, err
	}

	left, right := a.Shares(), b.Shares()
	diffs := make([]shamir.Share, len(left))
	for i := range left {
		diffs[i] = shamir.Share{
			Index: left[i].Index,
			Value: e.field.Sub(left[i].Value, right[i].Value),
		}
	}

	opened, err := e.splitter.Reconstruct(diffs, a.Threshold())
	if err != nil {
		return false, fmt.Errorf("failed to open difference of %s and %s: %w", a.ID(), b.ID(), err)
	}

	equal := opened.Sign() == 0
	e.log.Debug("compared share records", "a", a.ID(), "b", b.ID(), "equal", equal)
	return equal, nil
}

// SecureEquality returns a fresh record encoding 1 if a and b encode the same
// value and 0 otherwise. The result field is "equality(<a field>,<b field>)".
func (e *Engine) SecureEquality(a, b *interfaces.ShareRecord) (record *interfaces.ShareRecord, err error) {
	defer e.observe("equality", &err)

	equal, err := e.CompareShares(a, b)
	if err != nil {
		return nil, err
	}
	return e.share(boolElement(equal), fmt.Sprintf("equality(%s,%s)", a.FieldName(), b.FieldName()))
}

// SecureAnd decodes every record, each of which must encode 0 or 1, and
// returns a fresh record encoding their logical AND as field "and(<n>)".
// An empty input is rejected.
func (e *Engine) SecureAnd(records []*interfaces.ShareRecord) (record *interfaces.ShareRecord, err error) {
	defer e.observe("and", &err)

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: AND of no records", interfaces.ErrInvalidArgument)
	}

	result := true
	for i, r := range records {
		bit, err := e.reconstruct(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if bit.Cmp(big.NewInt(1)) > 0 {
			return nil, fmt.Errorf("%w: record %s does not encode a boolean", interfaces.ErrInvalidArgument, r.ID())
		}
		result = result && bit.Sign() == 1
	}

	return e.share(boolElement(result), fmt.Sprintf("and(%d)", len(records)))
}

func boolElement(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// compatible checks two records share the same party layout.
func compatible(a, b *interfaces.ShareRecord) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil share record", interfaces.ErrInvalidArgument)
	}
	if a.PartyCount() != b.PartyCount() || a.Threshold() != b.Threshold() {
		return fmt.Errorf("%w: records %s (%d of %d) and %s (%d of %d) use different sharings", interfaces.ErrInvalidArgument,
			a.ID(), a.Threshold(), a.PartyCount(), b.ID(), b.Threshold(), b.PartyCount())
	}
	return nil
}
