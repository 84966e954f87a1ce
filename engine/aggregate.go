package engine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ruteri/share-engine/interfaces"
)

// AggregateMode selects how SecureAggregate turns per-party sums into a record.
type AggregateMode string

const (
	// AggregateLinear keeps the per-party sums, re-randomized with a fresh
	// sharing of zero. The result decodes to the sum of the inputs modulo P.
	AggregateLinear AggregateMode = "linear"

	// AggregateLegacySplit adds both party sums into one total and splits it
	// into total/2 and total - total/2, each reduced modulo P. The result does
	// not decode to the sum of the inputs. Two parties only.
	AggregateLegacySplit AggregateMode = "legacy-split"
)

// ParseAggregateMode parses a mode name, case insensitive.
func ParseAggregateMode(s string) (AggregateMode, error) {
	switch mode := AggregateMode(strings.ToLower(s)); mode {
	case AggregateLinear, AggregateLegacySplit:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown aggregate mode %q", interfaces.ErrInvalidArgument, s)
	}
}

// SecureAggregate sums the shares of every party across records and returns a
// fresh record with field "aggregate(<first field>)". Sums accumulate without
// modular reduction and are reduced once at the end.
func (e *Engine) SecureAggregate(records []*interfaces.ShareRecord) (record *interfaces.ShareRecord, err error) {
	defer e.observe("aggregate", &err)

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: aggregate of no records", interfaces.ErrInvalidArgument)
	}
	first := records[0]
	for _, r := range records {
		if err := compatible(first, r); err != nil {
			return nil, err
		}
	}

	sums := make([]*big.Int, first.PartyCount())
	for i := range sums {
		sums[i] = new(big.Int)
	}
	for _, r := range records {
		for i, share := range r.Shares() {
			sums[i].Add(sums[i], share.Value)
		}
	}

	fieldName := fmt.Sprintf("aggregate(%s)", first.FieldName())

	switch e.aggregateMode {
	case AggregateLegacySplit:
		return e.legacySplit(sums, fieldName, first.Threshold())
	default:
		return e.linear(sums, fieldName, first.Threshold())
	}
}

func (e *Engine) linear(sums []*big.Int, fieldName string, threshold int) (*interfaces.ShareRecord, error) {
	zero, err := e.splitter.Split(big.NewInt(0), len(sums), threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to re-randomize aggregate: %w", err)
	}

	values := make([]*big.Int, len(sums))
	for i, sum := range sums {
		values[i] = e.field.Add(e.field.Reduce(sum), zero[i].Value)
	}
	return e.newRecord(values, fieldName, threshold)
}

func (e *Engine) legacySplit(sums []*big.Int, fieldName string, threshold int) (*interfaces.ShareRecord, error) {
	if len(sums) != 2 {
		return nil, fmt.Errorf("%w: %s aggregation needs exactly 2 parties, got %d", interfaces.ErrInvalidArgument, AggregateLegacySplit, len(sums))
	}

	total := new(big.Int).Add(sums[0], sums[1])
	half := new(big.Int).Quo(total, big.NewInt(2))
	rest := new(big.Int).Sub(total, half)

	return e.newRecord([]*big.Int{e.field.Reduce(half), e.field.Reduce(rest)}, fieldName, threshold)
}
