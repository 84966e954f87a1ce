package engine

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/ruteri/share-engine/shamir"
)

const (
	// DefaultPartyCount is the number of shares every record is split into.
	DefaultPartyCount = 2
	// DefaultThreshold is the number of shares needed to reconstruct a record.
	DefaultThreshold = 2
)

// Observer receives the outcome of every engine operation.
type Observer interface {
	Observe(op string, err error)
}

// Config contains the parameters of an Engine.
type Config struct {
	// PartyCount and Threshold default to 2 when zero.
	PartyCount int
	Threshold  int

	// AggregateMode selects how SecureAggregate builds its result. Defaults to AggregateLinear.
	AggregateMode AggregateMode

	// PartyViews, if set, receives each party's share of every record the engine creates.
	PartyViews interfaces.PartyViewStore

	// Rand is the coefficient source. Defaults to crypto/rand.Reader.
	Rand io.Reader

	// Clock stamps new records. Defaults to time.Now.
	Clock func() time.Time

	// Metrics, if set, observes every operation.
	Metrics Observer

	Log *slog.Logger
}

// Engine implements interfaces.ShareEngine over the secp256k1 field.
//
// The engine simulates every party in one process: comparisons read the
// shares of all parties at once.
type Engine struct {
	field         *shamir.Field
	splitter      *shamir.Splitter
	partyCount    int
	threshold     int
	aggregateMode AggregateMode
	views         interfaces.PartyViewStore
	clock         func() time.Time
	metrics       Observer
	log           *slog.Logger
}

var _ interfaces.ShareEngine = (*Engine)(nil)

// New creates an engine from cfg, filling in defaults.
func New(cfg Config) (*Engine, error) {
	if cfg.PartyCount == 0 {
		cfg.PartyCount = DefaultPartyCount
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.PartyCount < 1 || cfg.Threshold < 1 || cfg.Threshold > cfg.PartyCount {
		return nil, fmt.Errorf("%w: threshold %d with %d parties", interfaces.ErrInvalidThreshold, cfg.Threshold, cfg.PartyCount)
	}

	if cfg.AggregateMode == "" {
		cfg.AggregateMode = AggregateLinear
	}
	if _, err := ParseAggregateMode(string(cfg.AggregateMode)); err != nil {
		return nil, err
	}
	if cfg.AggregateMode == AggregateLegacySplit && cfg.PartyCount != 2 {
		return nil, fmt.Errorf("%w: %s aggregation needs exactly 2 parties", interfaces.ErrInvalidArgument, AggregateLegacySplit)
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	return &Engine{
		field:         shamir.Secp256k1,
		splitter:      shamir.NewSplitter(shamir.Secp256k1, cfg.Rand),
		partyCount:    cfg.PartyCount,
		threshold:     cfg.Threshold,
		aggregateMode: cfg.AggregateMode,
		views:         cfg.PartyViews,
		clock:         cfg.Clock,
		metrics:       cfg.Metrics,
		log:           cfg.Log,
	}, nil
}

// PartyCount returns the number of shares per record.
func (e *Engine) PartyCount() int { return e.partyCount }

// Threshold returns the reconstruction threshold of new records.
func (e *Engine) Threshold() int { return e.threshold }

// Encode maps value to a field element and splits it into a fresh record.
// Supported values are strings, integer and float kinds, *big.Int and json.Number.
func (e *Engine) Encode(value any, fieldName string) (record *interfaces.ShareRecord, err error) {
	defer e.observe("encode", &err)

	secret, err := FieldElement(value)
	if err != nil {
		return nil, err
	}
	return e.share(secret, fieldName)
}

// EncodeString hashes text into the field and splits the digest.
func (e *Engine) EncodeString(text, fieldName string) (*interfaces.ShareRecord, error) {
	return e.Encode(text, fieldName)
}

// EncodeInt reduces n modulo P and splits it.
func (e *Engine) EncodeInt(n *big.Int, fieldName string) (*interfaces.ShareRecord, error) {
	return e.Encode(n, fieldName)
}

// EncodeInt64 reduces n modulo P and splits it.
func (e *Engine) EncodeInt64(n int64, fieldName string) (*interfaces.ShareRecord, error) {
	return e.Encode(n, fieldName)
}

// EncodeFloat floors f, reduces it modulo P and splits it.
func (e *Engine) EncodeFloat(f float64, fieldName string) (*interfaces.ShareRecord, error) {
	return e.Encode(f, fieldName)
}

// Decode reconstructs the field element encoded by record.
// For text this is the digest-derived integer, not the original string.
func (e *Engine) Decode(record *interfaces.ShareRecord) (value *big.Int, err error) {
	defer e.observe("decode", &err)
	return e.reconstruct(record)
}

// AuditTrail describes record without secret material. A nil record yields an
// empty entry.
func (e *Engine) AuditTrail(record *interfaces.ShareRecord) interfaces.AuditEntry {
	var err error
	defer e.observe("audit", &err)

	if record == nil {
		err = fmt.Errorf("%w: nil share record", interfaces.ErrInvalidArgument)
		return interfaces.AuditEntry{}
	}
	return record.Audit()
}

// PartyView returns the share party holds for the record id.
func (e *Engine) PartyView(id string, party int) (*big.Int, error) {
	if party < 1 || party > e.partyCount {
		return nil, fmt.Errorf("%w: party %d not in 1..%d", interfaces.ErrInvalidArgument, party, e.partyCount)
	}
	if e.views == nil {
		return nil, fmt.Errorf("%w: party views are disabled", interfaces.ErrShareNotFound)
	}

	share, ok := e.views.Get(id, party)
	if !ok {
		return nil, fmt.Errorf("%w: no party %d view for %s", interfaces.ErrShareNotFound, party, id)
	}
	return share, nil
}

// ForgetPartyViews drops the party shares recorded for id.
func (e *Engine) ForgetPartyViews(id string) {
	if e.views != nil {
		e.views.Delete(id)
	}
}

// share splits secret and wraps the shares into a new record.
func (e *Engine) share(secret *big.Int, fieldName string) (*interfaces.ShareRecord, error) {
	shares, err := e.splitter.Split(secret, e.partyCount, e.threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split secret: %w", err)
	}

	values := make([]*big.Int, len(shares))
	for i, share := range shares {
		values[i] = share.Value
	}
	return e.newRecord(values, fieldName, e.threshold)
}

func (e *Engine) newRecord(values []*big.Int, fieldName string, threshold int) (*interfaces.ShareRecord, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record id: %w", err)
	}

	record, err := interfaces.NewShareRecord(id.String(), values, fieldName, e.clock(), threshold)
	if err != nil {
		return nil, err
	}

	if e.views != nil {
		for i, value := range values {
			e.views.Put(record.ID(), i+1, value)
		}
	}

	e.log.Debug("created share record", "id", record.ID(), "field", fieldName, "parties", record.PartyCount())
	return record, nil
}

func (e *Engine) reconstruct(record *interfaces.ShareRecord) (*big.Int, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil share record", interfaces.ErrInvalidArgument)
	}

	value, err := e.splitter.Reconstruct(record.Shares(), record.Threshold())
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct %s: %w", record.ID(), err)
	}
	return value, nil
}

func (e *Engine) observe(op string, err *error) {
	if e.metrics != nil {
		e.metrics.Observe(op, *err)
	}
	if *err != nil {
		e.log.Debug("share operation failed", "op", op, "err", *err)
	}
}
